// Package fileutil holds small filesystem helpers shared by the file-backed
// store and the config writer.
package fileutil
