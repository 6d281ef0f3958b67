// Package testsupport holds helpers shared by animecat tests: temp-dir
// configs, a fake Shikimori search server, and session setup.
package testsupport
