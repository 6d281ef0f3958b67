// Package catalog defines the read-only item shape consumed from the primary
// anime catalog, along with validation and the type-code table used when
// matching items against Shikimori.
package catalog
