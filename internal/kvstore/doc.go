// Package kvstore provides the local key-value persistence used for favorites
// and Shikimori id mappings.
//
// Four backends implement Store: File (one JSON file per key guarded by an
// advisory lock), SQLite (modernc, a single kv table), Badger, and Memory.
// Open picks one from config.Store.Backend. Every backend implements Update
// as an atomic read-modify-write so callers never lose concurrent writes to
// the same key.
package kvstore
