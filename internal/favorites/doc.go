// Package favorites persists the set of catalog items a user has marked as
// favorite. The whole collection lives under one key-value store key and is
// rewritten on every toggle inside the store's atomic Update.
package favorites
