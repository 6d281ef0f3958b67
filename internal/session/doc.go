// Package session wires configuration, logging, the key-value store, the
// Shikimori client, the favorites store, and the identity resolver into one
// value constructed per process. Nothing here is package-level state: the
// search cache and store handles live on the Session.
package session
