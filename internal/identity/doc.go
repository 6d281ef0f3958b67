// Package identity resolves local catalog items to Shikimori anime ids.
//
// Resolution checks the persisted MappingStore first and only searches
// Shikimori on a miss. Search results are kept in a process-lifetime
// SearchCache keyed by the exact query string, with concurrent identical
// searches coalesced. Candidates are narrowed to one by Disambiguate, and the
// choice is written back to the MappingStore so later calls never touch the
// network.
package identity
