// Package preflight provides readiness checks for the filesystem paths, the
// key-value store, and the Shikimori API that animecat depends on.
//
// The CLI "animecat doctor" command runs RunAll and renders each Result.
// The network check is opt-in so doctor stays usable offline.
package preflight
