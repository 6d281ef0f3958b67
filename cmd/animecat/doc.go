// Command animecat is the command-line front end for the anime catalog's
// favorites store and Shikimori id resolver.
//
// Subcommands toggle and list favorites, resolve catalog items (one at a time
// or from a JSON file), inspect and prune persisted Shikimori mappings,
// manage the configuration file, and run readiness checks. Every command
// accepts --json for machine-readable output.
package main
