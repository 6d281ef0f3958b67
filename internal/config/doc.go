// Package config loads, normalizes, and validates animecat configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads optional .env files, and honours
// environment fallbacks such as SHIKIMORI_USER_AGENT. The Config type
// centralizes the store backend, Shikimori API settings, and logging knobs so
// the CLI can wire a session in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
