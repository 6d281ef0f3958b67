// Package shikimori provides the minimal Shikimori API client used to map
// catalog items to Shikimori anime ids.
//
// Only the anime search endpoint is exposed. Requests carry the configured
// User-Agent, are rate limited to stay inside Shikimori's published request
// budget, and are retried with backoff on transport errors, 429 and 5xx
// responses. Options let tests supply custom HTTP clients.
package shikimori
