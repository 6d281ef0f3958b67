package preflight

import (
	"context"

	"animecat/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the readiness checks for cfg. The Shikimori check is only
// run when checkNetwork is set.
func RunAll(ctx context.Context, cfg *config.Config, checkNetwork bool) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Data directory (always checked)
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))

	// Log directory (when file logging is enabled)
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	results = append(results, CheckStore(ctx, cfg))

	if checkNetwork {
		results = append(results, CheckShikimori(ctx, cfg.Shikimori.BaseURL, cfg.Shikimori.UserAgent))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
