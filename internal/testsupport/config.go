package testsupport

import (
	"path/filepath"
	"testing"

	"animecat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The store defaults to the file backend under the temp dir and file logging
// is disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = ""
	cfgVal.Shikimori.UserAgent = "animecat-test"
	cfgVal.Shikimori.RetryAttempts = 0
	cfgVal.Shikimori.RequestsPerSecond = 1000
	cfgVal.Shikimori.Burst = 100

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithBackend selects the store backend on the test config.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = backend
	}
}

// WithShikimoriURL points the Shikimori client at url, typically an httptest server.
func WithShikimoriURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Shikimori.BaseURL = url
	}
}

// WithLogDir enables file logging beneath the test's temp dir.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.LogDir = filepath.Join(b.baseDir, "logs")
	}
}
