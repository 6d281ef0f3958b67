package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeShikimori()
	c.normalizeResolver()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	// An empty log_dir disables file logging.
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() error {
	if value, ok := os.LookupEnv("ANIMECAT_STORE_BACKEND"); ok && strings.TrimSpace(value) != "" {
		c.Store.Backend = value
	}
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	var err error
	if c.Store.Path, err = expandPath(strings.TrimSpace(c.Store.Path)); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeShikimori() {
	if value, ok := os.LookupEnv("SHIKIMORI_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Shikimori.BaseURL = value
	}
	c.Shikimori.BaseURL = strings.TrimRight(strings.TrimSpace(c.Shikimori.BaseURL), "/")
	if c.Shikimori.BaseURL == "" {
		c.Shikimori.BaseURL = defaultShikimoriBaseURL
	}
	if value, ok := os.LookupEnv("SHIKIMORI_USER_AGENT"); ok && strings.TrimSpace(value) != "" {
		c.Shikimori.UserAgent = value
	}
	c.Shikimori.UserAgent = strings.TrimSpace(c.Shikimori.UserAgent)
	if c.Shikimori.UserAgent == "" {
		c.Shikimori.UserAgent = defaultShikimoriUserAgent
	}
	if c.Shikimori.SearchLimit == 0 {
		c.Shikimori.SearchLimit = defaultShikimoriSearchLimit
	}
	if c.Shikimori.RequestsPerSecond == 0 {
		c.Shikimori.RequestsPerSecond = defaultShikimoriRPS
	}
	if c.Shikimori.Burst == 0 {
		c.Shikimori.Burst = defaultShikimoriBurst
	}
	if c.Shikimori.TimeoutSeconds == 0 {
		c.Shikimori.TimeoutSeconds = defaultShikimoriTimeoutSeconds
	}
}

func (c *Config) normalizeResolver() {
	if c.Resolver.Workers == 0 {
		c.Resolver.Workers = defaultResolverWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
