package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateShikimori(); err != nil {
		return err
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendFile, BackendSQLite, BackendBadger, BackendMemory:
		return nil
	default:
		return fmt.Errorf("store.backend: unsupported value %q (expected file, sqlite, badger, or memory)", c.Store.Backend)
	}
}

func (c *Config) validateShikimori() error {
	parsed, err := url.Parse(c.Shikimori.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("shikimori.base_url: invalid url %q", c.Shikimori.BaseURL)
	}
	if c.Shikimori.SearchLimit < 1 || c.Shikimori.SearchLimit > 50 {
		return errors.New("shikimori.search_limit must be between 1 and 50")
	}
	if c.Shikimori.RequestsPerSecond <= 0 {
		return errors.New("shikimori.requests_per_second must be positive")
	}
	if c.Shikimori.Burst < 1 {
		return errors.New("shikimori.burst must be at least 1")
	}
	if c.Shikimori.RetryAttempts < 0 {
		return errors.New("shikimori.retry_attempts must be zero or greater")
	}
	if c.Shikimori.TimeoutSeconds < 1 {
		return errors.New("shikimori.timeout_seconds must be at least 1")
	}
	return nil
}

func (c *Config) validateResolver() error {
	if c.Resolver.Workers < 1 {
		return errors.New("resolver.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return errors.New("logging rotation values must be zero or greater")
	}
	return nil
}
