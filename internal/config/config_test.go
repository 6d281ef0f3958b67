package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"animecat/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "animecat", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "animecat")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Store.Backend != config.BackendFile {
		t.Fatalf("expected file backend by default, got %q", cfg.Store.Backend)
	}
	if cfg.StorePath() != filepath.Join(wantData, "store") {
		t.Fatalf("unexpected store path: %q", cfg.StorePath())
	}
	if cfg.Shikimori.SearchLimit != 5 {
		t.Fatalf("expected search limit 5, got %d", cfg.Shikimori.SearchLimit)
	}
	if cfg.Shikimori.BaseURL != config.Default().Shikimori.BaseURL {
		t.Fatalf("unexpected base url: %q", cfg.Shikimori.BaseURL)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "animecat.toml")

	type payload struct {
		Store struct {
			Backend string `toml:"backend"`
		} `toml:"store"`
		Shikimori struct {
			BaseURL     string `toml:"base_url"`
			SearchLimit int    `toml:"search_limit"`
		} `toml:"shikimori"`
		Resolver struct {
			Workers int `toml:"workers"`
		} `toml:"resolver"`
	}
	custom := payload{}
	custom.Store.Backend = "SQLite"
	custom.Shikimori.BaseURL = "https://example.com/shiki/"
	custom.Shikimori.SearchLimit = 10
	custom.Resolver.Workers = 2

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be found, got %q exists=%v", resolved, exists)
	}
	if cfg.Store.Backend != config.BackendSQLite {
		t.Fatalf("expected sqlite backend, got %q", cfg.Store.Backend)
	}
	if !strings.HasSuffix(cfg.StorePath(), "animecat.db") {
		t.Fatalf("unexpected sqlite path: %q", cfg.StorePath())
	}
	if cfg.Shikimori.BaseURL != "https://example.com/shiki" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Shikimori.BaseURL)
	}
	if cfg.Shikimori.SearchLimit != 10 {
		t.Fatalf("unexpected search limit: %d", cfg.Shikimori.SearchLimit)
	}
	if cfg.Resolver.Workers != 2 {
		t.Fatalf("unexpected worker count: %d", cfg.Resolver.Workers)
	}
	if cfg.Shikimori.RetryAttempts != config.Default().Shikimori.RetryAttempts {
		t.Fatalf("expected default retry attempts to survive partial config, got %d", cfg.Shikimori.RetryAttempts)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[store]\nbackend = \"redis\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANIMECAT_STORE_BACKEND", "memory")
	t.Setenv("SHIKIMORI_USER_AGENT", "animecat-test")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Store.Backend != config.BackendMemory {
		t.Fatalf("expected memory backend from env, got %q", cfg.Store.Backend)
	}
	if cfg.StorePath() != "" {
		t.Fatalf("expected empty store path for memory backend, got %q", cfg.StorePath())
	}
	if cfg.Shikimori.UserAgent != "animecat-test" {
		t.Fatalf("expected user agent from env, got %q", cfg.Shikimori.UserAgent)
	}
}

func TestLoadReadsDotEnvBesideConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[store]\nbackend = \"file\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SHIKIMORI_BASE_URL=https://shiki.example.org\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// godotenv does not override variables already present; make sure the
	// test process starts without one and restore afterwards.
	t.Setenv("SHIKIMORI_BASE_URL", "")
	os.Unsetenv("SHIKIMORI_BASE_URL")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Shikimori.BaseURL != "https://shiki.example.org" {
		t.Fatalf("expected base url from .env, got %q", cfg.Shikimori.BaseURL)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target, config.SampleOptions{}); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	if cfg.Store.Backend != config.BackendFile {
		t.Fatalf("expected default backend, got %q", cfg.Store.Backend)
	}
}

func TestCreateSampleAppliesChoices(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "config.toml")
	opts := config.SampleOptions{Backend: " SQLite ", UserAgent: "my-catalog/1.0 (me@example.org)"}
	if err := config.CreateSample(target, opts); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, _, err := config.Load(target)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if cfg.Store.Backend != config.BackendSQLite {
		t.Fatalf("expected sqlite backend, got %q", cfg.Store.Backend)
	}
	if cfg.Shikimori.UserAgent != "my-catalog/1.0 (me@example.org)" {
		t.Fatalf("unexpected user agent: %q", cfg.Shikimori.UserAgent)
	}
}

func TestCreateSampleRejectsBadChoices(t *testing.T) {
	cases := map[string]config.SampleOptions{
		"backend":    {Backend: "redis"},
		"user agent": {UserAgent: `bad"agent`},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			target := filepath.Join(t.TempDir(), "config.toml")
			if err := config.CreateSample(target, opts); err == nil {
				t.Fatalf("expected error for %s", name)
			}
			if _, err := os.Stat(target); !os.IsNotExist(err) {
				t.Fatalf("no file should be written on error, stat err=%v", err)
			}
		})
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"search limit", func(c *config.Config) { c.Shikimori.SearchLimit = 0 }},
		{"base url", func(c *config.Config) { c.Shikimori.BaseURL = "not a url" }},
		{"workers", func(c *config.Config) { c.Resolver.Workers = 0 }},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}
