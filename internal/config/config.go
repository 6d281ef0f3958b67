package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"animecat/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

var sampleTemplate = template.Must(template.New("config").Parse(sampleConfig))

// Store backend identifiers accepted by store.backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Store selects the key-value backend that persists favorites and id mappings.
type Store struct {
	Backend string `toml:"backend"`
	// Path overrides the backend location. When empty it is derived from
	// paths.data_dir (see StorePath).
	Path string `toml:"path"`
}

// Shikimori contains configuration for the Shikimori search API.
type Shikimori struct {
	BaseURL           string  `toml:"base_url"`
	UserAgent         string  `toml:"user_agent"`
	SearchLimit       int     `toml:"search_limit"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	RetryAttempts     int     `toml:"retry_attempts"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// Resolver contains configuration for external id resolution.
type Resolver struct {
	Workers int `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Config encapsulates all configuration values for animecat.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Store: key-value backend for favorites and id mappings
//   - Shikimori: external catalog search API
//   - Resolver: batch resolution concurrency
//   - Logging: log format, level, and rotation
type Config struct {
	Paths     Paths     `toml:"paths"`
	Store     Store     `toml:"store"`
	Shikimori Shikimori `toml:"shikimori"`
	Resolver  Resolver  `toml:"resolver"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file beside the config file (or in the
// working directory) is loaded first so environment fallbacks can see it.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if err := loadDotEnv(filepath.Dir(resolvedPath)); err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return expanded, true, nil
}

// loadDotEnv loads .env files without overriding variables already set in
// the process environment. Missing files are not an error.
func loadDotEnv(configDir string) error {
	candidates := []string{filepath.Join(configDir, ".env"), ".env"}
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		if err := godotenv.Load(abs); err != nil {
			return fmt.Errorf("load env file %s: %w", abs, err)
		}
	}
	return nil
}

// StorePath returns the location for the configured backend, deriving a
// default beneath paths.data_dir when store.path is empty.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	switch c.Store.Backend {
	case BackendSQLite:
		return filepath.Join(c.Paths.DataDir, "animecat.db")
	case BackendBadger:
		return filepath.Join(c.Paths.DataDir, "badger")
	case BackendMemory:
		return ""
	default:
		return filepath.Join(c.Paths.DataDir, "store")
	}
}

// LogFilePath returns the rotating log file path, or "" when file logging is disabled.
func (c *Config) LogFilePath() string {
	if c.Paths.LogDir == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "animecat.log")
}

// EnsureDirectories creates the directories the configured paths require.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleOptions fills the choices an operator makes when creating a config.
// Blank fields fall back to the defaults.
type SampleOptions struct {
	Backend   string
	UserAgent string
}

func (o SampleOptions) normalized() (SampleOptions, error) {
	defaults := Default()
	o.Backend = strings.ToLower(strings.TrimSpace(o.Backend))
	if o.Backend == "" {
		o.Backend = defaults.Store.Backend
	}
	check := defaults
	check.Store.Backend = o.Backend
	if err := check.validateStore(); err != nil {
		return o, err
	}
	o.UserAgent = strings.TrimSpace(o.UserAgent)
	if o.UserAgent == "" {
		o.UserAgent = defaults.Shikimori.UserAgent
	}
	if strings.ContainsAny(o.UserAgent, "\"\\\n\r") {
		return o, fmt.Errorf("shikimori.user_agent: quotes, backslashes and newlines are not allowed in %q", o.UserAgent)
	}
	return o, nil
}

// CreateSample renders the sample configuration with opts and writes it to
// path.
func CreateSample(path string, opts SampleOptions) error {
	opts, err := opts.normalized()
	if err != nil {
		return err
	}
	var rendered bytes.Buffer
	if err := sampleTemplate.Execute(&rendered, opts); err != nil {
		return fmt.Errorf("render sample config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := fileutil.WriteFileAtomic(path, rendered.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
