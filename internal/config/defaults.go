package config

const (
	defaultConfigPath           = "~/.config/animecat/config.toml"
	defaultDataDir              = "~/.local/share/animecat"
	defaultLogDir               = "~/.local/share/animecat/logs"
	defaultStoreBackend         = BackendFile
	defaultShikimoriBaseURL     = "https://shikimori.one"
	defaultShikimoriUserAgent   = "animecat/dev"
	defaultShikimoriSearchLimit = 5
	// Shikimori documents a limit of 5 requests per second and 90 per minute.
	defaultShikimoriRPS            = 1.5
	defaultShikimoriBurst          = 5
	defaultShikimoriRetryAttempts  = 3
	defaultShikimoriTimeoutSeconds = 10
	defaultResolverWorkers         = 4
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultLogMaxSizeMB            = 10
	defaultLogMaxBackups           = 3
	defaultLogMaxAgeDays           = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Store: Store{
			Backend: defaultStoreBackend,
		},
		Shikimori: Shikimori{
			BaseURL:           defaultShikimoriBaseURL,
			UserAgent:         defaultShikimoriUserAgent,
			SearchLimit:       defaultShikimoriSearchLimit,
			RequestsPerSecond: defaultShikimoriRPS,
			Burst:             defaultShikimoriBurst,
			RetryAttempts:     defaultShikimoriRetryAttempts,
			TimeoutSeconds:    defaultShikimoriTimeoutSeconds,
		},
		Resolver: Resolver{
			Workers: defaultResolverWorkers,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
