package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"animecat/internal/config"
	"animecat/internal/favorites"
	"animecat/internal/identity"
	"animecat/internal/kvstore"
	"animecat/internal/logging"
	"animecat/internal/shikimori"
)

// Session owns the per-process state shared by the favorites store and the
// identity resolver. Build one with Open and release it with Close.
type Session struct {
	Config      *config.Config
	Logger      *slog.Logger
	Store       kvstore.Store
	SearchCache *identity.SearchCache
	Mappings    *identity.MappingStore
	Favorites   *favorites.Store
	Resolver    *identity.Resolver

	ownsStore bool
}

// Option customizes session construction.
type Option func(*options)

type options struct {
	store    kvstore.Store
	searcher shikimori.Searcher
}

// WithStore supplies an already opened store. The session will not close it.
func WithStore(store kvstore.Store) Option {
	return func(o *options) { o.store = store }
}

// WithSearcher replaces the Shikimori HTTP client.
func WithSearcher(searcher shikimori.Searcher) Option {
	return func(o *options) { o.searcher = searcher }
}

// Open builds a session from cfg.
func Open(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("session: config is nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{Config: cfg, Logger: logger}

	if o.store != nil {
		s.Store = o.store
	} else {
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		store, err := kvstore.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
		}
		s.Store = store
		s.ownsStore = true
	}

	searcher := o.searcher
	if searcher == nil {
		client, err := NewShikimoriClient(cfg, logger)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		searcher = client
	}

	s.SearchCache = identity.NewSearchCache()
	s.Mappings = identity.NewMappingStore(s.Store, logger)
	s.Favorites = favorites.New(s.Store, logger)
	s.Resolver = identity.NewResolver(searcher, s.SearchCache, s.Mappings, logger,
		identity.WithSearchLimit(cfg.Shikimori.SearchLimit),
		identity.WithWorkers(cfg.Resolver.Workers))

	logger.Debug("session opened",
		logging.String("store_backend", cfg.Store.Backend),
		logging.String("store_path", cfg.StorePath()))
	return s, nil
}

// NewShikimoriClient builds the HTTP client described by cfg.Shikimori.
func NewShikimoriClient(cfg *config.Config, logger *slog.Logger) (*shikimori.Client, error) {
	sc := cfg.Shikimori
	client, err := shikimori.New(sc.BaseURL, sc.UserAgent,
		shikimori.WithHTTPClient(&http.Client{Timeout: time.Duration(sc.TimeoutSeconds) * time.Second}),
		shikimori.WithRateLimit(sc.RequestsPerSecond, sc.Burst),
		shikimori.WithRetry(sc.RetryAttempts, 0),
		shikimori.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("shikimori client: %w", err)
	}
	return client, nil
}

// Close releases the store when the session opened it.
func (s *Session) Close() error {
	if s == nil || s.Store == nil || !s.ownsStore {
		return nil
	}
	err := s.Store.Close()
	s.Store = nil
	return err
}
