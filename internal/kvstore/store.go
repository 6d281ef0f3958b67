package kvstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"animecat/internal/config"
)

// Store is a string-keyed store of serialized text blobs.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set replaces the value for key.
	Set(ctx context.Context, key, value string) error
	// Update runs a read-modify-write of key as one atomic operation. fn
	// receives the current value (ok=false when absent) and returns the
	// value to persist. An error from fn aborts the write.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}

// UpdateFunc computes the next value of a key from its current value.
type UpdateFunc func(current string, ok bool) (string, error)

// ErrUnknownBackend is returned by Open for unsupported store.backend values.
var ErrUnknownBackend = errors.New("unknown store backend")

// ErrInvalidKey is returned for keys outside [a-z0-9_.-].
var ErrInvalidKey = errors.New("invalid store key")

var keyPattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)

func checkKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// Open constructs the backend selected by cfg.Store.Backend.
func Open(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, errors.New("kvstore: config is nil")
	}
	path := cfg.StorePath()
	switch cfg.Store.Backend {
	case config.BackendFile, "":
		return OpenFile(path)
	case config.BackendSQLite:
		return OpenSQLite(path)
	case config.BackendBadger:
		return OpenBadger(path)
	case config.BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Store.Backend)
	}
}
