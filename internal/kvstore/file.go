package kvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"animecat/internal/fileutil"
)

// File stores each key as <dir>/<key>.json. Writes are atomic renames.
// Set and Update hold an advisory lock on <dir>/<key>.lock so separate
// processes sharing the directory serialize their writes.
type File struct {
	dir string
	mu  sync.Mutex
}

// OpenFile creates dir if needed and returns a File store rooted there.
func OpenFile(dir string) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("file store: directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &File{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (f *File) Dir() string { return f.dir }

func (f *File) valuePath(key string) string { return filepath.Join(f.dir, key+".json") }

func (f *File) lockPath(key string) string { return filepath.Join(f.dir, key+".lock") }

func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	if err := ensureContext(ctx).Err(); err != nil {
		return "", false, err
	}
	return f.read(key)
}

func (f *File) Set(ctx context.Context, key, value string) error {
	return f.Update(ctx, key, func(string, bool) (string, error) { return value, nil })
}

func (f *File) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := checkKey(key); err != nil {
		return err
	}
	ctx = ensureContext(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	lock := flock.New(f.lockPath(key))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", key)
	}
	defer func() { _ = lock.Unlock() }()

	current, ok, err := f.read(key)
	if err != nil {
		return err
	}
	next, err := fn(current, ok)
	if err != nil {
		return err
	}
	return f.write(key, next)
}

func (f *File) Close() error { return nil }

func (f *File) read(key string) (string, bool, error) {
	data, err := os.ReadFile(f.valuePath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), true, nil
}

func (f *File) write(key, value string) error {
	if err := fileutil.WriteFileAtomic(f.valuePath(key), []byte(value), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
