package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"animecat/internal/kvstore"
	"animecat/internal/logging"
)

// Key is the key-value store key holding the favorites collection.
const Key = "favorites"

// Entry records that an item was favorited.
type Entry struct {
	ItemID  string    `json:"itemId"`
	AddedAt time.Time `json:"addedAt"`
}

// Store tracks favorited catalog items. Persistence failures never reach the
// caller: reads degrade to an empty collection and writes are logged and
// dropped.
type Store struct {
	kv     kvstore.Store
	logger *slog.Logger
	now    func() time.Time
	// mu serializes toggles issued through this Store.
	mu sync.Mutex
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for AddedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store persisting to kv under Key.
func New(kv kvstore.Store, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: logging.NewComponentLogger(logger, "favorites"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAll returns the persisted collection keyed by item id.
func (s *Store) GetAll(ctx context.Context) map[string]Entry {
	entries := s.List(ctx)
	out := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		out[entry.ItemID] = entry
	}
	return out
}

// List returns the persisted entries in stored order.
func (s *Store) List(ctx context.Context) []Entry {
	raw, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		s.warnRead(ctx, err)
		return []Entry{}
	}
	entries, err := decode(raw, ok)
	if err != nil {
		s.warnRead(ctx, err)
		return []Entry{}
	}
	return entries
}

// IsFavorite reports whether itemID is in a fresh read of the collection.
func (s *Store) IsFavorite(ctx context.Context, itemID string) bool {
	itemID = strings.TrimSpace(itemID)
	for _, entry := range s.List(ctx) {
		if entry.ItemID == itemID {
			return true
		}
	}
	return false
}

// ListFavoriteIDs returns the favorited ids in stored order.
func (s *Store) ListFavoriteIDs(ctx context.Context) []string {
	entries := s.List(ctx)
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ItemID)
	}
	return ids
}

// Toggle removes itemID when present and adds it otherwise, returning true
// when the item is now a favorite. The return value reflects the intended
// state even when persisting it failed.
func (s *Store) Toggle(ctx context.Context, itemID string) bool {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		logging.WarnWithContext(s.logger, "ignoring favorite toggle without item id", "favorites_toggle_invalid",
			logging.String(logging.FieldErrorHint, "pass a non-empty item id"),
			logging.String(logging.FieldImpact, "favorites unchanged"))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		added   bool
		applied bool
	)
	err := s.kv.Update(ctx, Key, func(current string, ok bool) (string, error) {
		entries, err := decode(current, ok)
		if err != nil {
			s.warnRead(ctx, err)
			entries = nil
		}
		entries, added = toggle(entries, itemID, s.now())
		applied = true
		return encode(entries)
	})
	if err == nil {
		s.logToggle(ctx, itemID, added)
		return added
	}

	if !applied {
		// The stored collection could not be read; proceed as if it were empty.
		s.warnRead(ctx, err)
		var entries []Entry
		entries, added = toggle(nil, itemID, s.now())
		if payload, encErr := encode(entries); encErr == nil {
			err = s.kv.Set(ctx, Key, payload)
		} else {
			err = encErr
		}
		if err == nil {
			s.logToggle(ctx, itemID, added)
			return added
		}
	}

	logging.WarnWithContext(logging.WithContext(ctx, s.logger), "failed to persist favorites", "favorites_write_failed",
		logging.String(logging.FieldItemID, itemID),
		logging.Bool("intended_favorite", added),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check store permissions and free space"),
		logging.String(logging.FieldImpact, "favorite change will not survive a restart"))
	return added
}

func (s *Store) logToggle(ctx context.Context, itemID string, added bool) {
	logging.WithContext(ctx, s.logger).Debug("favorite toggled",
		logging.String(logging.FieldItemID, itemID),
		logging.Bool("favorite", added))
}

func (s *Store) warnRead(ctx context.Context, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, s.logger), "failed to read favorites", "favorites_read_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "inspect or delete the favorites entry in the store"),
		logging.String(logging.FieldImpact, "favorites treated as empty"))
}

func toggle(entries []Entry, itemID string, now time.Time) ([]Entry, bool) {
	for i, entry := range entries {
		if entry.ItemID == itemID {
			return append(entries[:i:i], entries[i+1:]...), false
		}
	}
	return append(entries, Entry{ItemID: itemID, AddedAt: now.UTC()}), true
}

// decode accepts the current array form and the older object form keyed by
// item id. Duplicate ids keep their first occurrence.
func decode(raw string, ok bool) ([]Entry, error) {
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" || raw == "null" {
		return []Entry{}, nil
	}

	var entries []Entry
	if strings.HasPrefix(raw, "{") {
		var legacy map[string]Entry
		if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
			return nil, fmt.Errorf("parse favorites: %w", err)
		}
		for id, entry := range legacy {
			if entry.ItemID == "" {
				entry.ItemID = id
			}
			entries = append(entries, entry)
		}
		sortByAddedAt(entries)
	} else if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("parse favorites: %w", err)
	}

	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, entry := range entries {
		entry.ItemID = strings.TrimSpace(entry.ItemID)
		if entry.ItemID == "" {
			continue
		}
		if _, dup := seen[entry.ItemID]; dup {
			continue
		}
		seen[entry.ItemID] = struct{}{}
		out = append(out, entry)
	}
	return out, nil
}

func encode(entries []Entry) (string, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshal favorites: %w", err)
	}
	return string(data), nil
}

// sortByAddedAt gives entries decoded from the object form a stable order.
func sortByAddedAt(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].AddedAt.Equal(entries[j].AddedAt) {
			return entries[i].ItemID < entries[j].ItemID
		}
		return entries[i].AddedAt.Before(entries[j].AddedAt)
	})
}
