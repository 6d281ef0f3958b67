package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"animecat/internal/kvstore"
	"animecat/internal/logging"
)

// MappingKey is the key-value store key holding persisted id mappings.
const MappingKey = "shikimori_ids"

// ErrMappingNotFound is returned by Remove for unknown local ids.
var ErrMappingNotFound = errors.New("mapping not found")

// Mapping records the Shikimori id resolved for a local catalog item.
type Mapping struct {
	LocalID    string    `json:"local_id"`
	ExternalID int64     `json:"shikimori_id"`
	Query      string    `json:"query,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// MappingStore persists local id to Shikimori id mappings. A mapping, once
// written, is authoritative: StoreIfAbsent never replaces an existing entry.
type MappingStore struct {
	kv     kvstore.Store
	logger *slog.Logger
}

func NewMappingStore(kv kvstore.Store, logger *slog.Logger) *MappingStore {
	return &MappingStore{kv: kv, logger: logging.NewComponentLogger(logger, "mapping_store")}
}

// Lookup returns the mapping for localID.
func (s *MappingStore) Lookup(ctx context.Context, localID string) (Mapping, bool, error) {
	localID = strings.TrimSpace(localID)
	if localID == "" {
		return Mapping{}, false, nil
	}
	mappings, err := s.load(ctx)
	if err != nil {
		return Mapping{}, false, err
	}
	m, ok := mappings[localID]
	return m, ok, nil
}

// StoreIfAbsent persists m unless a mapping for m.LocalID already exists, in
// which case the existing mapping is returned with stored=false.
func (s *MappingStore) StoreIfAbsent(ctx context.Context, m Mapping) (Mapping, bool, error) {
	m.LocalID = strings.TrimSpace(m.LocalID)
	if m.LocalID == "" {
		return Mapping{}, false, errors.New("local id cannot be empty")
	}
	if m.ExternalID <= 0 {
		return Mapping{}, false, fmt.Errorf("shikimori id for %q must be positive, got %d", m.LocalID, m.ExternalID)
	}
	var (
		result Mapping
		stored bool
	)
	err := s.kv.Update(ctx, MappingKey, func(current string, ok bool) (string, error) {
		mappings, err := decodeMappings(current, ok)
		if err != nil {
			return "", err
		}
		if existing, found := mappings[m.LocalID]; found {
			result = existing
			stored = false
			return current, nil
		}
		mappings[m.LocalID] = m
		result = m
		stored = true
		return encodeMappings(mappings)
	})
	if err != nil {
		return Mapping{}, false, fmt.Errorf("persist mapping: %w", err)
	}
	if stored {
		s.logger.Debug("stored shikimori mapping",
			logging.String(logging.FieldItemID, m.LocalID),
			logging.Int64(logging.FieldExternalID, m.ExternalID))
	}
	return result, stored, nil
}

// List returns all mappings, newest first.
func (s *MappingStore) List(ctx context.Context) ([]Mapping, error) {
	mappings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Mapping, 0, len(mappings))
	for _, m := range mappings {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ResolvedAt.Equal(out[j].ResolvedAt) {
			return out[i].LocalID < out[j].LocalID
		}
		return out[i].ResolvedAt.After(out[j].ResolvedAt)
	})
	return out, nil
}

// Remove deletes the mapping for localID so the next resolution searches again.
func (s *MappingStore) Remove(ctx context.Context, localID string) error {
	localID = strings.TrimSpace(localID)
	if localID == "" {
		return errors.New("local id cannot be empty")
	}
	err := s.kv.Update(ctx, MappingKey, func(current string, ok bool) (string, error) {
		mappings, err := decodeMappings(current, ok)
		if err != nil {
			return "", err
		}
		if _, found := mappings[localID]; !found {
			return "", fmt.Errorf("%w: %q", ErrMappingNotFound, localID)
		}
		delete(mappings, localID)
		return encodeMappings(mappings)
	})
	if err != nil {
		return err
	}
	s.logger.Debug("removed shikimori mapping", logging.String(logging.FieldItemID, localID))
	return nil
}

// Clear removes every mapping.
func (s *MappingStore) Clear(ctx context.Context) error {
	if err := s.kv.Set(ctx, MappingKey, "{}"); err != nil {
		return fmt.Errorf("clear mappings: %w", err)
	}
	s.logger.Debug("cleared shikimori mappings")
	return nil
}

func (s *MappingStore) load(ctx context.Context) (map[string]Mapping, error) {
	raw, ok, err := s.kv.Get(ctx, MappingKey)
	if err != nil {
		return nil, fmt.Errorf("read mappings: %w", err)
	}
	return decodeMappings(raw, ok)
}

// decodeMappings accepts both full Mapping objects and bare numeric ids as
// values, the latter being how mappings were first persisted. Entries
// without a positive Shikimori id (including null values) are dropped so
// the item is searched again.
func decodeMappings(raw string, ok bool) (map[string]Mapping, error) {
	out := make(map[string]Mapping)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" || raw == "null" {
		return out, nil
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("parse mappings: %w", err)
	}
	for localID, value := range values {
		var m Mapping
		var bare int64
		if err := json.Unmarshal(value, &bare); err == nil {
			m = Mapping{ExternalID: bare}
		} else if err := json.Unmarshal(value, &m); err != nil {
			return nil, fmt.Errorf("parse mapping %q: %w", localID, err)
		}
		if m.ExternalID <= 0 {
			continue
		}
		m.LocalID = localID
		out[localID] = m
	}
	return out, nil
}

func encodeMappings(mappings map[string]Mapping) (string, error) {
	data, err := json.Marshal(mappings)
	if err != nil {
		return "", fmt.Errorf("marshal mappings: %w", err)
	}
	return string(data), nil
}
