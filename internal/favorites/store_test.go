package favorites_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"animecat/internal/favorites"
	"animecat/internal/kvstore"
	"animecat/internal/logging"
)

type failingStore struct {
	kvstore.Store
	failGet bool
	failSet bool
	sets    int
}

var errBroken = errors.New("store broken")

func (f *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errBroken
	}
	return f.Store.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	f.sets++
	if f.failSet {
		return errBroken
	}
	return f.Store.Set(ctx, key, value)
}

func (f *failingStore) Update(ctx context.Context, key string, fn kvstore.UpdateFunc) error {
	if f.failGet {
		return errBroken
	}
	if f.failSet {
		current, ok, err := f.Store.Get(ctx, key)
		if err != nil {
			return err
		}
		if _, err := fn(current, ok); err != nil {
			return err
		}
		return errBroken
	}
	return f.Store.Update(ctx, key, fn)
}

func newStore(t *testing.T, kv kvstore.Store) *favorites.Store {
	t.Helper()
	clock := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	return favorites.New(kv, logging.NewNop(), favorites.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
}

func TestToggleTwiceRestoresMembership(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, kvstore.NewMemory())

	if store.IsFavorite(ctx, "5114") {
		t.Fatal("expected empty store")
	}
	if added := store.Toggle(ctx, "5114"); !added {
		t.Fatal("first toggle should add")
	}
	if !store.IsFavorite(ctx, "5114") {
		t.Fatal("expected item to be favorite after add")
	}
	if added := store.Toggle(ctx, "5114"); added {
		t.Fatal("second toggle should remove")
	}
	if store.IsFavorite(ctx, "5114") {
		t.Fatal("expected item removed after second toggle")
	}
	if got := store.GetAll(ctx); len(got) != 0 {
		t.Fatalf("expected no tombstones, got %v", got)
	}
}

func TestIsFavoriteMatchesGetAll(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, kvstore.NewMemory())
	for _, id := range []string{"1", "2", "3"} {
		store.Toggle(ctx, id)
	}
	store.Toggle(ctx, "2")

	all := store.GetAll(ctx)
	for _, id := range []string{"1", "2", "3", "4"} {
		_, inMap := all[id]
		if store.IsFavorite(ctx, id) != inMap {
			t.Fatalf("IsFavorite(%s) disagrees with GetAll", id)
		}
	}
}

func TestListFavoriteIDsKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, kvstore.NewMemory())
	for _, id := range []string{"30", "10", "20"} {
		store.Toggle(ctx, id)
	}
	got := store.ListFavoriteIDs(ctx)
	if want := []string{"30", "10", "20"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ListFavoriteIDs = %v, want %v", got, want)
	}
	entries := store.List(ctx)
	if !entries[0].AddedAt.Before(entries[1].AddedAt) {
		t.Fatalf("expected increasing AddedAt, got %v", entries)
	}
}

func TestGetAllAbsorbsReadFailure(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, &failingStore{Store: kvstore.NewMemory(), failGet: true})
	got := store.GetAll(ctx)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil map, got %#v", got)
	}
	if ids := store.ListFavoriteIDs(ctx); len(ids) != 0 {
		t.Fatalf("expected no ids, got %v", ids)
	}
}

func TestGetAllAbsorbsCorruptPayload(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	if err := kv.Set(ctx, favorites.Key, "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := newStore(t, kv)
	if got := store.GetAll(ctx); len(got) != 0 {
		t.Fatalf("expected empty map for corrupt payload, got %v", got)
	}
	if !store.Toggle(ctx, "9") {
		t.Fatal("toggle over corrupt payload should add")
	}
	if ids := store.ListFavoriteIDs(ctx); !reflect.DeepEqual(ids, []string{"9"}) {
		t.Fatalf("expected corrupt payload replaced, got %v", ids)
	}
}

func TestToggleReportsIntendedStateWhenWriteFails(t *testing.T) {
	ctx := context.Background()
	kv := &failingStore{Store: kvstore.NewMemory(), failSet: true}
	store := newStore(t, kv)
	if !store.Toggle(ctx, "77") {
		t.Fatal("expected intended state 'added' despite write failure")
	}
	if store.IsFavorite(ctx, "77") {
		t.Fatal("failed write must not be visible")
	}
}

func TestToggleWithUnreadableStoreAttemptsWrite(t *testing.T) {
	ctx := context.Background()
	kv := &failingStore{Store: kvstore.NewMemory(), failGet: true}
	store := newStore(t, kv)
	if !store.Toggle(ctx, "12") {
		t.Fatal("unreadable store is treated as empty, so toggle adds")
	}
	if kv.sets != 1 {
		t.Fatalf("expected one best-effort write, got %d", kv.sets)
	}
}

func TestReadsLegacyObjectForm(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	legacy := `{"b":{"itemId":"b","addedAt":"2023-01-02T00:00:00Z"},"a":{"addedAt":"2023-01-01T00:00:00Z"}}`
	if err := kv.Set(ctx, favorites.Key, legacy); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := newStore(t, kv)
	if ids := store.ListFavoriteIDs(ctx); !reflect.DeepEqual(ids, []string{"a", "b"}) {
		t.Fatalf("unexpected ids from legacy payload: %v", ids)
	}
	if store.Toggle(ctx, "a") {
		t.Fatal("expected legacy entry to be removed")
	}
	raw, _, _ := kv.Get(ctx, favorites.Key)
	if raw[0] != '[' {
		t.Fatalf("expected rewrite in array form, got %s", raw)
	}
}

func TestToggleIgnoresBlankID(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, kvstore.NewMemory())
	if store.Toggle(ctx, "   ") {
		t.Fatal("blank id should not be added")
	}
	if len(store.GetAll(ctx)) != 0 {
		t.Fatal("blank id should not be persisted")
	}
}

func TestConcurrentTogglesDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, kvstore.NewMemory())
	done := make(chan struct{})
	ids := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	for _, id := range ids {
		go func(id string) {
			store.Toggle(ctx, id)
			done <- struct{}{}
		}(id)
	}
	for range ids {
		<-done
	}
	if got := len(store.GetAll(ctx)); got != len(ids) {
		t.Fatalf("expected %d favorites, got %d", len(ids), got)
	}
}
