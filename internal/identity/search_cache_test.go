package identity_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"animecat/internal/identity"
	"animecat/internal/shikimori"
)

func TestSearchCacheFetchCachesEmptyButNotErrors(t *testing.T) {
	cache := identity.NewSearchCache()
	ctx := context.Background()
	var calls atomic.Int32

	failing := func(context.Context) ([]shikimori.Candidate, error) {
		calls.Add(1)
		return nil, errors.New("boom")
	}
	if _, _, err := cache.Fetch(ctx, "Monster", failing); err == nil {
		t.Fatal("expected fetch error")
	}
	if cache.Len() != 0 {
		t.Fatal("failed fetch must not be cached")
	}

	empty := func(context.Context) ([]shikimori.Candidate, error) {
		calls.Add(1)
		return []shikimori.Candidate{}, nil
	}
	if _, hit, err := cache.Fetch(ctx, "Monster", empty); err != nil || hit {
		t.Fatalf("first fetch hit=%v err=%v", hit, err)
	}
	got, hit, err := cache.Fetch(ctx, "Monster", empty)
	if err != nil || !hit || len(got) != 0 {
		t.Fatalf("second fetch = %v hit=%v err=%v", got, hit, err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 fetches, got %d", calls.Load())
	}
}

func TestSearchCacheFetchSurvivesJoinedCallerCancel(t *testing.T) {
	cache := identity.NewSearchCache()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	fetch := func(ctx context.Context) ([]shikimori.Candidate, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-release:
			return []shikimori.Candidate{{ID: 19}}, nil
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, _, err := cache.Fetch(ctxA, "Monster", fetch)
		errA <- err
	}()
	<-started

	type outcome struct {
		candidates []shikimori.Candidate
		err        error
	}
	resB := make(chan outcome, 1)
	go func() {
		cands, _, err := cache.Fetch(context.Background(), "Monster", fetch)
		resB <- outcome{cands, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller should see its own cancellation, got %v", err)
	}

	close(release)
	got := <-resB
	if got.err != nil || len(got.candidates) != 1 || got.candidates[0].ID != 19 {
		t.Fatalf("live caller = %+v", got)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one shared fetch, got %d", calls.Load())
	}
	if _, ok := cache.Get("Monster"); !ok {
		t.Fatal("shared result should be cached")
	}
}
