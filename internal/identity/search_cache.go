package identity

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"animecat/internal/shikimori"
)

// NormalizeQuery trims, collapses internal whitespace, and NFC-normalizes a
// search string so visually identical names share a cache entry.
func NormalizeQuery(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// SearchCache holds search results for the life of the process, keyed by the
// exact query string sent to Shikimori. Failed searches are never cached;
// successful empty results are.
type SearchCache struct {
	mu      sync.RWMutex
	entries map[string][]shikimori.Candidate
	flight  singleflight.Group
}

func NewSearchCache() *SearchCache {
	return &SearchCache{entries: make(map[string][]shikimori.Candidate)}
}

// Get returns a copy of the cached candidates for query.
func (c *SearchCache) Get(query string) ([]shikimori.Candidate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cached, ok := c.entries[query]
	if !ok {
		return nil, false
	}
	return append([]shikimori.Candidate(nil), cached...), true
}

// Put stores candidates for query, replacing any previous entry.
func (c *SearchCache) Put(query string, candidates []shikimori.Candidate) {
	stored := append([]shikimori.Candidate{}, candidates...)
	c.mu.Lock()
	c.entries[query] = stored
	c.mu.Unlock()
}

// Len returns the number of cached queries.
func (c *SearchCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Fetch returns the cached result for query or calls fetch once, sharing the
// call with concurrent callers asking for the same query. hit reports
// whether the result came from the cache.
//
// The shared call runs detached from any single caller's cancellation so one
// caller giving up cannot fail the others; a cancelled caller returns its own
// ctx.Err() while the fetch finishes and populates the cache.
func (c *SearchCache) Fetch(ctx context.Context, query string, fetch func(context.Context) ([]shikimori.Candidate, error)) (candidates []shikimori.Candidate, hit bool, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cached, ok := c.Get(query); ok {
		return cached, true, nil
	}
	shared := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(query, func() (any, error) {
		if cached, ok := c.Get(query); ok {
			return cached, nil
		}
		result, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		c.Put(query, result)
		return result, nil
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		value, _ := res.Val.([]shikimori.Candidate)
		return append([]shikimori.Candidate(nil), value...), false, nil
	}
}
