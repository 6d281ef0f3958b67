package identity

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"animecat/internal/catalog"
	"animecat/internal/logging"
	"animecat/internal/shikimori"
)

// Result sources reported in Result.Source.
const (
	SourceMapping = "mapping"
	SourceSearch  = "search"
	SourceNone    = "none"
)

const (
	defaultSearchLimit = 5
	defaultWorkers     = 4
)

// Result describes the outcome of resolving one item.
type Result struct {
	ItemID     string `json:"item_id"`
	ExternalID int64  `json:"shikimori_id,omitempty"`
	Found      bool   `json:"found"`
	Source     string `json:"source"`
	Query      string `json:"query,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// Resolver maps catalog items to Shikimori ids. A persisted mapping always
// wins; otherwise the item's names are searched and the candidates
// disambiguated. Failures never reach the caller: they are logged and the
// item resolves to not found.
type Resolver struct {
	searcher    shikimori.Searcher
	cache       *SearchCache
	mappings    *MappingStore
	logger      *slog.Logger
	searchLimit int
	workers     int
	now         func() time.Time
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithSearchLimit bounds the number of candidates requested per search.
func WithSearchLimit(limit int) Option {
	return func(r *Resolver) {
		if limit > 0 {
			r.searchLimit = limit
		}
	}
}

// WithWorkers bounds ResolveBatch concurrency.
func WithWorkers(workers int) Option {
	return func(r *Resolver) {
		if workers > 0 {
			r.workers = workers
		}
	}
}

// WithClock overrides the time source stamped on new mappings.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver wires a resolver over the given searcher, cache, and mapping store.
// A nil cache gets a fresh one.
func NewResolver(searcher shikimori.Searcher, cache *SearchCache, mappings *MappingStore, logger *slog.Logger, opts ...Option) *Resolver {
	if cache == nil {
		cache = NewSearchCache()
	}
	r := &Resolver{
		searcher:    searcher,
		cache:       cache,
		mappings:    mappings,
		logger:      logging.NewComponentLogger(logger, "resolver"),
		searchLimit: defaultSearchLimit,
		workers:     defaultWorkers,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveExternalID returns the Shikimori id for item. The boolean is false
// when no id could be found.
func (r *Resolver) ResolveExternalID(ctx context.Context, item catalog.Item) (int64, bool) {
	res := r.Resolve(ctx, item)
	return res.ExternalID, res.Found
}

// CachedMapping returns the persisted Shikimori id for itemID without any
// network access.
func (r *Resolver) CachedMapping(ctx context.Context, itemID string) (int64, bool) {
	m, ok, err := r.mappings.Lookup(ctx, itemID)
	if err != nil {
		r.warnMappingRead(ctx, itemID, err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	return m.ExternalID, true
}

// Resolve is ResolveExternalID with details about how the result was reached.
func (r *Resolver) Resolve(ctx context.Context, item catalog.Item) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	item.ID = strings.TrimSpace(item.ID)
	result := Result{ItemID: item.ID, Source: SourceNone}
	logger := logging.WithContext(ctx, r.logger).With(logging.String(logging.FieldItemID, item.ID))

	if err := item.Validate(); err != nil {
		logging.WarnWithContext(logger, "cannot resolve invalid catalog item", "resolve_invalid_item",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "item needs an id and a main name"),
			logging.String(logging.FieldImpact, "no shikimori link for this item"))
		return result
	}

	if m, ok, err := r.mappings.Lookup(ctx, item.ID); err != nil {
		r.warnMappingRead(ctx, item.ID, err)
	} else if ok {
		result.ExternalID = m.ExternalID
		result.Found = true
		result.Source = SourceMapping
		result.Query = m.Query
		return result
	}

	if err := ctx.Err(); err != nil {
		logger.Debug("resolution cancelled", logging.Error(err))
		return result
	}

	query := NormalizeQuery(item.Name.Main)
	candidates := r.search(ctx, logger, query)
	if len(candidates) == 0 {
		if fallback := NormalizeQuery(item.Name.English); fallback != "" && fallback != query {
			logger.Debug("primary search empty, trying english name",
				logging.String(logging.FieldQuery, query),
				logging.String("fallback_query", fallback))
			query = fallback
			candidates = r.search(ctx, logger, query)
		}
	}

	selected, reason, ok := Disambiguate(item, candidates)
	if !ok {
		logger.Info("no shikimori candidates found", logging.String(logging.FieldQuery, query))
		return result
	}
	logger.Debug("selected shikimori candidate",
		logging.Args(append(logging.DecisionAttrs("shikimori_match", "selected", reason),
			logging.Int64(logging.FieldExternalID, selected.ID),
			logging.Int("candidate_count", len(candidates)))...)...)

	stored, _, err := r.mappings.StoreIfAbsent(ctx, Mapping{
		LocalID:    item.ID,
		ExternalID: selected.ID,
		Query:      query,
		ResolvedAt: r.now().UTC(),
	})
	if err != nil {
		logging.WarnWithContext(logger, "failed to persist shikimori mapping", "mapping_write_failed",
			logging.Int64(logging.FieldExternalID, selected.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check store permissions and free space"),
			logging.String(logging.FieldImpact, "item will be searched again next session"))
		stored = Mapping{ExternalID: selected.ID}
	}

	result.ExternalID = stored.ExternalID
	result.Found = true
	result.Source = SourceSearch
	result.Query = query
	result.Reason = reason
	return result
}

// ResolveBatch resolves items concurrently. Results are returned in input order.
func (r *Resolver) ResolveBatch(ctx context.Context, items []catalog.Item) []Result {
	results := make([]Result, len(items))
	if len(items) == 0 {
		return results
	}
	p := pool.New().WithMaxGoroutines(r.workers)
	for i, item := range items {
		p.Go(func() {
			results[i] = r.Resolve(ctx, item)
		})
	}
	p.Wait()
	return results
}

func (r *Resolver) search(ctx context.Context, logger *slog.Logger, query string) []shikimori.Candidate {
	if query == "" {
		return nil
	}
	candidates, hit, err := r.cache.Fetch(ctx, query, func(ctx context.Context) ([]shikimori.Candidate, error) {
		return r.searcher.Search(ctx, query, r.searchLimit)
	})
	if err != nil {
		logging.WarnWithContext(logger, "shikimori search failed", "shikimori_search_failed",
			logging.String(logging.FieldQuery, query),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access and shikimori.base_url"),
			logging.String(logging.FieldImpact, "search treated as empty"))
		return nil
	}
	logger.Debug("shikimori search",
		logging.String(logging.FieldQuery, query),
		logging.Int("candidate_count", len(candidates)),
		logging.Bool("cache_hit", hit))
	return candidates
}

func (r *Resolver) warnMappingRead(ctx context.Context, itemID string, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, r.logger), "failed to read shikimori mappings", "mapping_read_failed",
		logging.String(logging.FieldItemID, itemID),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "inspect or clear the shikimori_ids entry in the store"),
		logging.String(logging.FieldImpact, "mapping treated as absent"))
}
