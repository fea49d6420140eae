// Package orchestrator ties the pipeline together: it validates and
// normalizes queries, consults the cache and the in-flight registry, drives
// the provider gateway and content processor, and assembles the insight
// returned to callers.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"search-insight-service/internal/cache"
	"search-insight-service/internal/flight"
	"search-insight-service/internal/insight"
)

const (
	defaultTTL     = 10 * time.Minute
	defaultNewsTTL = 5 * time.Minute
)

// Gateway fetches a raw result from the provider chain.
type Gateway interface {
	Fetch(ctx context.Context, query insight.SearchQuery) (*insight.RawSearchResult, insight.Source, error)
}

// Processor condenses a raw result into cleaned text, summary, and keywords.
type Processor interface {
	Process(ctx context.Context, raw *insight.RawSearchResult) insight.ProcessedContent
}

// resolution is what one upstream round trip yields. The raw items ride
// along for the enhanced API; only the insight is cached.
type resolution struct {
	Insight  insight.SearchInsight
	RawItems []insight.RawItem
}

// Orchestrator is the entry point for searches.
type Orchestrator struct {
	store     *cache.InsightStore
	flights   *flight.Registry[*resolution]
	gateway   Gateway
	processor Processor
	ttl       time.Duration
	newsTTL   time.Duration
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTTLs sets the cache lifetimes for general and news insights.
func WithTTLs(ttl, newsTTL time.Duration) Option {
	return func(o *Orchestrator) {
		if ttl > 0 {
			o.ttl = ttl
		}
		if newsTTL > 0 {
			o.newsTTL = newsTTL
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an Orchestrator. The store may be nil, in which case caching
// is bypassed and every search resolves upstream.
func New(store *cache.InsightStore, gateway Gateway, proc Processor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		flights:   flight.NewRegistry[*resolution](),
		gateway:   gateway,
		processor: proc,
		ttl:       defaultTTL,
		newsTTL:   defaultNewsTTL,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Search runs one search end to end. The only error callers ever see is a
// validation error (or their own context error while waiting); provider and
// cache failures degrade to fallback, stale cache, or a minimal insight.
func (o *Orchestrator) Search(ctx context.Context, query insight.SearchQuery) (*insight.SearchInsight, error) {
	res, err := o.searchDetailed(ctx, query)
	if err != nil {
		return nil, err
	}
	return &res.Insight, nil
}

func (o *Orchestrator) searchDetailed(ctx context.Context, query insight.SearchQuery) (*resolution, error) {
	query = query.Normalized()
	if err := query.Validate(); err != nil {
		return nil, err
	}

	o.logger.Info("Search requested",
		"requester", query.RequesterID,
		"query", truncateForLog(query.Text, 50),
		"type", query.Type)

	key := CacheKey(query)

	if entry, ok := o.storeGet(key); ok {
		o.logger.Info("Cache HIT", "key", key)
		ins := entry.Insight
		ins.Source = insight.SourceCache
		return &resolution{Insight: ins}, nil
	}
	o.logger.Info("Cache MISS", "key", key)

	res, shared, err := o.flights.JoinOrStart(ctx, key, func(upstream context.Context) (*resolution, error) {
		return o.resolve(upstream, query, key)
	})
	if err != nil {
		// The caller gave up waiting; the shared resolution keeps running
		// and will still populate the cache.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return o.degrade(query, key, err), nil
	}
	if shared {
		o.logger.Debug("Joined in-flight resolution", "key", key)
	}
	return res, nil
}

// resolve performs the upstream round trip for one key and writes the
// insight back to the cache before any waiter observes it.
func (o *Orchestrator) resolve(ctx context.Context, query insight.SearchQuery, key string) (*resolution, error) {
	raw, source, err := o.gateway.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	processed := o.processor.Process(ctx, raw)
	ins := Assemble(raw, processed, source)

	if o.store != nil {
		o.store.Put(key, ins, o.ttlFor(query.Type), source)
	}

	res := &resolution{Insight: ins}
	if raw != nil {
		res.RawItems = raw.Items
	}
	return res, nil
}

// degrade is the total-failure path: serve a stale entry within its grace
// window if one exists, otherwise a minimal well-formed insight.
func (o *Orchestrator) degrade(query insight.SearchQuery, key string, cause error) *resolution {
	o.logger.Warn("All providers failed", "key", key, "error", cause)

	if o.store != nil {
		if entry, ok := o.store.GetStale(key); ok {
			o.logger.Info("Serving stale cache entry", "key", key)
			ins := entry.Insight
			ins.Source = insight.SourceCache
			return &resolution{Insight: ins}
		}
	}

	return &resolution{Insight: insight.SearchInsight{
		Keywords: []string{},
		Source:   insight.SourceFallback,
	}}
}

func (o *Orchestrator) storeGet(key string) (cache.Entry, bool) {
	if o.store == nil {
		return cache.Entry{}, false
	}
	return o.store.Get(key)
}

func (o *Orchestrator) ttlFor(searchType insight.SearchType) time.Duration {
	if searchType == insight.SearchTypeNews {
		return o.newsTTL
	}
	return o.ttl
}

func truncateForLog(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
