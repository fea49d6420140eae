package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"

	"search-insight-service/internal/insight"
	"search-insight-service/internal/logger"
)

const (
	defaultPoolSize = 8
	defaultTimeout  = 10 * time.Second
)

// Gateway invokes the primary provider and falls back to the secondary on
// any failure: timeout, transport error, auth or quota error, malformed
// response, or an empty result. There is no retry of the same provider.
//
// Provider calls run on a bounded worker pool so a slow upstream never
// stalls unrelated concurrent searches.
type Gateway struct {
	primary  Provider
	fallback Provider
	pool     *ants.Pool
	timeout  time.Duration
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithTimeout bounds each individual provider call.
func WithTimeout(timeout time.Duration) GatewayOption {
	return func(g *Gateway) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// NewGateway creates a gateway over the given provider pair with a worker
// pool of poolSize.
func NewGateway(primary, fallback Provider, poolSize int, opts ...GatewayOption) (*Gateway, error) {
	if primary == nil && fallback == nil {
		return nil, fmt.Errorf("at least one provider is required")
	}
	if poolSize < 1 {
		poolSize = defaultPoolSize
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("creating provider worker pool: %w", err)
	}

	g := &Gateway{
		primary:  primary,
		fallback: fallback,
		pool:     pool,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Close releases the worker pool.
func (g *Gateway) Close() {
	g.pool.Release()
}

// Fetch runs the primary-then-fallback chain and reports which provider
// answered. An error is returned only when every configured provider failed.
func (g *Gateway) Fetch(ctx context.Context, query insight.SearchQuery) (*insight.RawSearchResult, insight.Source, error) {
	var primaryErr error
	if g.primary != nil {
		raw, err := g.call(ctx, g.primary, query)
		if err == nil {
			return raw, insight.SourcePrimary, nil
		}
		primaryErr = err
		logger.LogError("Primary provider %s failed: %v", g.primary.Name(), err)
		if !insight.IsRetriableWithFallback(err) {
			return nil, "", primaryErr
		}
	} else {
		primaryErr = fmt.Errorf("%w: no primary provider configured", insight.ErrProvider)
	}

	if g.fallback == nil {
		return nil, "", primaryErr
	}

	slog.Info("Falling back to secondary provider", "provider", g.fallback.Name(), "query", query.Text)
	raw, err := g.call(ctx, g.fallback, query)
	if err != nil {
		return nil, "", fmt.Errorf("primary failed (%v) and fallback failed: %w", primaryErr, err)
	}
	return raw, insight.SourceFallback, nil
}

// call executes one provider invocation on the worker pool with a bounded
// wait. An empty result counts as a failure so the chain keeps moving.
func (g *Gateway) call(ctx context.Context, p Provider, query insight.SearchQuery) (*insight.RawSearchResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type outcome struct {
		raw *insight.RawSearchResult
		err error
	}
	done := make(chan outcome, 1)

	if err := g.pool.Submit(func() {
		raw, err := p.Search(callCtx, query)
		done <- outcome{raw: raw, err: err}
	}); err != nil {
		return nil, fmt.Errorf("%w: submitting %s call to worker pool: %v", insight.ErrProvider, p.Name(), err)
	}

	select {
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		if out.raw.Empty() {
			return nil, fmt.Errorf("%w: %s returned an empty result", insight.ErrProvider, p.Name())
		}
		return out.raw, nil
	case <-callCtx.Done():
		return nil, fmt.Errorf("%w: %s call timed out: %v", insight.ErrProvider, p.Name(), callCtx.Err())
	}
}
