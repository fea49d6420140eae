// Package provider contains the external search backends and the gateway
// that drives the primary-then-fallback chain.
package provider

import (
	"context"

	"search-insight-service/internal/insight"
)

// Provider is implemented by external search backends.
type Provider interface {
	Name() string
	Search(ctx context.Context, query insight.SearchQuery) (*insight.RawSearchResult, error)
}
