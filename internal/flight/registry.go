// Package flight deduplicates concurrent resolutions of the same cache key:
// for N concurrent callers with one key, exactly one upstream resolution
// runs and all callers share its outcome.
package flight

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Registry wraps a singleflight group. Entries exist only while a resolution
// is active; completion (success or failure) removes them, so a later call
// with the same key starts fresh.
type Registry[T any] struct {
	group singleflight.Group
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{}
}

// JoinOrStart starts fn for key if no resolution is active, otherwise joins
// the active one. The boolean reports whether the result was shared with
// other callers.
//
// fn runs under a context detached from ctx: a caller-imposed timeout aborts
// only that caller's wait, while the upstream call continues for the benefit
// of other and future callers.
func (r *Registry[T]) JoinOrStart(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, bool, error) {
	upstream := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (interface{}, error) {
		return fn(upstream)
	})

	var zero T
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Shared, res.Err
		}
		return res.Val.(T), res.Shared, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}
