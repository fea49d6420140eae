package provider

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-insight-service/internal/insight"
)

// fakeProvider counts invocations and returns a fixed result or error.
type fakeProvider struct {
	name   string
	result *insight.RawSearchResult
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(ctx context.Context, query insight.SearchQuery) (*insight.RawSearchResult, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", insight.ErrProvider, ctx.Err())
		}
	}
	return f.result, f.err
}

func goodResult(snippet string) *insight.RawSearchResult {
	return &insight.RawSearchResult{
		Items: []insight.RawItem{{Title: "t", URL: "https://example.com", Snippet: snippet}},
	}
}

func testQuery() insight.SearchQuery {
	return insight.SearchQuery{Text: "go concurrency"}.Normalized()
}

func TestGateway_PrimarySuccess(t *testing.T) {
	primary := &fakeProvider{name: "primary", result: goodResult("primary snippet")}
	fallback := &fakeProvider{name: "fallback", result: goodResult("fallback snippet")}

	gw, err := NewGateway(primary, fallback, 2)
	require.NoError(t, err)
	defer gw.Close()

	raw, source, err := gw.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Equal(t, insight.SourcePrimary, source)
	assert.Equal(t, "primary snippet", raw.Items[0].Snippet)
	assert.Equal(t, int32(0), fallback.calls.Load(), "fallback must not run when primary succeeds")
}

func TestGateway_FallbackOnPrimaryError(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: fmt.Errorf("%w: quota exceeded", insight.ErrProvider)}
	fallback := &fakeProvider{name: "fallback", result: goodResult("fallback snippet")}

	gw, err := NewGateway(primary, fallback, 2)
	require.NoError(t, err)
	defer gw.Close()

	raw, source, err := gw.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Equal(t, insight.SourceFallback, source)
	assert.Equal(t, "fallback snippet", raw.Items[0].Snippet)
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(1), fallback.calls.Load())
}

func TestGateway_EmptyPrimaryResultTriggersFallback(t *testing.T) {
	primary := &fakeProvider{name: "primary", result: &insight.RawSearchResult{}}
	fallback := &fakeProvider{name: "fallback", result: goodResult("fallback snippet")}

	gw, err := NewGateway(primary, fallback, 2)
	require.NoError(t, err)
	defer gw.Close()

	_, source, err := gw.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Equal(t, insight.SourceFallback, source)
}

func TestGateway_BothProvidersFail(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: fmt.Errorf("%w: down", insight.ErrProvider)}
	fallback := &fakeProvider{name: "fallback", err: fmt.Errorf("%w: also down", insight.ErrProvider)}

	gw, err := NewGateway(primary, fallback, 2)
	require.NoError(t, err)
	defer gw.Close()

	_, _, err = gw.Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.ErrorIs(t, err, insight.ErrProvider)
}

func TestGateway_NoRetryOfSameProvider(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: fmt.Errorf("%w: transient", insight.ErrProvider)}
	fallback := &fakeProvider{name: "fallback", err: fmt.Errorf("%w: down", insight.ErrProvider)}

	gw, err := NewGateway(primary, fallback, 2)
	require.NoError(t, err)
	defer gw.Close()

	_, _, _ = gw.Fetch(context.Background(), testQuery())
	assert.Equal(t, int32(1), primary.calls.Load(), "resilience comes from switching providers, not retrying")
	assert.Equal(t, int32(1), fallback.calls.Load())
}

func TestGateway_PrimaryTimeoutFallsBack(t *testing.T) {
	primary := &fakeProvider{name: "primary", result: goodResult("slow"), delay: 500 * time.Millisecond}
	fallback := &fakeProvider{name: "fallback", result: goodResult("fast fallback")}

	gw, err := NewGateway(primary, fallback, 2, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	defer gw.Close()

	raw, source, err := gw.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Equal(t, insight.SourceFallback, source)
	assert.Equal(t, "fast fallback", raw.Items[0].Snippet)
}

func TestGateway_ParseErrorTriggersFallback(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: fmt.Errorf("%w: bad json", insight.ErrParse)}
	fallback := &fakeProvider{name: "fallback", result: goodResult("fallback snippet")}

	gw, err := NewGateway(primary, fallback, 2)
	require.NoError(t, err)
	defer gw.Close()

	_, source, err := gw.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Equal(t, insight.SourceFallback, source)
}

func TestGateway_DirectAnswerOnlyResultIsNotEmpty(t *testing.T) {
	primary := &fakeProvider{name: "primary", result: &insight.RawSearchResult{DirectAnswer: "42"}}
	fallback := &fakeProvider{name: "fallback", result: goodResult("unused")}

	gw, err := NewGateway(primary, fallback, 2)
	require.NoError(t, err)
	defer gw.Close()

	raw, source, err := gw.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Equal(t, insight.SourcePrimary, source)
	assert.Equal(t, "42", raw.DirectAnswer)
}
