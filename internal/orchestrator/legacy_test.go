package orchestrator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-insight-service/internal/insight"
)

func TestSearchTheWeb_EmptyQueryIsValidationError(t *testing.T) {
	gw := &stubGateway{result: newsResult(), source: insight.SourcePrimary}
	orch := newTestOrchestrator(gw)

	_, err := orch.SearchTheWeb(context.Background(), "", "123", "")
	require.ErrorIs(t, err, insight.ErrValidation)
	assert.Equal(t, int32(0), gw.calls.Load(), "no provider call for invalid input")
}

func TestSearchTheWeb_ReturnsDirectAnswer(t *testing.T) {
	gw := &stubGateway{
		result: &insight.RawSearchResult{
			DirectAnswer: "42",
			Items:        []insight.RawItem{{Title: "t", URL: "u", Snippet: "s"}},
		},
		source: insight.SourcePrimary,
	}
	orch := newTestOrchestrator(gw)

	text, err := orch.SearchTheWeb(context.Background(), "meaning of life", "123", "general")
	require.NoError(t, err)
	assert.Equal(t, "42", text)
}

func TestSearchTheWeb_ReturnsTopSummaryWithoutAnswer(t *testing.T) {
	gw := &stubGateway{result: newsResult(), source: insight.SourcePrimary}
	orch := newTestOrchestrator(gw)

	text, err := orch.SearchTheWeb(context.Background(), "plain question", "123", "")
	require.NoError(t, err)
	assert.Equal(t, "Summary of the day's events.", text)
}

func TestSearchTheWeb_UnknownSearchType(t *testing.T) {
	gw := &stubGateway{result: newsResult(), source: insight.SourcePrimary}
	orch := newTestOrchestrator(gw)

	_, err := orch.SearchTheWeb(context.Background(), "query", "123", "videos")
	require.ErrorIs(t, err, insight.ErrValidation)
}

func TestEnhancedSearch_FullPayload(t *testing.T) {
	gw := &stubGateway{result: newsResult(), source: insight.SourcePrimary}
	orch := newTestOrchestrator(gw)

	res, err := orch.EnhancedSearch(context.Background(), "enhanced query", "123", "general", insight.DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, res.Insight.Summary, res.Summary)
	assert.Equal(t, res.Insight.Keywords, res.Keywords)
	require.Len(t, res.RawResults, 1)
	assert.Equal(t, "India headline", res.RawResults[0].Title)
}

func TestEnhancedSearch_CacheHitHasEmptyRawResults(t *testing.T) {
	gw := &stubGateway{result: newsResult(), source: insight.SourcePrimary}
	orch := newTestOrchestrator(gw)

	_, err := orch.EnhancedSearch(context.Background(), "cached query", "123", "general", insight.DefaultParams())
	require.NoError(t, err)

	res, err := orch.EnhancedSearch(context.Background(), "cached query", "123", "general", insight.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, insight.SourceCache, res.Insight.Source)
	assert.NotNil(t, res.RawResults)
	assert.Empty(t, res.RawResults)
}

func TestEnhancedSearch_DegradedModeReturnsEmptyInsight(t *testing.T) {
	gw := &stubGateway{}
	gw.fail(fmt.Errorf("%w: outage", insight.ErrProvider))
	orch := newTestOrchestrator(gw)

	res, err := orch.EnhancedSearch(context.Background(), "degraded", "123", "general", insight.DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, res.Summary)
	assert.Empty(t, res.Keywords)
	assert.NotNil(t, res.RawResults)
}
