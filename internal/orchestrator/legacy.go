package orchestrator

import (
	"context"

	"search-insight-service/internal/insight"
)

// EnhancedResult is the rich payload of the enhanced search interface.
type EnhancedResult struct {
	Insight    insight.SearchInsight `json:"insight"`
	Summary    string                `json:"summary"`
	Keywords   []string              `json:"keywords"`
	RawResults []insight.RawItem     `json:"raw_results"`
}

// EnhancedSearch runs a search with explicit params and returns the insight
// together with its supporting raw items. Raw items are only available when
// the result came from a live provider round trip; cache hits return the
// cached insight with an empty raw list.
func (o *Orchestrator) EnhancedSearch(ctx context.Context, query, requesterID, searchType string, params insight.SearchParams) (*EnhancedResult, error) {
	st, err := insight.ParseSearchType(searchType)
	if err != nil {
		return nil, err
	}

	res, err := o.searchDetailed(ctx, insight.SearchQuery{
		Text:        query,
		Type:        st,
		Params:      params,
		RequesterID: requesterID,
	})
	if err != nil {
		return nil, err
	}

	raw := res.RawItems
	if raw == nil {
		raw = []insight.RawItem{}
	}
	return &EnhancedResult{
		Insight:    res.Insight,
		Summary:    res.Insight.Summary,
		Keywords:   res.Insight.Keywords,
		RawResults: raw,
	}, nil
}

// SearchTheWeb is the legacy contract: plain text holding the direct answer
// when present, otherwise the top summary. It is a pure projection over
// EnhancedSearch with default params.
func (o *Orchestrator) SearchTheWeb(ctx context.Context, query, requesterID, searchType string) (string, error) {
	res, err := o.EnhancedSearch(ctx, query, requesterID, searchType, insight.DefaultParams())
	if err != nil {
		return "", err
	}
	if res.Insight.DirectAnswer != "" {
		return res.Insight.DirectAnswer, nil
	}
	return res.Insight.Summary, nil
}
