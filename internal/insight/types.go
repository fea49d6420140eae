// Package insight defines the data model shared across the search service:
// queries, provider results, and the normalized insight returned to callers.
package insight

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SearchType selects the kind of search a query performs.
type SearchType string

const (
	SearchTypeGeneral SearchType = "general"
	SearchTypeNews    SearchType = "news"
	SearchTypeImage   SearchType = "image"
)

// ParseSearchType maps a raw string to a SearchType. An empty string means
// general; anything else unknown is a validation error rather than being
// silently ignored.
func ParseSearchType(raw string) (SearchType, error) {
	switch SearchType(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SearchTypeGeneral:
		return SearchTypeGeneral, nil
	case SearchTypeNews:
		return SearchTypeNews, nil
	case SearchTypeImage:
		return SearchTypeImage, nil
	default:
		return "", NewValidationError("unknown search type: " + raw)
	}
}

// Depth controls how thorough the primary provider's search is.
type Depth string

const (
	DepthBasic    Depth = "basic"
	DepthAdvanced Depth = "advanced"
)

// Source records which backend produced an insight.
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
	SourceCache    Source = "cache"
)

// SearchParams carries the tunable options of one search request. The zero
// value is not usable directly; call WithDefaults (or start from
// DefaultParams) so unset fields pick up their documented defaults.
type SearchParams struct {
	Depth          Depth    `json:"depth"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
	Language       string   `json:"language"`
	Days           int      `json:"days,omitempty"` // news recency window, 0 = unset
}

// DefaultParams returns the documented parameter defaults.
func DefaultParams() SearchParams {
	return SearchParams{
		Depth:      DepthBasic,
		MaxResults: 10,
		Language:   "en",
	}
}

// WithDefaults fills unset fields with their defaults.
func (p SearchParams) WithDefaults() SearchParams {
	if p.Depth == "" {
		p.Depth = DepthBasic
	}
	if p.MaxResults <= 0 {
		p.MaxResults = 10
	}
	if p.Language == "" {
		p.Language = "en"
	}
	return p
}

// Validate checks the enumerated parameter constraints.
func (p SearchParams) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Depth, validation.Required, validation.In(DepthBasic, DepthAdvanced)),
		validation.Field(&p.MaxResults, validation.Required, validation.Min(1), validation.Max(50)),
		validation.Field(&p.Language, validation.Required, validation.Length(2, 8)),
		validation.Field(&p.Days, validation.Min(0), validation.Max(365)),
	)
	if err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

// SearchQuery is the orchestrator's input.
type SearchQuery struct {
	Text        string       `json:"text"`
	Type        SearchType   `json:"type"`
	Params      SearchParams `json:"params"`
	RequesterID string       `json:"requester_id"`
}

// Normalized returns a copy with insignificant whitespace and casing removed
// from the query text, the type defaulted, and params filled with defaults.
// Two queries that differ only in whitespace or case normalize identically.
func (q SearchQuery) Normalized() SearchQuery {
	q.Text = strings.ToLower(strings.Join(strings.Fields(q.Text), " "))
	if q.Type == "" {
		q.Type = SearchTypeGeneral
	}
	q.Params = q.Params.WithDefaults()
	if q.RequesterID == "" {
		q.RequesterID = "anonymous"
	}
	return q
}

// Validate rejects empty queries and out-of-range params. It assumes the
// query has already been normalized.
func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return NewValidationError("query text must not be empty")
	}
	if _, err := ParseSearchType(string(q.Type)); err != nil {
		return err
	}
	return q.Params.Validate()
}

// RawItem is one provider result before processing.
type RawItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// RawSearchResult is the provider-agnostic shape both providers normalize
// their responses into.
type RawSearchResult struct {
	Items        []RawItem `json:"items"`
	DirectAnswer string    `json:"direct_answer,omitempty"`
}

// Empty reports whether the result carries no usable data. Gateways treat an
// empty result as a provider failure and move on to the fallback.
func (r *RawSearchResult) Empty() bool {
	return r == nil || (len(r.Items) == 0 && strings.TrimSpace(r.DirectAnswer) == "")
}

// ProcessedContent is the ContentProcessor's output.
type ProcessedContent struct {
	CleanedText string   `json:"cleaned_text"`
	Summary     string   `json:"summary"`
	Keywords    []string `json:"keywords"`
}

// SearchInsight is the structured result of one search. All fields are
// populated by the assembler; callers never see a partially-nil insight.
type SearchInsight struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Keywords     []string `json:"keywords"`
	URL          string   `json:"url"`
	DirectAnswer string   `json:"direct_answer,omitempty"`
	Source       Source   `json:"source"`
}
