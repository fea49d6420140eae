package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchType(t *testing.T) {
	t.Run("EmptyMeansGeneral", func(t *testing.T) {
		st, err := ParseSearchType("")
		require.NoError(t, err)
		assert.Equal(t, SearchTypeGeneral, st)
	})

	t.Run("KnownTypes", func(t *testing.T) {
		for raw, want := range map[string]SearchType{
			"general": SearchTypeGeneral,
			"news":    SearchTypeNews,
			"image":   SearchTypeImage,
			" News ":  SearchTypeNews,
			"IMAGE":   SearchTypeImage,
		} {
			st, err := ParseSearchType(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, want, st, raw)
		}
	})

	t.Run("UnknownIsValidationError", func(t *testing.T) {
		_, err := ParseSearchType("videos")
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestSearchQuery_Normalized(t *testing.T) {
	q := SearchQuery{Text: "  Today's   INDIA  News \t"}
	n := q.Normalized()

	assert.Equal(t, "today's india news", n.Text)
	assert.Equal(t, SearchTypeGeneral, n.Type)
	assert.Equal(t, "anonymous", n.RequesterID)
	assert.Equal(t, DefaultParams(), n.Params)

	// Normalization is idempotent.
	assert.Equal(t, n, n.Normalized())
}

func TestSearchQuery_NormalizedKeepsExplicitFields(t *testing.T) {
	q := SearchQuery{
		Text:        "query",
		Type:        SearchTypeNews,
		RequesterID: "user-7",
		Params:      SearchParams{Depth: DepthAdvanced, MaxResults: 3, Language: "de", Days: 2},
	}
	n := q.Normalized()

	assert.Equal(t, SearchTypeNews, n.Type)
	assert.Equal(t, "user-7", n.RequesterID)
	assert.Equal(t, DepthAdvanced, n.Params.Depth)
	assert.Equal(t, 3, n.Params.MaxResults)
	assert.Equal(t, "de", n.Params.Language)
	assert.Equal(t, 2, n.Params.Days)
}

func TestSearchQuery_Validate(t *testing.T) {
	t.Run("EmptyText", func(t *testing.T) {
		err := SearchQuery{Text: "   "}.Normalized().Validate()
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("ValidQuery", func(t *testing.T) {
		err := SearchQuery{Text: "weather"}.Normalized().Validate()
		assert.NoError(t, err)
	})
}

func TestSearchParams_Validate(t *testing.T) {
	valid := DefaultParams()
	require.NoError(t, valid.Validate())

	cases := map[string]SearchParams{
		"MaxResultsTooHigh": func() SearchParams { p := valid; p.MaxResults = 51; return p }(),
		"MaxResultsZero":    func() SearchParams { p := valid; p.MaxResults = 0; return p }(),
		"UnknownDepth":      func() SearchParams { p := valid; p.Depth = "exhaustive"; return p }(),
		"LanguageTooShort":  func() SearchParams { p := valid; p.Language = "e"; return p }(),
		"DaysOutOfRange":    func() SearchParams { p := valid; p.Days = 400; return p }(),
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, params.Validate(), ErrValidation)
		})
	}
}

func TestSearchParams_WithDefaults(t *testing.T) {
	p := SearchParams{}.WithDefaults()
	assert.Equal(t, DefaultParams(), p)

	p = SearchParams{Depth: DepthAdvanced, MaxResults: 5, Language: "fr"}.WithDefaults()
	assert.Equal(t, DepthAdvanced, p.Depth)
	assert.Equal(t, 5, p.MaxResults)
	assert.Equal(t, "fr", p.Language)
}

func TestRawSearchResult_Empty(t *testing.T) {
	var nilResult *RawSearchResult
	assert.True(t, nilResult.Empty())
	assert.True(t, (&RawSearchResult{}).Empty())
	assert.True(t, (&RawSearchResult{DirectAnswer: "   "}).Empty())
	assert.False(t, (&RawSearchResult{DirectAnswer: "42"}).Empty())
	assert.False(t, (&RawSearchResult{Items: []RawItem{{Title: "t"}}}).Empty())
}

func TestIsRetriableWithFallback(t *testing.T) {
	assert.True(t, IsRetriableWithFallback(ErrProvider))
	assert.True(t, IsRetriableWithFallback(ErrParse))
	assert.False(t, IsRetriableWithFallback(ErrValidation))
	assert.False(t, IsRetriableWithFallback(nil))
}
