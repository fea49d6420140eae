package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"search-insight-service/internal/insight"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// DefaultTavilyBaseURL is the default Tavily API endpoint.
	DefaultTavilyBaseURL = "https://api.tavily.com/search"
	// maxQueryLength caps the query text sent to Tavily.
	maxQueryLength = 400
)

// TavilyClient is the primary search provider.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTavilyClient creates a Tavily client. An empty apiKey is allowed; calls
// then fail fast so the gateway moves straight to the fallback provider.
func NewTavilyClient(apiKey, baseURL string, client *http.Client) *TavilyClient {
	if baseURL == "" {
		baseURL = DefaultTavilyBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &TavilyClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: client,
	}
}

// Name implements Provider.
func (c *TavilyClient) Name() string { return "tavily" }

// Search implements Provider for the Tavily HTTP API.
func (c *TavilyClient) Search(ctx context.Context, query insight.SearchQuery) (*insight.RawSearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: tavily API key not configured", insight.ErrProvider)
	}

	text := query.Text
	if len(text) > maxQueryLength {
		text = text[:maxQueryLength]
	}

	// Tavily expects the API key in the body, not in headers.
	payload := map[string]interface{}{
		"api_key":      c.apiKey,
		"query":        text,
		"search_depth": string(query.Params.Depth),
		"max_results":  query.Params.MaxResults,
	}
	if len(query.Params.IncludeDomains) > 0 {
		payload["include_domains"] = query.Params.IncludeDomains
	}
	if len(query.Params.ExcludeDomains) > 0 {
		payload["exclude_domains"] = query.Params.ExcludeDomains
	}
	switch query.Type {
	case insight.SearchTypeNews:
		payload["topic"] = "news"
		payload["search_depth"] = string(insight.DepthAdvanced)
		if query.Params.Days > 0 {
			payload["days"] = query.Params.Days
		}
	case insight.SearchTypeImage:
		payload["include_images"] = true
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshalling tavily request: %v", insight.ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: creating tavily request: %v", insight.ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: tavily request failed: %v", insight.ErrProvider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading tavily response: %v", insight.ErrProvider, err)
	}

	// Auth and quota errors are provider failures like any other; the
	// gateway handles them by switching providers, not by retrying.
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tavily returned status %d: %s", insight.ErrProvider, resp.StatusCode, string(body))
	}

	var tavilyResp tavilyResponse
	if err := json.Unmarshal(body, &tavilyResp); err != nil {
		return nil, fmt.Errorf("%w: decoding tavily response: %v", insight.ErrParse, err)
	}

	result := &insight.RawSearchResult{
		DirectAnswer: tavilyResp.Answer,
		Items:        make([]insight.RawItem, 0, len(tavilyResp.Results)),
	}
	for _, r := range tavilyResp.Results {
		result.Items = append(result.Items, insight.RawItem{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
		})
	}
	return result, nil
}

// tavilyResponse is the wire shape of a Tavily search response.
type tavilyResponse struct {
	Answer  string         `json:"answer"`
	Query   string         `json:"query"`
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}
