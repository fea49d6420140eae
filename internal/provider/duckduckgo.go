package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"search-insight-service/internal/insight"
)

// DefaultDuckDuckGoBaseURL is the DuckDuckGo Instant Answer API endpoint.
const DefaultDuckDuckGoBaseURL = "https://api.duckduckgo.com/"

// DuckDuckGoClient is the fallback search provider. The Instant Answer API
// needs no credentials, which is what makes it a dependable last resort.
type DuckDuckGoClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDuckDuckGoClient creates a DuckDuckGo Instant Answer client.
func NewDuckDuckGoClient(baseURL string, client *http.Client) *DuckDuckGoClient {
	if baseURL == "" {
		baseURL = DefaultDuckDuckGoBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &DuckDuckGoClient{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// Name implements Provider.
func (c *DuckDuckGoClient) Name() string { return "duckduckgo" }

// Search implements Provider for the Instant Answer API. Domain filters,
// depth, and recency windows are not supported by this API and are ignored.
func (c *DuckDuckGoClient) Search(ctx context.Context, query insight.SearchQuery) (*insight.RawSearchResult, error) {
	apiURL := fmt.Sprintf("%s?q=%s&format=json&no_html=1&skip_disambig=1",
		c.baseURL, url.QueryEscape(query.Text))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating duckduckgo request: %v", insight.ErrProvider, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: duckduckgo request failed: %v", insight.ErrProvider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: duckduckgo returned status %d: %s", insight.ErrProvider, resp.StatusCode, string(body))
	}

	var ddgResp ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&ddgResp); err != nil {
		return nil, fmt.Errorf("%w: decoding duckduckgo response: %v", insight.ErrParse, err)
	}

	result := &insight.RawSearchResult{}
	if ddgResp.AbstractText != "" {
		result.DirectAnswer = ddgResp.AbstractText
	} else if ddgResp.Answer != "" {
		result.DirectAnswer = ddgResp.Answer
	}

	// RelatedTopics nest one level; flatten them into plain items.
	var appendTopic func(topic ddgTopic)
	appendTopic = func(topic ddgTopic) {
		if len(result.Items) >= query.Params.MaxResults {
			return
		}
		if topic.Text != "" {
			title, snippet := splitTopicText(topic.Text)
			result.Items = append(result.Items, insight.RawItem{
				Title:   title,
				URL:     topic.FirstURL,
				Snippet: snippet,
			})
		}
		for _, child := range topic.Topics {
			appendTopic(child)
		}
	}
	for _, topic := range ddgResp.RelatedTopics {
		appendTopic(topic)
	}

	return result, nil
}

// ddgResponse is the subset of the Instant Answer payload this service uses.
type ddgResponse struct {
	Abstract      string     `json:"Abstract"`
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	Answer        string     `json:"Answer"`
	Heading       string     `json:"Heading"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

type ddgTopic struct {
	Text     string     `json:"Text"`
	FirstURL string     `json:"FirstURL"`
	Topics   []ddgTopic `json:"Topics"`
}

// splitTopicText splits a "Title - snippet" topic string.
func splitTopicText(text string) (title string, snippet string) {
	parts := strings.SplitN(text, " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(text), ""
}
