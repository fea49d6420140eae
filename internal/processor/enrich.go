package processor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	gocache "github.com/patrickmn/go-cache"

	"search-insight-service/internal/useragent"
)

const (
	defaultFetchTimeout = 5 * time.Second
	maxPageChars        = 4000
)

// Enricher fetches result pages and extracts readable text to augment the
// short snippets providers return. Enrichment is strictly best-effort: any
// fetch or parse failure yields an empty string, never an error. Fetched
// text is cached per URL with a TTL.
type Enricher struct {
	cache   *gocache.Cache
	timeout time.Duration
}

// NewEnricher creates an enricher whose per-URL content cache expires after
// ttl and purges expired items every cleanup interval.
func NewEnricher(ttl, cleanup time.Duration) *Enricher {
	return &Enricher{
		cache:   gocache.New(ttl, cleanup),
		timeout: defaultFetchTimeout,
	}
}

// PageText returns the readable text of the page at url, or "" when the
// page cannot be fetched or holds nothing readable.
func (e *Enricher) PageText(ctx context.Context, url string) string {
	if ctx.Err() != nil {
		return ""
	}
	if cached, found := e.cache.Get(url); found {
		return cached.(string)
	}

	text := e.scrape(url)
	e.cache.Set(url, text, gocache.DefaultExpiration)
	return text
}

// scrape pulls visible text from the page, skipping navigation and other
// non-content elements.
func (e *Enricher) scrape(url string) string {
	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.UserAgent(useragent.RandomDesktop()),
	)
	c.SetRequestTimeout(e.timeout)

	var textBuilder strings.Builder

	c.OnHTML("script, style, noscript, nav, footer, header, aside", func(h *colly.HTMLElement) {
		h.DOM.Remove()
	})

	c.OnHTML("body", func(h *colly.HTMLElement) {
		h.ForEach("p, h1, h2, h3, h4, h5, h6, blockquote, li", func(_ int, elem *colly.HTMLElement) {
			if textBuilder.Len() >= maxPageChars {
				return
			}
			text := strings.TrimSpace(elem.Text)
			if text != "" && len(text) > 10 {
				textBuilder.WriteString(text)
				textBuilder.WriteString(" ")
			}
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		slog.Debug("Page enrichment fetch failed", "url", url, "status", r.StatusCode, "error", err)
	})

	if err := c.Visit(url); err != nil {
		slog.Debug("Page enrichment visit failed", "url", url, "error", err)
		return ""
	}

	text := strings.TrimSpace(textBuilder.String())
	if len(text) > maxPageChars {
		text = text[:maxPageChars]
	}
	return text
}
