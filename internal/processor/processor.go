// Package processor cleans, summarizes, and extracts keywords from raw
// provider results.
package processor

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"search-insight-service/internal/insight"
)

const (
	defaultSummaryBudget = 300
	defaultMaxKeywords   = 5
	defaultEnrichTop     = 3
)

// Scorer is an optional enhanced scoring capability (an NLP model, an
// embedding service). When absent, summarization degrades to naive term
// frequency; the output shape is identical either way.
type Scorer interface {
	Score(text string) float64
}

var (
	boilerplateRe = regexp.MustCompile(`(?i)(LOGIN|Subscribe|e-?Paper|Account|Image \d+:)`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// CleanText strips boilerplate fragments and collapses whitespace.
func CleanText(text string) string {
	text = boilerplateRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Processor turns a RawSearchResult into cleaned text, an extractive
// summary, and an ordered keyword list.
type Processor struct {
	scorer        Scorer
	enricher      *Enricher
	summaryBudget int
	maxKeywords   int
	enrichTop     int
}

// Option configures a Processor.
type Option func(*Processor)

// WithScorer sets the enhanced scoring capability.
func WithScorer(scorer Scorer) Option {
	return func(p *Processor) { p.scorer = scorer }
}

// WithEnricher sets the page-text enricher used to augment top snippets.
func WithEnricher(enricher *Enricher) Option {
	return func(p *Processor) { p.enricher = enricher }
}

// WithSummaryBudget bounds the summary length in characters.
func WithSummaryBudget(budget int) Option {
	return func(p *Processor) {
		if budget > 0 {
			p.summaryBudget = budget
		}
	}
}

// WithMaxKeywords bounds the keyword list length.
func WithMaxKeywords(k int) Option {
	return func(p *Processor) {
		if k > 0 {
			p.maxKeywords = k
		}
	}
}

// WithEnrichTop sets how many leading items are enriched with page text.
func WithEnrichTop(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.enrichTop = n
		}
	}
}

// New creates a Processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		summaryBudget: defaultSummaryBudget,
		maxKeywords:   defaultMaxKeywords,
		enrichTop:     defaultEnrichTop,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process cleans and condenses a raw result. An empty items list yields
// empty output, never an error.
func (p *Processor) Process(ctx context.Context, raw *insight.RawSearchResult) insight.ProcessedContent {
	content := insight.ProcessedContent{Keywords: []string{}}
	if raw == nil || len(raw.Items) == 0 {
		return content
	}

	var parts []string
	for i, item := range raw.Items {
		text := item.Snippet
		if p.enricher != nil && i < p.enrichTop && item.URL != "" {
			if page := p.enricher.PageText(ctx, item.URL); page != "" {
				text += " " + page
			}
		}
		if cleaned := CleanText(text); cleaned != "" {
			parts = append(parts, cleaned)
		}
	}
	content.CleanedText = strings.Join(parts, " ")

	content.Summary = p.summarize(content.CleanedText)
	content.Keywords = p.keywords(content.CleanedText)
	return content
}

// summarize picks the highest-scoring sentences, in document order, up to
// the length budget. Sentence scores are the summed frequencies of their
// terms across the whole text, normalized by sentence length, optionally
// weighted by the enhanced scorer.
func (p *Processor) summarize(text string) string {
	if text == "" {
		return ""
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return truncate(text, p.summaryBudget)
	}

	freq := termFrequencies(tokenize(text))

	type scored struct {
		index int
		text  string
		score float64
	}
	candidates := make([]scored, 0, len(sentences))
	for i, sentence := range sentences {
		tokens := tokenize(sentence)
		if len(tokens) == 0 {
			continue
		}
		var sum float64
		for _, token := range tokens {
			sum += float64(freq[token])
		}
		score := sum / float64(len(tokens))
		if p.scorer != nil {
			score *= 1 + p.scorer.Score(sentence)
		}
		candidates = append(candidates, scored{index: i, text: sentence, score: score})
	}
	if len(candidates) == 0 {
		return truncate(text, p.summaryBudget)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var picked []scored
	length := 0
	for _, c := range candidates {
		if length > 0 && length+len(c.text)+1 > p.summaryBudget {
			continue
		}
		picked = append(picked, c)
		length += len(c.text) + 1
		if length >= p.summaryBudget {
			break
		}
	}

	// Restore document order so the summary reads naturally.
	sort.Slice(picked, func(i, j int) bool { return picked[i].index < picked[j].index })

	var b strings.Builder
	for i, c := range picked {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(c.text)
	}
	return truncate(b.String(), p.summaryBudget)
}

// keywords returns the top-K highest-frequency terms, de-duplicated, ordered
// by score then first appearance.
func (p *Processor) keywords(text string) []string {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return []string{}
	}

	freq := termFrequencies(tokens)
	firstSeen := make(map[string]int, len(freq))
	for i, token := range tokens {
		if _, ok := firstSeen[token]; !ok {
			firstSeen[token] = i
		}
	}

	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return firstSeen[terms[i]] < firstSeen[terms[j]]
	})

	if len(terms) > p.maxKeywords {
		terms = terms[:p.maxKeywords]
	}
	return terms
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut
}
