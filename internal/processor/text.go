package processor

import "strings"

// Stop words excluded from frequency scoring and keyword extraction.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "were": true, "to": true, "of": true, "and": true, "in": true,
	"that": true, "have": true, "has": true, "it": true, "for": true,
	"not": true, "on": true, "with": true, "as": true, "you": true, "do": true,
	"at": true, "this": true, "but": true, "by": true, "from": true,
	"or": true, "its": true, "their": true, "his": true, "her": true,
	"they": true, "we": true, "he": true, "she": true, "will": true,
	"would": true, "can": true, "could": true, "been": true, "more": true,
	"also": true, "which": true, "into": true, "about": true, "than": true,
}

// tokenize splits text into words, lowercases, trims punctuation, and
// removes stop words.
func tokenize(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// termFrequencies counts how often each token occurs in text.
func termFrequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, token := range tokens {
		freq[token]++
	}
	return freq
}

// splitSentences breaks text into sentences on terminal punctuation. Good
// enough for snippet-length prose; this is not a linguistic segmenter.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
