package orchestrator

import (
	"search-insight-service/internal/insight"
)

const noAnswerText = "No good answer found."

// Assemble combines provider output and processed content into the final
// insight. Policy, in order: a direct answer becomes the summary (keywords
// are still extracted from the supporting items); otherwise the processed
// summary and the first item's title/url are used; with no items and no
// answer an explicit no-results insight is produced rather than omitting
// fields.
func Assemble(raw *insight.RawSearchResult, processed insight.ProcessedContent, source insight.Source) insight.SearchInsight {
	out := insight.SearchInsight{
		Keywords: processed.Keywords,
		Source:   source,
	}
	if out.Keywords == nil {
		out.Keywords = []string{}
	}

	if raw != nil && raw.DirectAnswer != "" {
		out.DirectAnswer = raw.DirectAnswer
		out.Summary = raw.DirectAnswer
	} else {
		out.Summary = processed.Summary
	}

	if raw != nil && len(raw.Items) > 0 {
		out.Title = raw.Items[0].Title
		out.URL = raw.Items[0].URL
	}

	if (raw == nil || len(raw.Items) == 0) && out.DirectAnswer == "" {
		out.Title = "No results"
		out.Summary = noAnswerText
	}

	return out
}
