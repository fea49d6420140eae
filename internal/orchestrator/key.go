package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"search-insight-service/internal/insight"
)

// CacheKey derives a deterministic key from a normalized query. Queries that
// differ only in insignificant whitespace or case share a key (handled by
// normalization); queries that differ in any param get distinct canonical
// strings and therefore distinct keys.
func CacheKey(q insight.SearchQuery) string {
	include := append([]string(nil), q.Params.IncludeDomains...)
	exclude := append([]string(nil), q.Params.ExcludeDomains...)
	sort.Strings(include)
	sort.Strings(exclude)

	canonical := strings.Join([]string{
		q.Text,
		string(q.Type),
		string(q.Params.Depth),
		fmt.Sprintf("%d", q.Params.MaxResults),
		strings.Join(include, ","),
		strings.Join(exclude, ","),
		q.Params.Language,
		fmt.Sprintf("%d", q.Params.Days),
	}, "|")

	return fmt.Sprintf("insight:%016x", xxhash.Sum64String(canonical))
}
