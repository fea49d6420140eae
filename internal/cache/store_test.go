package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-insight-service/internal/insight"
)

func testInsight(summary string) insight.SearchInsight {
	return insight.SearchInsight{
		Title:    "title",
		Summary:  summary,
		Keywords: []string{"k1", "k2"},
		URL:      "https://example.com",
		Source:   insight.SourcePrimary,
	}
}

func TestInsightStore_PutAndGet(t *testing.T) {
	store := NewInsightStore(4, time.Minute)

	store.Put("a", testInsight("first"), time.Minute, insight.SourcePrimary)

	entry, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, "first", entry.Insight.Summary)
	assert.Equal(t, insight.SourcePrimary, entry.Source)
	assert.Equal(t, time.Minute, entry.TTL)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestInsightStore_UpdateExisting(t *testing.T) {
	store := NewInsightStore(4, time.Minute)

	store.Put("a", testInsight("first"), time.Minute, insight.SourcePrimary)
	store.Put("a", testInsight("second"), time.Minute, insight.SourceFallback)

	entry, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, "second", entry.Insight.Summary)
	assert.Equal(t, insight.SourceFallback, entry.Source)
	assert.Equal(t, 1, store.Len())
}

func TestInsightStore_LRUEviction(t *testing.T) {
	store := NewInsightStore(2, time.Minute)

	store.Put("a", testInsight("a"), time.Minute, insight.SourcePrimary)
	store.Put("b", testInsight("b"), time.Minute, insight.SourcePrimary)

	// Touch "a" so "b" becomes the least recently used entry.
	_, ok := store.Get("a")
	require.True(t, ok)

	store.Put("c", testInsight("c"), time.Minute, insight.SourcePrimary)

	_, ok = store.Get("b")
	assert.False(t, ok, "least recently used entry should have been evicted")

	_, ok = store.Get("a")
	assert.True(t, ok)
	_, ok = store.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, store.Len())
}

func TestInsightStore_ExpiryAndGrace(t *testing.T) {
	store := NewInsightStore(4, time.Minute)

	base := time.Now()
	store.now = func() time.Time { return base }
	store.Put("a", testInsight("a"), time.Second, insight.SourcePrimary)

	t.Run("live before TTL", func(t *testing.T) {
		_, ok := store.Get("a")
		assert.True(t, ok)
	})

	t.Run("absent for normal lookups after TTL", func(t *testing.T) {
		store.now = func() time.Time { return base.Add(2 * time.Second) }
		_, ok := store.Get("a")
		assert.False(t, ok)
	})

	t.Run("served stale within grace", func(t *testing.T) {
		store.now = func() time.Time { return base.Add(2 * time.Second) }
		entry, ok := store.GetStale("a")
		require.True(t, ok)
		assert.Equal(t, "a", entry.Insight.Summary)
	})

	t.Run("gone beyond grace", func(t *testing.T) {
		store.now = func() time.Time { return base.Add(2 * time.Minute) }
		_, ok := store.GetStale("a")
		assert.False(t, ok)
		assert.Equal(t, 0, store.Len())
	})
}

func TestInsightStore_ExpiredEntryRemovedBeyondGraceOnGet(t *testing.T) {
	store := NewInsightStore(4, time.Second)

	base := time.Now()
	store.now = func() time.Time { return base }
	store.Put("a", testInsight("a"), time.Second, insight.SourcePrimary)

	store.now = func() time.Time { return base.Add(time.Hour) }
	_, ok := store.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestInsightStore_ConcurrentAccess(t *testing.T) {
	store := NewInsightStore(64, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d", j%8)
				store.Put(key, testInsight(key), time.Minute, insight.SourcePrimary)
				if entry, ok := store.Get(key); ok {
					assert.NotEmpty(t, entry.Insight.Summary)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, store.Len(), 64)
}
