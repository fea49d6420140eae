// Package cache provides the bounded, TTL-aware insight store.
package cache

import (
	"container/list"
	"sync"
	"time"

	"search-insight-service/internal/insight"
)

// Entry is one cached insight together with its lifetime bookkeeping. The
// store exclusively owns entry lifetime: entries are created on Put and
// destroyed on eviction or when they age past the stale-grace window.
type Entry struct {
	Key       string
	Insight   insight.SearchInsight
	CreatedAt time.Time
	TTL       time.Duration
	Source    insight.Source
}

// Expired reports whether the entry is past its TTL.
func (e *Entry) Expired(now time.Time) bool {
	return now.After(e.CreatedAt.Add(e.TTL))
}

// WithinGrace reports whether an expired entry may still be served as a
// stale last resort.
func (e *Entry) WithinGrace(now time.Time, grace time.Duration) bool {
	return !now.After(e.CreatedAt.Add(e.TTL + grace))
}

// InsightStore is a capacity-bounded LRU store for search insights. Expired
// entries are absent for normal lookups but are retained for a grace window
// so they can be served stale when every provider fails. All methods are
// safe for concurrent use; a single store-wide mutex serializes mutation.
type InsightStore struct {
	mu       sync.Mutex
	capacity int
	grace    time.Duration
	entries  map[string]*list.Element
	order    *list.List // front = most recently used

	now func() time.Time
}

// NewInsightStore creates a store holding at most capacity entries. Expired
// entries remain retrievable via GetStale for the given grace window.
func NewInsightStore(capacity int, grace time.Duration) *InsightStore {
	if capacity < 1 {
		capacity = 1
	}
	return &InsightStore{
		capacity: capacity,
		grace:    grace,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the live entry for key, or false if the key is absent or
// expired. A hit marks the entry most recently used. Entries aged past the
// grace window are removed on sight.
func (s *InsightStore) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	entry := elem.Value.(*Entry)
	now := s.now()
	if entry.Expired(now) {
		if !entry.WithinGrace(now, s.grace) {
			s.removeLocked(elem)
		}
		return Entry{}, false
	}
	s.order.MoveToFront(elem)
	return *entry, true
}

// GetStale returns the entry for key even if it has expired, as long as it
// is still within the grace window. Used only when a refresh attempt failed.
func (s *InsightStore) GetStale(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	entry := elem.Value.(*Entry)
	if !entry.WithinGrace(s.now(), s.grace) {
		s.removeLocked(elem)
		return Entry{}, false
	}
	return *entry, true
}

// Put stores an insight under key with the given TTL, replacing any existing
// entry. Insertion beyond capacity evicts the least-recently-used entry.
func (s *InsightStore) Put(key string, value insight.SearchInsight, ttl time.Duration, source insight.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		entry := elem.Value.(*Entry)
		entry.Insight = value
		entry.CreatedAt = s.now()
		entry.TTL = ttl
		entry.Source = source
		s.order.MoveToFront(elem)
		return
	}

	for s.order.Len() >= s.capacity {
		s.removeLocked(s.order.Back())
	}

	entry := &Entry{
		Key:       key,
		Insight:   value,
		CreatedAt: s.now(),
		TTL:       ttl,
		Source:    source,
	}
	s.entries[key] = s.order.PushFront(entry)
}

// Len returns the number of entries currently held, expired or not.
func (s *InsightStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *InsightStore) removeLocked(elem *list.Element) {
	if elem == nil {
		return
	}
	entry := elem.Value.(*Entry)
	delete(s.entries, entry.Key)
	s.order.Remove(elem)
}
