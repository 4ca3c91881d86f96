package ragstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store with brute-force cosine search. It is the
// default backend when no database is configured; the built-in example corpus
// is small enough that a linear scan is indistinguishable from an index.
type MemoryStore struct {
	mu       sync.RWMutex
	examples map[string]Example
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{examples: make(map[string]Example)}
}

// Index implements [Store].
func (m *MemoryStore) Index(_ context.Context, ex Example) error {
	if ex.ID == "" {
		return fmt.Errorf("ragstore: example ID must not be empty")
	}
	if len(ex.Embedding) == 0 {
		return fmt.Errorf("ragstore: example %q has no embedding", ex.ID)
	}
	m.mu.Lock()
	m.examples[ex.ID] = ex
	m.mu.Unlock()
	return nil
}

// Search implements [Store]. Examples whose embedding dimension does not
// match the query are skipped rather than treated as an error, so a corpus
// re-embedded with a new model degrades instead of failing.
func (m *MemoryStore) Search(_ context.Context, embedding []float32, topK int, filter Filter) ([]Match, error) {
	if topK <= 0 {
		return []Match{}, nil
	}

	m.mu.RLock()
	matches := make([]Match, 0, len(m.examples))
	for _, ex := range m.examples {
		if filter.Intent != "" && ex.Intent != filter.Intent {
			continue
		}
		if filter.Language != "" && ex.Language != filter.Language {
			continue
		}
		if len(ex.Embedding) != len(embedding) {
			continue
		}
		matches = append(matches, Match{Example: ex, Distance: cosineDistance(embedding, ex.Embedding)})
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Example.ID < matches[j].Example.ID
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Count implements [Store].
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.examples), nil
}

// Close implements [Store]. It is a no-op for the in-memory backend.
func (m *MemoryStore) Close() {}

// cosineDistance returns 1 minus the cosine similarity of a and b. Vectors
// with zero magnitude are maximally distant.
func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
