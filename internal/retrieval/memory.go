package retrieval

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process VectorStore used for local runs and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[Collection][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[Collection][]Record)}
}

func (m *MemoryStore) Upsert(_ context.Context, col Collection, recs ...Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range recs {
		replaced := false
		for i, existing := range m.recs[col] {
			if existing.ID == rec.ID && rec.ID != "" {
				m.recs[col][i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			m.recs[col] = append(m.recs[col], rec)
		}
	}
	return nil
}

func (m *MemoryStore) Search(_ context.Context, col Collection, vector []float32, domain string, k int) ([]Record, []float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		rec   Record
		score float64
	}
	var candidates []scored
	for _, rec := range m.recs[col] {
		if domain != "" && rec.Domain != domain {
			continue
		}
		candidates = append(candidates, scored{rec: rec, score: Cosine(vector, rec.Vector)})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	recs := make([]Record, len(candidates))
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		recs[i] = c.rec
		scores[i] = c.score
	}
	return recs, scores, nil
}

func (m *MemoryStore) Count(_ context.Context, col Collection) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.recs[col]), nil
}

// Cosine returns the cosine similarity of two vectors, 0 when either is a
// zero vector or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
