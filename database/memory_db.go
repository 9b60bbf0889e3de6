package database

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tieubaoca/docqa-be/types"
)

type memoryRecord struct {
	id     string
	chunk  types.Chunk
	vector []float32
}

// MemoryStore keeps records in process. It backs local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []memoryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) EnsureCollection(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, filter types.Filter) (bool, error) {
	n, err := s.Count(ctx, filter)
	return n > 0, err
}

// Count returns the number of records matching the filter.
func (s *MemoryStore) Count(ctx context.Context, filter types.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.records {
		if matches(r.chunk, filter) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, records []types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if len(r.Vector) == 0 {
			return errors.New("record has no vector")
		}
		vector := make([]float32, len(r.Vector))
		copy(vector, r.Vector)
		s.records = append(s.records, memoryRecord{
			id:     uuid.NewString(),
			chunk:  r.Chunk,
			vector: vector,
		})
	}
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, vector []float32, limit int, filter types.Filter) ([]types.ScoredChunk, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []types.ScoredChunk
	for _, r := range s.records {
		if !matches(r.chunk, filter) {
			continue
		}
		results = append(results, types.ScoredChunk{
			Chunk: r.chunk,
			ID:    r.id,
			Score: cosine(vector, r.vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryStore) Delete(ctx context.Context, filter types.Filter) error {
	if filter.IsEmpty() {
		return ErrEmptyFilter
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, r := range s.records {
		if !matches(r.chunk, filter) {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

func matches(chunk types.Chunk, filter types.Filter) bool {
	if filter.DatabaseID != "" && chunk.DatabaseID != filter.DatabaseID {
		return false
	}
	if filter.Source != "" && chunk.Source != filter.Source {
		return false
	}
	return true
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
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
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
