package store

import (
	"context"
	"fmt"
	"math"
	"sort"

	"clausecheck/internal/port"
)

// MemoryVectorStore implements VectorStore with an insertion-ordered slice
// and brute-force cosine search. It lives for one review run.
type MemoryVectorStore struct {
	dimension int
	entries   []vectorEntry
	byID      map[string]int
}

type vectorEntry struct {
	id     string
	seq    int
	vector []float32
}

// NewMemoryVectorStore creates an empty store. A dimension of 0 is fixed by
// the first upserted vector.
func NewMemoryVectorStore(dimension int) *MemoryVectorStore {
	return &MemoryVectorStore{
		dimension: dimension,
		byID:      make(map[string]int),
	}
}

// Upsert adds or updates vectors in the store.
func (s *MemoryVectorStore) Upsert(_ context.Context, items []port.VectorItem) error {
	for _, item := range items {
		if len(s.entries) == 0 && s.dimension == 0 {
			s.dimension = len(item.Vector)
		}
		if len(item.Vector) != s.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(item.Vector))
		}

		entry := vectorEntry{id: item.ID, seq: item.Seq, vector: item.Vector}
		if i, ok := s.byID[item.ID]; ok {
			s.entries[i] = entry
			continue
		}
		s.byID[item.ID] = len(s.entries)
		s.entries = append(s.entries, entry)
	}
	return nil
}

// Search finds the k nearest vectors to the query using cosine similarity.
func (s *MemoryVectorStore) Search(_ context.Context, query []float32, k int) ([]port.VectorResult, error) {
	if len(s.entries) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query))
	}

	scores := make([]port.VectorResult, 0, len(s.entries))
	for _, entry := range s.entries {
		scores = append(scores, port.VectorResult{
			ID:    entry.id,
			Seq:   entry.seq,
			Score: cosineSimilarity(query, entry.vector),
		})
	}

	sortResults(scores)

	if k > len(scores) {
		k = len(scores)
	}
	return scores[:k], nil
}

func (s *MemoryVectorStore) Count() int {
	return len(s.entries)
}

func (s *MemoryVectorStore) Close() error {
	s.entries = nil
	s.byID = make(map[string]int)
	return nil
}

// scorePrecision absorbs float32 rounding so that mathematically equal
// similarities compare equal in both backends.
const scorePrecision = 1e6

// sortResults rounds scores to scorePrecision, then orders by descending
// score and ascending insertion order.
func sortResults(results []port.VectorResult) {
	for i := range results {
		results[i].Score = math.Round(results[i].Score*scorePrecision) / scorePrecision
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Seq < results[j].Seq
	})
}

// cosineSimilarity returns 0 when either vector has zero norm.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
