package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/philippgille/chromem-go"

	"clausecheck/internal/port"
)

// ChromemStore implements VectorStore on an in-memory chromem-go collection.
// chromem normalises every vector, so zero vectors (chunks with no known
// terms) are never added to the collection and always score 0.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	dimension  int
	seqs       map[string]int
}

func NewChromemStore(name string) (*ChromemStore, error) {
	db := chromem.NewDB()
	c, err := db.CreateCollection(name, nil, precomputedOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return &ChromemStore{
		db:         db,
		collection: c,
		name:       name,
		seqs:       make(map[string]int),
	}, nil
}

func precomputedOnly(context.Context, string) ([]float32, error) {
	return nil, errors.New("chromem store only accepts precomputed embeddings")
}

func (s *ChromemStore) Upsert(ctx context.Context, items []port.VectorItem) error {
	docs := make([]chromem.Document, 0, len(items))
	for _, item := range items {
		if len(s.seqs) == 0 && s.dimension == 0 {
			s.dimension = len(item.Vector)
		}
		if len(item.Vector) != s.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(item.Vector))
		}
		s.seqs[item.ID] = item.Seq

		if isZero(item.Vector) {
			continue
		}

		vec := make([]float32, len(item.Vector))
		copy(vec, item.Vector)
		docs = append(docs, chromem.Document{
			ID:        item.ID,
			Metadata:  map[string]string{"seq": strconv.Itoa(item.Seq)},
			Embedding: vec,
		})
	}
	if len(docs) == 0 {
		return nil
	}
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, query []float32, k int) ([]port.VectorResult, error) {
	if len(s.seqs) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query))
	}

	results := make([]port.VectorResult, 0, len(s.seqs))
	scored := make(map[string]bool, len(s.seqs))

	// chromem returns at most Count() results; ask for all so ties at the
	// cut-off are resolved by insertion order below, not by chromem.
	if n := s.collection.Count(); n > 0 && !isZero(query) {
		matches, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
			QueryEmbedding: query,
			NResults:       n,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query collection: %w", err)
		}
		for _, m := range matches {
			results = append(results, port.VectorResult{
				ID:    m.ID,
				Seq:   s.seqs[m.ID],
				Score: float64(m.Similarity),
			})
			scored[m.ID] = true
		}
	}

	for id, seq := range s.seqs {
		if !scored[id] {
			results = append(results, port.VectorResult{ID: id, Seq: seq})
		}
	}

	sortResults(results)

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func (s *ChromemStore) Count() int {
	return len(s.seqs)
}

func (s *ChromemStore) Close() error {
	s.seqs = make(map[string]int)
	return s.db.DeleteCollection(s.name)
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
