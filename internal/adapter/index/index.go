// Package index pairs an embedder with a vector store to make the chunks of
// one document searchable by similarity.
package index

import (
	"context"
	"errors"
	"fmt"

	"clausecheck/internal/domain"
	"clausecheck/internal/port"
)

const defaultBatchSize = 64

// ErrAlreadyBuilt is returned when Build is called on a populated index.
var ErrAlreadyBuilt = errors.New("index already built")

// EmbeddingIndex holds the chunks of a single document and their vectors.
type EmbeddingIndex struct {
	embedder  port.Embedder
	store     port.VectorStore
	batchSize int
	chunks    map[string]domain.Chunk
	built     bool
}

func NewEmbeddingIndex(embedder port.Embedder, store port.VectorStore, batchSize int) *EmbeddingIndex {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &EmbeddingIndex{
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
		chunks:    make(map[string]domain.Chunk),
	}
}

// Build embeds every chunk and stores it. Embedders that derive their model
// from the corpus are fitted on the chunk texts first. progress, if set, is
// called after each batch. An empty chunk slice
// yields an empty, searchable index.
func (x *EmbeddingIndex) Build(ctx context.Context, chunks []domain.Chunk, progress port.ProgressFunc) error {
	if x.built {
		return ErrAlreadyBuilt
	}
	x.built = true

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	if fitter, ok := x.embedder.(port.CorpusFitter); ok {
		if err := fitter.Fit(texts); err != nil {
			return fmt.Errorf("failed to fit embedder: %w", err)
		}
	}

	for i := 0; i < len(chunks); i += x.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := i + x.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		vectors, err := x.embedder.Embed(ctx, texts[i:end])
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}

		items := make([]port.VectorItem, len(batch))
		for j, c := range batch {
			items[j] = port.VectorItem{ID: c.ID, Seq: c.Index, Vector: vectors[j]}
			x.chunks[c.ID] = c
		}
		if err := x.store.Upsert(ctx, items); err != nil {
			return fmt.Errorf("failed to store vectors: %w", err)
		}

		if progress != nil {
			progress(end, len(chunks))
		}
	}
	return nil
}

// SimilaritySearch returns the k chunks closest to query, most similar first.
// k larger than the index is clamped.
func (x *EmbeddingIndex) SimilaritySearch(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if len(x.chunks) == 0 || k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	vectors, err := x.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	results, err := x.store.Search(ctx, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	scored := make([]domain.ScoredChunk, 0, len(results))
	for _, r := range results {
		chunk, ok := x.chunks[r.ID]
		if !ok {
			return nil, fmt.Errorf("vector store returned unknown chunk %s", r.ID)
		}
		scored = append(scored, domain.ScoredChunk{Chunk: chunk, Score: r.Score})
	}
	return scored, nil
}

func (x *EmbeddingIndex) Len() int {
	return len(x.chunks)
}

func (x *EmbeddingIndex) ModelName() string {
	return x.embedder.ModelName()
}

// Close releases the vector store.
func (x *EmbeddingIndex) Close() error {
	x.chunks = make(map[string]domain.Chunk)
	return x.store.Close()
}
