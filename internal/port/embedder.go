package port

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension, or 0 if it is only
	// known after the first call to Embed.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// CorpusFitter is implemented by embedders whose model is derived from the
// texts being indexed. Fit is called once per run before any Embed call.
type CorpusFitter interface {
	Fit(corpus []string) error
}

// VectorStore stores and searches embedding vectors.
type VectorStore interface {
	// Upsert adds or updates vectors in the store.
	Upsert(ctx context.Context, items []VectorItem) error

	// Search finds the k nearest vectors to the query by cosine similarity.
	// Results are ordered by descending score, ties by insertion order.
	// k larger than Count is clamped.
	Search(ctx context.Context, query []float32, k int) ([]VectorResult, error)

	// Count returns the number of vectors in the store.
	Count() int

	// Close releases the store.
	Close() error
}

// VectorItem represents a vector to be stored.
type VectorItem struct {
	ID     string    // Unique identifier (chunk ID)
	Seq    int       // Insertion order, used to break score ties
	Vector []float32 // Embedding vector
}

// VectorResult represents a search result.
type VectorResult struct {
	ID    string  // Chunk ID
	Seq   int     // Insertion order of the matched item
	Score float64 // Cosine similarity (higher is better)
}
