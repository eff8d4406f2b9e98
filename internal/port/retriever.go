package port

import (
	"context"

	"clausecheck/internal/domain"
)

// Retriever returns the chunks most relevant to its configured query.
type Retriever interface {
	Retrieve(ctx context.Context) ([]domain.ScoredChunk, error)
}
