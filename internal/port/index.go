package port

import (
	"context"

	"clausecheck/internal/domain"
)

// ProgressFunc reports how many of total items have been processed.
type ProgressFunc func(done, total int)

// Index makes the chunks of one document searchable by similarity.
type Index interface {
	Build(ctx context.Context, chunks []domain.Chunk, progress ProgressFunc) error
	SimilaritySearch(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)
	Len() int
	Close() error
}

// ReviewArchive stores finished reviews. Put assigns the record ID.
type ReviewArchive interface {
	Put(rec domain.ReviewRecord) (domain.ReviewRecord, error)
}
