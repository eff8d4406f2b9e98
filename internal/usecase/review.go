package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"clausecheck/internal/domain"
	"clausecheck/internal/port"
)

// ReviewUseCase runs one document through chunking, indexing, retrieval,
// prompt assembly and the remote review call.
type ReviewUseCase struct {
	chunker   port.Chunker
	index     port.Index
	retriever port.Retriever
	reviewer  port.Reviewer
	archive   port.ReviewArchive
	logger    zerolog.Logger
}

// NewReviewUseCase creates a new review use case. reviewer may be nil when
// only Retrieve is used.
func NewReviewUseCase(
	chunker port.Chunker,
	index port.Index,
	retriever port.Retriever,
	reviewer port.Reviewer,
	logger zerolog.Logger,
) *ReviewUseCase {
	return &ReviewUseCase{
		chunker:   chunker,
		index:     index,
		retriever: retriever,
		reviewer:  reviewer,
		logger:    logger,
	}
}

// WithArchive records every finished review in a.
func (u *ReviewUseCase) WithArchive(a port.ReviewArchive) *ReviewUseCase {
	u.archive = a
	return u
}

// Retrieval is the local half of a review: the chunks and the subset chosen
// for the prompt.
type Retrieval struct {
	Document  domain.Document
	Chunks    []domain.Chunk
	Retrieved []domain.ScoredChunk
}

// ReviewReport is the outcome of a full review run.
type ReviewReport struct {
	Retrieval
	Prompt   string
	Model    string
	Result   domain.ReviewResult
	RecordID string
}

// Retrieve chunks and indexes doc, then selects the chunks for review.
func (u *ReviewUseCase) Retrieve(ctx context.Context, doc domain.Document, progress port.ProgressFunc) (*Retrieval, error) {
	chunks, err := u.chunker.Chunk(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk document: %w", err)
	}
	u.logger.Debug().Str("doc", doc.ID).Int("chunks", len(chunks)).Msg("document chunked")

	if err := u.index.Build(ctx, chunks, progress); err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	retrieved, err := u.retriever.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve clauses: %w", err)
	}

	ev := u.logger.Debug().Int("retrieved", len(retrieved))
	if len(retrieved) > 0 {
		ev = ev.Float64("top_score", retrieved[0].Score)
	}
	ev.Msg("clauses retrieved")

	if len(retrieved) > 0 && retrieved[0].Score == 0 {
		u.logger.Warn().Str("doc", doc.ID).Msg("query shares no terms with the document; clauses selected in document order")
	}

	return &Retrieval{Document: doc, Chunks: chunks, Retrieved: retrieved}, nil
}

// Review runs the whole pipeline. Local failures are returned as errors;
// a failed remote call is reported in ReviewReport.Result.
func (u *ReviewUseCase) Review(ctx context.Context, doc domain.Document, progress port.ProgressFunc) (*ReviewReport, error) {
	if u.reviewer == nil {
		return nil, fmt.Errorf("no reviewer configured")
	}

	retrieval, err := u.Retrieve(ctx, doc, progress)
	if err != nil {
		return nil, err
	}

	report := &ReviewReport{
		Retrieval: *retrieval,
		Prompt:    BuildReviewPrompt(retrieval.Retrieved),
		Model:     u.reviewer.ModelName(),
	}

	start := time.Now()
	text, err := u.reviewer.Review(ctx, report.Prompt)
	report.Result = domain.ResultFrom(text, err)

	if report.Result.Succeeded() {
		u.logger.Info().Str("model", report.Model).Dur("elapsed", time.Since(start)).Msg("review completed")
	} else {
		u.logger.Warn().Err(err).Str("kind", report.Result.Kind().String()).Msg("review failed")
	}

	if u.archive != nil {
		rec, err := u.archive.Put(report.Record())
		if err != nil {
			u.logger.Warn().Err(err).Msg("failed to archive review")
		} else {
			report.RecordID = rec.ID
		}
	}

	return report, nil
}

// Record converts the report into an archive entry.
func (r *ReviewReport) Record() domain.ReviewRecord {
	retrieved := make([]int, len(r.Retrieved))
	for i, sc := range r.Retrieved {
		retrieved[i] = sc.Chunk.Index
	}
	return domain.ReviewRecord{
		DocID:     r.Document.ID,
		DocPath:   r.Document.Path,
		Model:     r.Model,
		Status:    string(r.Result.Status),
		Text:      r.Result.Text,
		Message:   r.Result.Message(),
		Chunks:    len(r.Chunks),
		Retrieved: retrieved,
	}
}
