package usecase

import (
	"fmt"
	"strings"

	"clausecheck/internal/domain"
)

// ReviewPreamble is the fixed instruction block that opens every review prompt.
const ReviewPreamble = "You are a contract law expert. Analyze the following contract clauses:\n\n" +
	"1. Identify illegal or unfair clauses and explain why they are problematic.\n" +
	"2. Provide clear, fair alternative clauses to replace them.\n" +
	"3. Summarize overall contract fairness and potential risks.\n\n" +
	"Clauses for review:\n"

// BuildReviewPrompt renders the retrieved chunks, in retrieval order and
// numbered from 1, under ReviewPreamble. Chunk text is included verbatim.
func BuildReviewPrompt(retrieved []domain.ScoredChunk) string {
	var sb strings.Builder
	sb.WriteString(ReviewPreamble)
	for i, sc := range retrieved {
		fmt.Fprintf(&sb, "Clause chunk %d:\n%s\n\n", i+1, sc.Chunk.Text)
	}
	return sb.String()
}
