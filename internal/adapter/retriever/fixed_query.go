package retriever

import (
	"context"
	"fmt"
	"strings"

	"clausecheck/internal/domain"
)

// DefaultQuery is the analytical question every contract is searched with.
const DefaultQuery = "Identify illegal or unfair clauses, flag them, and suggest fair replacements."

// DefaultTopK is the number of chunks forwarded to the reviewer.
const DefaultTopK = 3

// Searcher is the part of an embedding index the retriever needs.
type Searcher interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)
}

// FixedQueryRetriever selects the chunks most similar to one fixed query.
type FixedQueryRetriever struct {
	searcher Searcher
	expander *QueryExpander
	query    string
	k        int
}

// NewFixedQueryRetriever falls back to DefaultQuery and DefaultTopK for an
// empty query or a non-positive k.
func NewFixedQueryRetriever(searcher Searcher, query string, k int) *FixedQueryRetriever {
	if strings.TrimSpace(query) == "" {
		query = DefaultQuery
	}
	if k <= 0 {
		k = DefaultTopK
	}
	return &FixedQueryRetriever{searcher: searcher, query: query, k: k}
}

// WithExpander searches with the expanded query text. Query still reports
// the query as configured.
func (r *FixedQueryRetriever) WithExpander(e *QueryExpander) *FixedQueryRetriever {
	r.expander = e
	return r
}

func (r *FixedQueryRetriever) Query() string { return r.query }

func (r *FixedQueryRetriever) TopK() int { return r.k }

// Retrieve returns at most k chunks, most similar first. Fewer chunks in the
// index than k yields all of them.
func (r *FixedQueryRetriever) Retrieve(ctx context.Context) ([]domain.ScoredChunk, error) {
	if r.searcher == nil {
		return nil, fmt.Errorf("retriever has no index")
	}
	text := r.query
	if r.expander != nil {
		text = r.expander.Expand(text)
	}
	results, err := r.searcher.SimilaritySearch(ctx, text, r.k)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	return results, nil
}
