package retriever

import "strings"

// QueryExpander widens an abstract review question with the wording unfair
// clauses actually use. Lexical embedders only score terms shared by query
// and chunk, and "illegal or unfair clauses" rarely appears in a contract.
type QueryExpander struct {
	expansions []expansion
}

type expansion struct {
	trigger string
	terms   []string
}

// NewQueryExpander returns an expander with the built-in contract-risk
// lexicon. Each group is added when its trigger occurs in the query.
func NewQueryExpander() *QueryExpander {
	return &QueryExpander{expansions: []expansion{
		{"unfair", []string{
			"terminate terminated termination terminates without notice severance",
			"waive waives waiver forfeit forfeits forfeiture",
			"penalty penalties deduct deduction unpaid overtime",
			"sole discretion unilaterally exclusively irrevocable",
			"non-compete compete competitor solicit anywhere world years",
		}},
		{"illegal", []string{
			"unlawful void prohibited",
			"indemnify indemnifies indemnification liability liable damages",
			"court claim claims rights",
		}},
		{"clause", []string{
			"arbitration arbitrator jurisdiction governing law",
			"confidentiality renewal automatically",
		}},
	}}
}

// ExpandWithKeywords returns the query followed by the lexicon groups its
// triggers select, in lexicon order.
func (e *QueryExpander) ExpandWithKeywords(query string) []string {
	queries := []string{query}

	lowerQuery := strings.ToLower(query)
	for _, exp := range e.expansions {
		if strings.Contains(lowerQuery, exp.trigger) {
			queries = append(queries, exp.terms...)
		}
	}
	return queries
}

// Expand joins ExpandWithKeywords into one search text.
func (e *QueryExpander) Expand(query string) string {
	return strings.Join(e.ExpandWithKeywords(query), "\n")
}
