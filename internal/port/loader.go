package port

import "clausecheck/internal/domain"

// DocumentLoader reads a document from a path ("-" for stdin).
type DocumentLoader interface {
	Load(path string) (domain.Document, error)
}
