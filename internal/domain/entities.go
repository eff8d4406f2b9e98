package domain

import "time"

// Document is one uploaded contract. It lives only for a single review run.
type Document struct {
	ID   string
	Path string
	Text string
}

// Chunk is a contiguous slice of a document. Start and End are rune offsets
// into Document.Text, Index is the position in document order.
type Chunk struct {
	ID    string `json:"id"`
	DocID string `json:"doc_id"`
	Index int    `json:"index"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Len returns the chunk length in runes.
func (c Chunk) Len() int {
	return c.End - c.Start
}

type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// ReviewRecord is an archived review outcome.
type ReviewRecord struct {
	ID        string    `json:"id"`
	DocID     string    `json:"doc_id"`
	DocPath   string    `json:"doc_path"`
	Model     string    `json:"model"`
	Status    string    `json:"status"`
	Text      string    `json:"text,omitempty"`
	Message   string    `json:"message,omitempty"`
	Chunks    int       `json:"chunks"`
	Retrieved []int     `json:"retrieved"`
	CreatedAt time.Time `json:"created_at"`
}
