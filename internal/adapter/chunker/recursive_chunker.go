package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"clausecheck/internal/domain"
)

// separators are tried in order; earlier entries are stronger boundaries.
var separators = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune(". "),
	[]rune("! "),
	[]rune("? "),
	[]rune("; "),
	[]rune(" "),
}

// RecursiveChunker splits text into chunks of at most size runes where each
// chunk starts exactly overlap runes before the end of the previous one.
// Cuts land after the strongest natural boundary available in the window and
// fall back to a hard cut at size.
type RecursiveChunker struct {
	size    int
	overlap int
}

func NewRecursiveChunker(size, overlap int) (*RecursiveChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &RecursiveChunker{size: size, overlap: overlap}, nil
}

func (c *RecursiveChunker) Size() int    { return c.size }
func (c *RecursiveChunker) Overlap() int { return c.overlap }

func (c *RecursiveChunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	text := []rune(doc.Text)
	if len(text) == 0 {
		return nil, nil
	}

	var chunks []domain.Chunk
	start := 0
	for {
		end := len(text)
		if end-start > c.size {
			end = c.cut(text, start)
		}

		chunks = append(chunks, domain.Chunk{
			ID:    generateChunkID(doc.ID, start, end),
			DocID: doc.ID,
			Index: len(chunks),
			Start: start,
			End:   end,
			Text:  string(text[start:end]),
		})

		if end == len(text) {
			break
		}
		start = end - c.overlap
	}

	return chunks, nil
}

// cut picks the end offset for a chunk starting at start. The result is in
// (start+overlap, start+size] so the next chunk always advances.
func (c *RecursiveChunker) cut(text []rune, start int) int {
	limit := start + c.size
	floor := start + c.overlap
	half := start + c.size/2
	if half < floor {
		half = floor
	}

	// Prefer a strong boundary that keeps the chunk at least half full,
	// then any boundary, then a hard cut.
	for _, lo := range []int{half, floor} {
		for _, sep := range separators {
			if end := lastBoundary(text, sep, lo, limit); end > 0 {
				return end
			}
		}
	}
	return limit
}

// lastBoundary returns the offset just after the last occurrence of sep that
// ends in (lo, limit], or -1.
func lastBoundary(text, sep []rune, lo, limit int) int {
	for end := limit; end > lo; end-- {
		i := end - len(sep)
		if i < 0 {
			break
		}
		if hasPrefixAt(text, sep, i) {
			return end
		}
	}
	return -1
}

func hasPrefixAt(text, sep []rune, at int) bool {
	if at+len(sep) > len(text) {
		return false
	}
	for j, r := range sep {
		if text[at+j] != r {
			return false
		}
	}
	return true
}

func generateChunkID(docID string, start, end int) string {
	data := fmt.Sprintf("%s:%d-%d", docID, start, end)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
