package chunker

import (
	"strings"
	"testing"

	"clausecheck/internal/domain"
)

func mustChunker(t *testing.T, size, overlap int) *RecursiveChunker {
	t.Helper()
	c, err := NewRecursiveChunker(size, overlap)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// reassemble drops the leading overlap of every chunk after the first.
func reassemble(chunks []domain.Chunk, overlap int) string {
	var sb strings.Builder
	for i, ch := range chunks {
		r := []rune(ch.Text)
		if i > 0 {
			r = r[overlap:]
		}
		sb.WriteString(string(r))
	}
	return sb.String()
}

const contract = `EMPLOYMENT AGREEMENT

1. Term. This agreement begins on the start date and continues until terminated by either party.

2. Termination. The employer may terminate the employee at any time without notice or severance. The employee must give ninety days notice.

3. Non-compete. The employee shall not work for any competitor anywhere in the world for ten years after termination!

4. Overtime. The employee waives all rights to overtime pay; the employer decides working hours at its sole discretion.

5. Disputes. Any dispute shall be resolved exclusively by an arbitrator chosen by the employer? The employee bears all costs.`

func TestRecursiveChunkerRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		text    string
	}{
		{"contract", 120, 20, contract},
		{"contract no overlap", 80, 0, contract},
		{"contract default sizes", 700, 100, strings.Repeat(contract+"\n\n", 5)},
		{"no boundaries", 10, 3, strings.Repeat("x", 97)},
		{"unicode", 7, 2, "Vertrag über Kündigung «fristlos», ohne Abfindung; ÄÖÜ ß"},
		{"whitespace only", 4, 1, "          "},
		{"large overlap", 10, 9, "one two three four five six seven eight nine ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustChunker(t, tt.size, tt.overlap)
			chunks, err := c.Chunk(domain.Document{ID: "doc1", Text: tt.text})
			if err != nil {
				t.Fatal(err)
			}
			if got := reassemble(chunks, tt.overlap); got != tt.text {
				t.Errorf("round trip mismatch:\n got %q\nwant %q", got, tt.text)
			}
		})
	}
}

func TestRecursiveChunkerOverlapAndSize(t *testing.T) {
	const size, overlap = 120, 20
	c := mustChunker(t, size, overlap)
	text := []rune(contract)

	chunks, err := c.Chunk(domain.Document{ID: "doc1", Text: contract})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d has index %d", i, ch.Index)
		}
		if ch.Len() > size {
			t.Errorf("chunk %d is %d runes, limit %d", i, ch.Len(), size)
		}
		if ch.Text != string(text[ch.Start:ch.End]) {
			t.Errorf("chunk %d text does not match offsets %d-%d", i, ch.Start, ch.End)
		}
		if ch.DocID != "doc1" {
			t.Errorf("chunk %d DocID = %q", i, ch.DocID)
		}
		if i == 0 {
			continue
		}
		prev := chunks[i-1]
		if prev.End-ch.Start != overlap {
			t.Errorf("chunks %d/%d overlap by %d, want %d", i-1, i, prev.End-ch.Start, overlap)
		}
	}

	if last := chunks[len(chunks)-1]; last.End != len(text) {
		t.Errorf("last chunk ends at %d, document has %d runes", last.End, len(text))
	}
}

func TestRecursiveChunkerPrefersNaturalBoundaries(t *testing.T) {
	c := mustChunker(t, 120, 20)
	chunks, err := c.Chunk(domain.Document{ID: "doc1", Text: contract})
	if err != nil {
		t.Fatal(err)
	}

	for i, ch := range chunks[:len(chunks)-1] {
		last := ch.Text[len(ch.Text)-1]
		if last != '\n' && last != ' ' {
			t.Errorf("chunk %d ends mid-word: %q", i, ch.Text)
		}
	}
}

func TestRecursiveChunkerParagraphBoundary(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n\n" + strings.Repeat("b", 60)
	c := mustChunker(t, 100, 10)

	chunks, err := c.Chunk(domain.Document{ID: "doc1", Text: text})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != strings.Repeat("a", 60)+"\n\n" {
		t.Errorf("first chunk should end at the paragraph break, got %q", chunks[0].Text)
	}
}

func TestRecursiveChunkerHardCut(t *testing.T) {
	c := mustChunker(t, 10, 2)
	chunks, err := c.Chunk(domain.Document{ID: "doc1", Text: strings.Repeat("z", 25)})
	if err != nil {
		t.Fatal(err)
	}

	wantLens := []int{10, 10, 9}
	if len(chunks) != len(wantLens) {
		t.Fatalf("expected %d chunks, got %d", len(wantLens), len(chunks))
	}
	for i, want := range wantLens {
		if chunks[i].Len() != want {
			t.Errorf("chunk %d len = %d, want %d", i, chunks[i].Len(), want)
		}
	}
}

func TestRecursiveChunkerEmptyDocument(t *testing.T) {
	c := mustChunker(t, 700, 100)
	chunks, err := c.Chunk(domain.Document{ID: "doc1", Text: ""})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty document, got %d", len(chunks))
	}
}

func TestRecursiveChunkerShortDocument(t *testing.T) {
	const text = "This contract may terminate the employee at any time without notice or severance."
	c := mustChunker(t, 700, 100)

	chunks, err := c.Chunk(domain.Document{ID: "doc1", Text: text})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("chunk text = %q, want whole document", chunks[0].Text)
	}
	if chunks[0].Start != 0 || chunks[0].End != len([]rune(text)) {
		t.Errorf("unexpected offsets %d-%d", chunks[0].Start, chunks[0].End)
	}
}

func TestRecursiveChunkerExactSize(t *testing.T) {
	c := mustChunker(t, 10, 2)
	chunks, err := c.Chunk(domain.Document{ID: "doc1", Text: "0123456789"})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Errorf("document of exactly chunk size should yield 1 chunk, got %d", len(chunks))
	}
}

func TestRecursiveChunkerDeterministic(t *testing.T) {
	c := mustChunker(t, 90, 15)
	doc := domain.Document{ID: "doc1", Text: contract}

	first, err := c.Chunk(doc)
	if err != nil {
		t.Fatal(err)
	}
	for run := 0; run < 5; run++ {
		again, err := c.Chunk(doc)
		if err != nil {
			t.Fatal(err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: %d chunks, want %d", run, len(again), len(first))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Errorf("run %d: chunk %d differs", run, i)
			}
		}
	}
}

func TestChunkIDUniqueness(t *testing.T) {
	c := mustChunker(t, 30, 5)
	chunks, err := c.Chunk(domain.Document{ID: "doc1", Text: contract})
	if err != nil {
		t.Fatal(err)
	}

	ids := make(map[string]bool)
	for _, chunk := range chunks {
		if ids[chunk.ID] {
			t.Errorf("duplicate chunk ID: %s", chunk.ID)
		}
		ids[chunk.ID] = true
	}
}

func TestNewRecursiveChunkerValidation(t *testing.T) {
	tests := []struct {
		size, overlap int
		ok            bool
	}{
		{700, 100, true},
		{1, 0, true},
		{0, 0, false},
		{-5, 0, false},
		{10, 10, false},
		{10, 11, false},
		{10, -1, false},
	}

	for _, tt := range tests {
		_, err := NewRecursiveChunker(tt.size, tt.overlap)
		if (err == nil) != tt.ok {
			t.Errorf("NewRecursiveChunker(%d, %d) error = %v, want ok=%v", tt.size, tt.overlap, err, tt.ok)
		}
	}
}
