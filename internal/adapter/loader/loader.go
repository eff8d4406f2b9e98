// Package loader reads a contract from disk or stdin into a domain.Document.
package loader

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"clausecheck/internal/domain"
)

// StdinPath is the path argument that reads the document from stdin.
const StdinPath = "-"

var (
	ErrNotIncluded = errors.New("file type not accepted")
	ErrInvalidUTF8 = errors.New("file is not valid UTF-8 text")
)

// DefaultIncludes are the accepted document types.
var DefaultIncludes = []string{"**/*.txt", "**/*.md", "**/*.pdf", "**/*.docx"}

type Loader struct {
	includes []string
	excludes []string
	stdin    io.Reader
}

func NewLoader(includes, excludes []string) *Loader {
	if len(includes) == 0 {
		includes = DefaultIncludes
	}
	return &Loader{
		includes: includes,
		excludes: excludes,
		stdin:    os.Stdin,
	}
}

// WithStdin replaces the reader used for StdinPath.
func (l *Loader) WithStdin(r io.Reader) *Loader {
	l.stdin = r
	return l
}

// Accepts reports whether path matches an include pattern and no exclude
// pattern. Patterns are tried against the lowercased cleaned path and base name.
func (l *Loader) Accepts(path string) bool {
	clean := strings.ToLower(filepath.ToSlash(filepath.Clean(path)))
	candidates := []string{
		strings.TrimPrefix(clean, "/"),
		filepath.Base(clean),
	}
	return matchAny(l.includes, candidates) && !matchAny(l.excludes, candidates)
}

func matchAny(patterns, candidates []string) bool {
	for _, pattern := range patterns {
		for _, c := range candidates {
			matched, err := doublestar.Match(pattern, c)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

func (l *Loader) Load(path string) (domain.Document, error) {
	if path == StdinPath {
		data, err := io.ReadAll(l.stdin)
		if err != nil {
			return domain.Document{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		text, err := decodeText(data)
		if err != nil {
			return domain.Document{}, fmt.Errorf("stdin: %w", err)
		}
		return newDocument("<stdin>", text), nil
	}

	if !l.Accepts(path) {
		return domain.Document{}, fmt.Errorf("%w: %s", ErrNotIncluded, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return domain.Document{}, fmt.Errorf("%s is a directory", path)
	}

	var text string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = readPDF(path)
	case ".docx":
		text, err = readDOCX(path)
	default:
		text, err = readText(path)
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return newDocument(path, text), nil
}

func newDocument(path, text string) domain.Document {
	return domain.Document{
		ID:   generateDocID(text),
		Path: path,
		Text: text,
	}
}

// generateDocID hashes the content so the same contract gets the same ID
// wherever it is read from.
func generateDocID(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:8])
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return decodeText(data)
}

func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.TrimSpace(text))
	}
	return sb.String(), nil
}

func readDOCX(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	return docxText(r.Editable().GetContent())
}

// docxText extracts run text from WordprocessingML. Paragraphs end with a
// newline, tabs and breaks keep their meaning.
func docxText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing document xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
