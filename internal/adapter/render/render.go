// Package render turns a finished review into terminal, Markdown, HTML or
// JSON output.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"clausecheck/internal/domain"
)

const (
	ReviewTitle   = "Contract Analysis and Suggested Revisions"
	DocumentTitle = "Uploaded Contract"
)

type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMarkdown, FormatHTML, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, markdown, html or json)", s)
	}
}

// View is everything a renderer may show about one review run.
type View struct {
	DocPath   string
	Model     string
	Document  string // shown only when Echo is set
	Echo      bool
	Retrieved []domain.ScoredChunk
	Result    domain.ReviewResult
}

// Render writes v to w in format f. width is used by the text format only.
func Render(w io.Writer, f Format, v View, width int) error {
	var out string
	switch f {
	case FormatText, "":
		out = Terminal(v, width)
	case FormatMarkdown:
		out = Markdown(v)
	case FormatHTML:
		html, err := HTML(v)
		if err != nil {
			return err
		}
		out = html
	case FormatJSON:
		data, err := JSON(v)
		if err != nil {
			return err
		}
		out = string(data) + "\n"
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
	_, err := io.WriteString(w, out)
	return err
}

// Markdown renders the review as a Markdown document. A failed review
// renders its user-facing message in place of the review text.
func Markdown(v View) string {
	var sb strings.Builder
	if v.Echo {
		fmt.Fprintf(&sb, "## %s\n\n```\n%s\n```\n\n", DocumentTitle, strings.TrimRight(v.Document, "\n"))
	}
	fmt.Fprintf(&sb, "# %s\n\n", ReviewTitle)
	if v.Result.Succeeded() {
		sb.WriteString(strings.TrimSpace(v.Result.Text))
		sb.WriteString("\n")
	} else {
		fmt.Fprintf(&sb, "> **Error:** %s\n", v.Result.Message())
	}

	if len(v.Retrieved) > 0 {
		sb.WriteString("\n## Reviewed clauses\n\n")
		for i, sc := range v.Retrieved {
			fmt.Fprintf(&sb, "**Clause chunk %d** (chunk #%d, similarity %.3f)\n\n", i+1, sc.Chunk.Index, sc.Score)
			for _, line := range strings.Split(strings.TrimRight(sc.Chunk.Text, "\n"), "\n") {
				fmt.Fprintf(&sb, "> %s\n", line)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

type jsonChunk struct {
	Index int     `json:"index"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

type jsonReport struct {
	Document  string      `json:"document"`
	Model     string      `json:"model"`
	Status    string      `json:"status"`
	Review    string      `json:"review,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorKind string      `json:"error_kind,omitempty"`
	Retrieved []jsonChunk `json:"retrieved"`
}

func JSON(v View) ([]byte, error) {
	report := jsonReport{
		Document:  v.DocPath,
		Model:     v.Model,
		Status:    string(v.Result.Status),
		Review:    v.Result.Text,
		Retrieved: make([]jsonChunk, 0, len(v.Retrieved)),
	}
	if !v.Result.Succeeded() {
		report.Error = v.Result.Message()
		report.ErrorKind = v.Result.Kind().String()
	}
	for _, sc := range v.Retrieved {
		report.Retrieved = append(report.Retrieved, jsonChunk{
			Index: sc.Chunk.Index,
			Start: sc.Chunk.Start,
			End:   sc.Chunk.End,
			Score: sc.Score,
			Text:  sc.Chunk.Text,
		})
	}
	return json.MarshalIndent(report, "", "  ")
}
