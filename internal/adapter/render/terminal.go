package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"clausecheck/internal/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Terminal renders v for a terminal. width <= 0 disables wrapping.
func Terminal(v View, width int) string {
	var parts []string

	if v.Echo {
		parts = append(parts, block(DocumentTitle, strings.TrimRight(v.Document, "\n"), width))
	}

	parts = append(parts, titleStyle.Render(ReviewTitle))
	meta := fmt.Sprintf("%s · %s · %d clause chunk(s) reviewed", v.DocPath, v.Model, len(v.Retrieved))
	parts = append(parts, mutedStyle.Render(meta), "")

	if v.Result.Succeeded() {
		text := strings.TrimSpace(v.Result.Text)
		if width > 0 {
			text = lipgloss.NewStyle().Width(width).Render(text)
		}
		parts = append(parts, text)
	} else {
		parts = append(parts, errorStyle.Render(v.Result.Message()))
	}

	return strings.Join(parts, "\n") + "\n"
}

// Chunks lists chunks in document order for the chunk command.
func Chunks(chunks []domain.Chunk, width int) string {
	var sb strings.Builder
	for _, c := range chunks {
		header := fmt.Sprintf("#%d  runes %d-%d", c.Index, c.Start, c.End)
		sb.WriteString(block(header, c.Text, width))
	}
	return sb.String()
}

// Retrieved lists the retrieved set in rank order for the retrieve command.
func Retrieved(scored []domain.ScoredChunk, width int) string {
	var sb strings.Builder
	for i, sc := range scored {
		header := fmt.Sprintf("%d. chunk #%d  runes %d-%d  score=%.4f", i+1, sc.Chunk.Index, sc.Chunk.Start, sc.Chunk.End, sc.Score)
		sb.WriteString(block(header, sc.Chunk.Text, width))
	}
	return sb.String()
}

func block(header, text string, width int) string {
	box := boxStyle
	if width > 4 {
		box = box.Width(width - 2)
	}
	return sectionStyle.Render(header) + "\n" + box.Render(text) + "\n"
}
