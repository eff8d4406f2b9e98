// Package tui shows a rendered review in a scrollable full-screen pager.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Pager is the Bubble Tea model for the review pager.
type Pager struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
}

func NewPager(title, content string) Pager {
	return Pager{title: title, content: content}
}

func (m Pager) Init() tea.Cmd { return nil }

func (m Pager) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - lipgloss.Height(m.header()) - lipgloss.Height(m.footer())
		if height < 3 {
			height = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.SetContent(lipgloss.NewStyle().Width(msg.Width).Render(m.content))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
			m.viewport.SetContent(lipgloss.NewStyle().Width(msg.Width).Render(m.content))
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Pager) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.header() + "\n" + m.viewport.View() + "\n" + m.footer()
}

func (m Pager) header() string {
	return headerStyle.Render(m.title)
}

func (m Pager) footer() string {
	percent := 100.0
	if m.ready {
		percent = m.viewport.ScrollPercent() * 100
	}
	return footerStyle.Render(fmt.Sprintf("%3.0f%%  ↑/↓ scroll · q quit", percent))
}

// Run blocks until the user quits the pager.
func Run(title, content string) error {
	content = strings.TrimRight(content, "\n")
	_, err := tea.NewProgram(NewPager(title, content), tea.WithAltScreen()).Run()
	return err
}
