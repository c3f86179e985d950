// Package picker is a small list dialog for choosing one search match.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/tui/layout"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"})

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1)
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("k", "up")),
	Down:   key.NewBinding(key.WithKeys("j", "down")),
	Select: key.NewBinding(key.WithKeys("enter")),
	Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c")),
}

// Picker lets the user choose one of a list of nodes.
type Picker struct {
	nodes      []model.Node
	query      string
	cursor     int
	maxVisible int
	text       layout.TextConfig
	selected   bool
	cancelled  bool
	width      int
	height     int
}

// New creates a Picker over the matches for query.
func New(nodes []model.Node, query string) Picker {
	cfg := layout.DefaultConfig()
	return Picker{
		nodes:      nodes,
		query:      query,
		maxVisible: cfg.Modal.PreviewMaxVisible,
		text:       cfg.Text,
		width:      80,
		height:     24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		// two lines per entry plus header and footer
		if n := (msg.Height - 4) / 2; n > 0 {
			p.maxVisible = n
		}
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Cancel):
			p.cancelled = true
			return p, tea.Quit
		case key.Matches(msg, keys.Select):
			if len(p.nodes) == 0 {
				p.cancelled = true
			} else {
				p.selected = true
			}
			return p, tea.Quit
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.nodes)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		}
	}

	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.nodes))))
	b.WriteString("\n")

	start, end := layout.CalculateVisibleListItems(p.maxVisible, p.cursor, len(p.nodes))
	for i := start; i < end; i++ {
		n := p.nodes[i]
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		title := n.Title
		if n.IsFolder() {
			title += "/"
		}
		b.WriteString(cursor + style.Render(p.truncate(title)) + "\n")
		if !n.IsFolder() {
			b.WriteString("   " + urlStyle.Render(p.truncate(n.URL)) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(urlStyle.Render("j/k: move  enter: select  q/esc: cancel"))

	return b.String()
}

func (p Picker) truncate(s string) string {
	out, _ := layout.TruncateText(s, p.width-4, p.text)
	return out
}

// Selected returns the chosen node, or nil if the picker was cancelled.
func (p Picker) Selected() *model.Node {
	if p.cancelled || !p.selected || p.cursor >= len(p.nodes) {
		return nil
	}
	n := p.nodes[p.cursor]
	return &n
}

// Cancelled reports whether the user left without choosing.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
