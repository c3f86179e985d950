package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/tui/layout"
)

// View implements tea.Model.
func (a App) View() string {
	var body string
	switch a.mode {
	case ModePreview:
		body = a.renderPreview()
	case ModeApplying:
		body = a.styles.Subtle.Render("Applying changes...")
	case ModeResult:
		body = a.renderResult()
	default:
		body = a.renderEditor()
	}

	content := a.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left,
		a.styles.Title.Render("Restructure bookmarks"),
		body,
		"",
		a.renderHints(a.contextualHints()),
	))

	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

func (a App) renderEditor() string {
	status := a.styles.Subtle.Render("One entry per line. Folders end with /, bookmarks are \"title url\".")
	if a.err != nil {
		status = a.styles.Error.Render("Could not plan: " + a.err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.editor.View(), status)
}

func (a App) renderPreview() string {
	width := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal.DefaultWidthPercent, a.layoutConfig.Modal)
	// border (2) + padding (2)
	lineWidth := width - 4

	creates, moves := model.CountOperations(a.plan.Operations)
	header := fmt.Sprintf("%d folders to create, %d items to place", creates, moves)

	var b strings.Builder
	b.WriteString(a.styles.Subtle.Render(header))
	b.WriteString("\n\n")

	if len(a.planLines) == 0 {
		b.WriteString(a.styles.Empty.Render("Nothing to do: bookmarks already match the layout"))
	} else {
		start, end := layout.CalculateVisibleListItems(a.layoutConfig.Modal.PreviewMaxVisible, a.cursor, len(a.planLines))
		for i := start; i < end; i++ {
			line, _ := layout.TruncateText(a.planLines[i], lineWidth, a.layoutConfig.Text)
			style := a.styles.Op
			if strings.HasPrefix(line, "!") {
				style = a.styles.Warning
			}
			b.WriteString(style.Render(line))
			if i < end-1 {
				b.WriteString("\n")
			}
		}
		if hidden := len(a.planLines) - (end - start); hidden > 0 {
			b.WriteString("\n")
			b.WriteString(a.styles.Subtle.Render(fmt.Sprintf("(%d more)", hidden)))
		}
	}

	return a.styles.Modal.Width(width).Render(b.String())
}

func (a App) renderResult() string {
	r := a.result
	if r.Success {
		return a.styles.Success.Render(r.Message)
	}

	lines := []string{a.styles.Error.Render(r.Message)}
	if r.Error != "" {
		lines = append(lines, a.styles.Subtle.Render("error: "+r.Error))
	}
	if r.SnapshotID != "" {
		lines = append(lines, a.styles.Subtle.Render("snapshot: "+r.SnapshotID))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
