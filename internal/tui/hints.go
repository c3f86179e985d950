package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "ctrl+s", "esc")
	Desc string // Short description (e.g., "preview", "back")
}

// renderHints renders hints in inline format: "ctrl+s preview  esc quit"
func (a App) renderHints(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// contextualHints returns the hints for the current mode.
func (a App) contextualHints() []Hint {
	switch a.mode {
	case ModeEdit:
		return []Hint{
			{Key: "ctrl+s", Desc: "preview"},
			{Key: "esc", Desc: "quit"},
		}
	case ModePreview:
		hints := []Hint{
			{Key: "y/enter", Desc: "apply"},
			{Key: "esc", Desc: "edit"},
		}
		if len(a.planLines) > a.layoutConfig.Modal.PreviewMaxVisible {
			hints = append([]Hint{{Key: "j/k", Desc: "scroll"}}, hints...)
		}
		return append(hints, Hint{Key: "q", Desc: "quit"})
	case ModeResult:
		return []Hint{
			{Key: "enter/q", Desc: "quit"},
			{Key: "esc", Desc: "edit again"},
		}
	default:
		return nil
	}
}
