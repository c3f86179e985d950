package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App      lipgloss.Style
	Title    lipgloss.Style
	Modal    lipgloss.Style
	Op       lipgloss.Style
	Warning  lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Subtle   lipgloss.Style
	Empty    lipgloss.Style
	HintKey  lipgloss.Style // Key portion of hints (e.g., "ctrl+s")
	HintDesc lipgloss.Style // Description portion of hints (e.g., "preview plan")
}

// DefaultStyles returns the default style configuration.
// Industrial design: grayscale with single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"}
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	warn := lipgloss.AdaptiveColor{Light: "#8A6A2A", Dark: "#B09050"}
	danger := lipgloss.AdaptiveColor{Light: "#8A3A3A", Dark: "#B06060"}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		Op: lipgloss.NewStyle().
			Foreground(primary),

		Warning: lipgloss.NewStyle().
			Foreground(warn),

		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(danger),

		Subtle: lipgloss.NewStyle().
			Foreground(subtle),

		Empty: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true),

		HintKey: lipgloss.NewStyle().
			Foreground(accent),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),
	}
}
