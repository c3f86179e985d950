package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Editor EditorConfig
	Modal  ModalConfig
	Text   TextConfig
}

// EditorConfig holds outline editor dimension configuration.
type EditorConfig struct {
	// HeightReduction is subtracted from terminal height for the text area.
	// Accounts for: app padding (1) + title (2) + status line (1) + help bar (2) = 6
	HeightReduction int

	// WidthReduction is subtracted from terminal width for the text area.
	// Accounts for: app padding (4) + text area prompt and line numbers (6) = 10
	WidthReduction int

	// MinHeight is the minimum text area height.
	MinHeight int

	// MinWidth is the minimum text area width.
	MinWidth int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// DefaultWidthPercent is the plan preview width as percentage of terminal width.
	DefaultWidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// PreviewMaxVisible: max operation lines shown in the plan preview.
	PreviewMaxVisible int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Editor: EditorConfig{
			HeightReduction: 6, // app padding (1) + title (2) + status (1) + help bar (2)
			WidthReduction:  10,
			MinHeight:       5,
			MinWidth:        20,
		},
		Modal: ModalConfig{
			DefaultWidthPercent: 70,
			MinWidth:            40,
			MaxWidth:            100,
			PreviewMaxVisible:   12,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
