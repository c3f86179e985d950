package layout

// CalculateEditorSize computes the text area dimensions for a terminal.
// Both dimensions are clamped to their configured minimums.
func CalculateEditorSize(terminalWidth, terminalHeight int, cfg EditorConfig) (width, height int) {
	width = terminalWidth - cfg.WidthReduction
	if width < cfg.MinWidth {
		width = cfg.MinWidth
	}

	height = terminalHeight - cfg.HeightReduction
	if height < cfg.MinHeight {
		height = cfg.MinHeight
	}

	return width, height
}
