package layout

// CalculateModalWidth returns widthPercent of the terminal width, kept
// within cfg's bounds and at least 2 cells inside the terminal on each side.
func CalculateModalWidth(terminalWidth, widthPercent int, cfg ModalConfig) int {
	width := min(max(terminalWidth*widthPercent/100, cfg.MinWidth), cfg.MaxWidth)
	return max(min(width, terminalWidth-4), 1)
}

// CalculateVisibleListItems returns the window items[start:end] of at most
// maxVisible entries that keeps selectedIdx on screen, scrolling only once
// the selection passes the bottom.
func CalculateVisibleListItems(maxVisible, selectedIdx, totalItems int) (start, end int) {
	if totalItems <= maxVisible {
		return 0, totalItems
	}
	start = max(selectedIdx-maxVisible+1, 0)
	return start, min(start+maxVisible, totalItems)
}
