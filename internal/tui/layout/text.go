package layout

import "github.com/charmbracelet/x/ansi"

// StripANSI removes terminal escape sequences from s.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// TruncateText shortens text to at most maxWidth terminal cells, ending it
// with cfg.Ellipsis. Wide characters count as two cells and escape
// sequences are kept intact. Reports whether anything was cut.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if ansi.StringWidth(text) <= maxWidth {
		return text, false
	}
	if maxWidth <= 0 {
		return "", true
	}
	if maxWidth <= ansi.StringWidth(cfg.Ellipsis) {
		return ansi.Truncate(cfg.Ellipsis, maxWidth, ""), true
	}
	return ansi.Truncate(text, maxWidth, cfg.Ellipsis), true
}
