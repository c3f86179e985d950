package layout

import "testing"

func TestStripANSI(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"\x1b[1mDocs/\x1b[0m", "Docs/"},
		{"1. move \x1b[38;5;66m\"Go\" (7)\x1b[0m", "1. move \"Go\" (7)"},
		{"\x1b[1m\x1b[0m", ""},
	}

	for _, tt := range tests {
		if got := StripANSI(tt.input); got != tt.want {
			t.Errorf("StripANSI(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncateText(t *testing.T) {
	cfg := DefaultConfig().Text

	tests := []struct {
		name      string
		text      string
		maxWidth  int
		want      string
		truncated bool
	}{
		{"fits", "Docs/", 10, "Docs/", false},
		{"exact width", "Docs/", 5, "Docs/", false},
		{"cut", "move Go to Docs", 10, "move Go...", true},
		{"only ellipsis fits", "Reading", 3, "...", true},
		{"partial ellipsis", "Reading", 2, "..", true},
		{"zero width", "Reading", 0, "", true},
		{"empty", "", 0, "", false},
		{"wide runes", "ブックマーク", 7, "ブッ...", true},
		{"wide runes fit", "ブックマーク", 12, "ブックマーク", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := TruncateText(tt.text, tt.maxWidth, cfg)
			if got != tt.want || truncated != tt.truncated {
				t.Errorf("TruncateText(%q, %d) = (%q, %v), want (%q, %v)",
					tt.text, tt.maxWidth, got, truncated, tt.want, tt.truncated)
			}
		})
	}
}

func TestTruncateText_KeepsStyling(t *testing.T) {
	got, truncated := TruncateText("\x1b[1mmove Go to Docs\x1b[0m", 10, DefaultConfig().Text)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if StripANSI(got) != "move Go..." {
		t.Errorf("expected visible text %q, got %q", "move Go...", StripANSI(got))
	}
}
