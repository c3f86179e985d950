package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the editor.
type KeyMap struct {
	Preview key.Binding
	Apply   key.Binding
	Back    key.Binding
	Up      key.Binding
	Down    key.Binding
	Close   key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings. Plain letters are only
// bound outside the text area.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Preview: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "preview plan"),
		),
		Apply: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y/enter", "apply"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "scroll down"),
		),
		Close: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}
