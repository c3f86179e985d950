// Package tui is the interactive restructure dialog: edit the target
// layout, preview the planned operations, confirm, and see the result.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/restructure"
	"github.com/nikbrunner/bmr/internal/tui/layout"
)

// SimulateFunc plans a restructure without applying it.
type SimulateFunc func(ctx context.Context, text string) (*restructure.Plan, error)

// ApplyFunc applies a restructure and reports the outcome.
type ApplyFunc func(ctx context.Context, text string) model.Result

// App is the bubbletea model for the restructure dialog.
type App struct {
	editor       textarea.Model
	simulate     SimulateFunc
	apply        ApplyFunc
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig

	mode      Mode
	plan      *restructure.Plan
	planLines []string
	cursor    int // selected preview line
	result    *model.Result
	err       error

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Text         string // initial outline, usually the current layout
	Simulate     SimulateFunc
	Apply        ApplyFunc
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutConfig := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutConfig = *params.LayoutConfig
	}

	editor := textarea.New()
	editor.Placeholder = "Folder/\n  Title https://example.com"
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.SetValue(params.Text)
	editor.Focus()

	app := App{
		editor:       editor,
		simulate:     params.Simulate,
		apply:        params.Apply,
		keys:         keys,
		styles:       styles,
		layoutConfig: layoutConfig,
		mode:         ModeEdit,
	}
	return app.WithDimensions(80, 24)
}

// WithDimensions returns a copy of the app sized for a terminal.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	w, h := layout.CalculateEditorSize(width, height, a.layoutConfig.Editor)
	a.editor.SetWidth(w)
	a.editor.SetHeight(h)
	return a
}

// Mode returns the current screen.
func (a App) Mode() Mode {
	return a.mode
}

// Text returns the outline being edited.
func (a App) Text() string {
	return a.editor.Value()
}

// Plan returns the last simulated plan, if any.
func (a App) Plan() *restructure.Plan {
	return a.plan
}

// Result returns the outcome of the last applied restructure, if any.
func (a App) Result() *model.Result {
	return a.result
}

// Err returns the last simulation error.
func (a App) Err() error {
	return a.err
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return a.WithDimensions(msg.Width, msg.Height), nil

	case planMsg:
		if msg.err != nil {
			a.err = msg.err
			a.mode = ModeEdit
			return a, nil
		}
		a.err = nil
		a.plan = msg.plan
		a.planLines = planLines(msg.plan)
		a.cursor = 0
		a.mode = ModePreview
		return a, nil

	case resultMsg:
		a.result = &msg.result
		a.mode = ModeResult
		return a, nil

	case tea.KeyMsg:
		// A run in flight cannot be interrupted.
		if a.mode == ModeApplying {
			return a, nil
		}
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}

		switch a.mode {
		case ModeEdit:
			return a.updateEdit(msg)
		case ModePreview:
			return a.updatePreview(msg)
		case ModeResult:
			return a.updateResult(msg)
		}
		return a, nil
	}

	if a.mode == ModeEdit {
		var cmd tea.Cmd
		a.editor, cmd = a.editor.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Preview):
		return a, a.simulateCmd()
	case key.Matches(msg, a.keys.Back):
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(msg)
	return a, cmd
}

func (a App) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Apply):
		a.mode = ModeApplying
		return a, a.applyCmd()
	case key.Matches(msg, a.keys.Back):
		a.mode = ModeEdit
	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.planLines)-1 {
			a.cursor++
		}
	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, a.keys.Close):
		return a, tea.Quit
	}
	return a, nil
}

func (a App) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.result = nil
		a.plan = nil
		a.mode = ModeEdit
	case key.Matches(msg, a.keys.Close), key.Matches(msg, a.keys.Apply):
		return a, tea.Quit
	}
	return a, nil
}

func (a App) simulateCmd() tea.Cmd {
	text := a.editor.Value()
	simulate := a.simulate
	return func() tea.Msg {
		plan, err := simulate(context.Background(), text)
		return planMsg{plan: plan, err: err}
	}
}

func (a App) applyCmd() tea.Cmd {
	text := a.editor.Value()
	apply := a.apply
	return func() tea.Msg {
		return resultMsg{result: apply(context.Background(), text)}
	}
}

// planLines flattens a plan into display lines: operations, then warnings.
func planLines(plan *restructure.Plan) []string {
	var lines []string
	if desc := strings.TrimRight(plan.Describe(), "\n"); desc != "" {
		lines = strings.Split(desc, "\n")
	}
	for _, w := range plan.Warnings {
		if w.Title == "" {
			lines = append(lines, "! "+w.Message)
			continue
		}
		lines = append(lines, fmt.Sprintf("! %s: %s", w.Title, w.Message))
	}
	return lines
}
