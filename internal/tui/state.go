package tui

import (
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/restructure"
)

// Mode is the current screen of the editor.
type Mode int

const (
	ModeEdit Mode = iota
	ModePreview
	ModeApplying
	ModeResult
)

func (m Mode) String() string {
	switch m {
	case ModeEdit:
		return "edit"
	case ModePreview:
		return "preview"
	case ModeApplying:
		return "applying"
	case ModeResult:
		return "result"
	default:
		return "unknown"
	}
}

// planMsg carries the outcome of a simulation.
type planMsg struct {
	plan *restructure.Plan
	err  error
}

// resultMsg carries the outcome of an applied restructure.
type resultMsg struct {
	result model.Result
}
