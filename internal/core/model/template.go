package model

import (
	"errors"
	"fmt"
)

// ErrInvalidTemplate indicates a template with non-positive durations.
var ErrInvalidTemplate = errors.New("invalid template")

const (
	CustomTemplateID = "custom"

	MinFocusMinutes = 1
	MaxFocusMinutes = 120
	MinBreakMinutes = 1
	MaxBreakMinutes = 60
)

// Template is a named pair of focus and break durations.
type Template struct {
	ID           string
	Name         string
	FocusMinutes int
	BreakMinutes int
	Description  string
}

// Validate reports whether the template can drive a cycle.
func (template Template) Validate() error {
	if template.FocusMinutes <= 0 {
		return fmt.Errorf("%w: focus minutes must be positive, got %d", ErrInvalidTemplate, template.FocusMinutes)
	}
	if template.BreakMinutes <= 0 {
		return fmt.Errorf("%w: break minutes must be positive, got %d", ErrInvalidTemplate, template.BreakMinutes)
	}
	return nil
}

// FocusSeconds returns the focus phase length in seconds.
func (template Template) FocusSeconds() int {
	return template.FocusMinutes * 60
}

// BreakSeconds returns the break phase length in seconds.
func (template Template) BreakSeconds() int {
	return template.BreakMinutes * 60
}

// IsCustom reports whether the template was synthesized from user input.
func (template Template) IsCustom() bool {
	return template.ID == CustomTemplateID
}

// CustomTemplate builds an ad hoc template, clamping both durations.
func CustomTemplate(focusMinutes, breakMinutes int) Template {
	return Template{
		ID:           CustomTemplateID,
		Name:         "Custom",
		FocusMinutes: clamp(focusMinutes, MinFocusMinutes, MaxFocusMinutes),
		BreakMinutes: clamp(breakMinutes, MinBreakMinutes, MaxBreakMinutes),
		Description:  "Your custom settings",
	}
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
