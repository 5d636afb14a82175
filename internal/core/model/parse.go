package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidDuration indicates a duration field that is not a positive number.
var ErrInvalidDuration = errors.New("invalid duration")

// ParseCustomDurations reads focus and break minutes from text fields. Values
// outside the allowed range are clamped by CustomTemplate.
func ParseCustomDurations(focusText, breakText string) (int, int, error) {
	focusMinutes, ok := parsePositiveInt(focusText)
	if !ok {
		return 0, 0, fmt.Errorf("%w: focus %q", ErrInvalidDuration, focusText)
	}
	breakMinutes, ok := parsePositiveInt(breakText)
	if !ok {
		return 0, 0, fmt.Errorf("%w: break %q", ErrInvalidDuration, breakText)
	}
	return focusMinutes, breakMinutes, nil
}

// ParseCustomPair reads a "focus/break" pair such as "25/5".
func ParseCustomPair(value string) (int, int, error) {
	focusText, breakText, found := strings.Cut(value, "/")
	if !found {
		return 0, 0, fmt.Errorf("%w: expected focus/break, got %q", ErrInvalidDuration, value)
	}
	return ParseCustomDurations(focusText, breakText)
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
