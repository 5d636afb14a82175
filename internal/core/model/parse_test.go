package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCustomDurations(t *testing.T) {
	focusMinutes, breakMinutes, err := ParseCustomDurations(" 10 ", "2")
	require.NoError(t, err)
	assert.Equal(t, 10, focusMinutes)
	assert.Equal(t, 2, breakMinutes)

	_, _, err = ParseCustomDurations("abc", "2")
	assert.ErrorIs(t, err, ErrInvalidDuration)
	_, _, err = ParseCustomDurations("10", "0")
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestParseCustomPair(t *testing.T) {
	focusMinutes, breakMinutes, err := ParseCustomPair("25/5")
	require.NoError(t, err)
	assert.Equal(t, 25, focusMinutes)
	assert.Equal(t, 5, breakMinutes)

	_, _, err = ParseCustomPair("25")
	assert.ErrorIs(t, err, ErrInvalidDuration)
	_, _, err = ParseCustomPair("25/x")
	assert.ErrorIs(t, err, ErrInvalidDuration)
}
