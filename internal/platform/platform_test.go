package platform

import (
	"bytes"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := NewLogger(&buffer, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "channel", "focus-loop")
	assert.NotContains(t, buffer.String(), "hidden")
	assert.Contains(t, buffer.String(), "channel=focus-loop")

	_, err = NewLogger(&buffer, "loud")
	require.Error(t, err)
}

func TestSingleInstance(t *testing.T) {
	guard, err := AcquireSingleInstance("pomodoro-test-instance")
	require.NoError(t, err)
	defer guard.Release()
	assert.NotEmpty(t, guard.Address())

	_, err = AcquireSingleInstance("pomodoro-test-instance")
	require.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, guard.Release())
	again, err := AcquireSingleInstance("pomodoro-test-instance")
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestActivateRunning(t *testing.T) {
	guard, err := AcquireSingleInstance("pomodoro-test-activate")
	require.NoError(t, err)
	defer guard.Release()

	var activations atomic.Int32
	guard.OnActivate(func() { activations.Add(1) })

	require.NoError(t, ActivateRunning("pomodoro-test-activate"))
	require.NoError(t, ActivateRunning("pomodoro-test-activate"))
	assert.Eventually(t, func() bool {
		return activations.Load() == 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, guard.Release())
	require.Error(t, ActivateRunning("pomodoro-test-activate"))
}

func TestPortFromName(t *testing.T) {
	port := portFromName("Pomodoro")
	assert.Equal(t, port, portFromName("Pomodoro"))
	assert.GreaterOrEqual(t, port, 20000)
	assert.LessOrEqual(t, port, 39999)
}
