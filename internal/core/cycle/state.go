package cycle

import (
	"time"

	"pomodoro/internal/core/model"
)

// CycleState is the phase of the pomodoro cycle.
type CycleState string

const (
	CycleIdle  CycleState = "idle"
	CycleFocus CycleState = "focus"
	CycleBreak CycleState = "break"
)

// RunStatus is whether the countdown is moving.
type RunStatus string

const (
	StatusIdle    RunStatus = "idle"
	StatusRunning RunStatus = "running"
	StatusPaused  RunStatus = "paused"
)

// Snapshot is the externally observable controller state.
type Snapshot struct {
	CycleState        CycleState
	RunStatus         RunStatus
	SecondsRemaining  int
	TotalSeconds      int
	ActiveTemplate    *model.Template
	SessionsCompleted int
	MusicMuted        bool
}

// Remaining returns SecondsRemaining as a duration.
func (snapshot Snapshot) Remaining() time.Duration {
	return time.Duration(snapshot.SecondsRemaining) * time.Second
}

// Progress returns the elapsed fraction of the current phase in [0,1].
func (snapshot Snapshot) Progress() float64 {
	if snapshot.TotalSeconds <= 0 {
		return 0
	}
	progress := float64(snapshot.TotalSeconds-snapshot.SecondsRemaining) / float64(snapshot.TotalSeconds)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}
