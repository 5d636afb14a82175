package cycle

import "time"

// EventType defines the type of controller event.
type EventType string

const (
	EventStateChange   EventType = "state_change"
	EventProgress      EventType = "progress"
	EventPhaseComplete EventType = "phase_complete"
	EventMuteChange    EventType = "mute_change"
)

// Event represents a controller update for observers.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	// Completed is the phase that just ended, set on EventPhaseComplete.
	Completed CycleState
	RunID     string
	At        time.Time
}
