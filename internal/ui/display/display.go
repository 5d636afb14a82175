package display

import (
	"fmt"
	"time"

	"pomodoro/internal/core/cycle"
	"pomodoro/internal/core/model"
)

// Clock formats a remaining duration as MM:SS.
func Clock(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	seconds := int(value.Seconds())
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// PhaseTitle names the phase for headings.
func PhaseTitle(snapshot cycle.Snapshot) string {
	switch snapshot.CycleState {
	case cycle.CycleFocus:
		return "Focus"
	case cycle.CycleBreak:
		return "Break"
	default:
		return "Ready"
	}
}

// ToggleLabel is the caption of the start/pause/resume control.
func ToggleLabel(snapshot cycle.Snapshot) string {
	switch {
	case snapshot.CycleState == cycle.CycleIdle:
		return "Start"
	case snapshot.RunStatus == cycle.StatusRunning:
		return "Pause"
	default:
		return "Resume"
	}
}

// MuteLabel is the caption of the mute control.
func MuteLabel(snapshot cycle.Snapshot) string {
	if snapshot.MusicMuted {
		return "Unmute music"
	}
	return "Mute music"
}

// TemplateName returns the active template name or a placeholder.
func TemplateName(snapshot cycle.Snapshot) string {
	if snapshot.ActiveTemplate == nil {
		return "No template"
	}
	return snapshot.ActiveTemplate.Name
}

// Status is a one-line summary used by the tray and window titles.
func Status(snapshot cycle.Snapshot) string {
	status := fmt.Sprintf("%s %s", PhaseTitle(snapshot), Clock(snapshot.Remaining()))
	if snapshot.RunStatus == cycle.StatusPaused {
		status += " (paused)"
	}
	return status
}

// Sessions describes the completed focus count.
func Sessions(snapshot cycle.Snapshot) string {
	if snapshot.SessionsCompleted == 1 {
		return "1 session completed"
	}
	return fmt.Sprintf("%d sessions completed", snapshot.SessionsCompleted)
}

// Playing is the music line for the active phase.
type Playing struct {
	// Indicator is "Now Playing" while music is audible, otherwise "Muted"
	// or "Paused".
	Indicator string
	Track     model.Track
}

// NowPlaying reports the music line for snapshot. It is hidden while idle.
func NowPlaying(snapshot cycle.Snapshot, assets model.AssetSet) (Playing, bool) {
	var playing Playing
	switch snapshot.CycleState {
	case cycle.CycleFocus:
		playing.Track = assets.FocusTrack
	case cycle.CycleBreak:
		playing.Track = assets.BreakTrack
	default:
		return Playing{}, false
	}
	if snapshot.RunStatus == cycle.StatusIdle {
		return Playing{}, false
	}

	switch {
	case snapshot.MusicMuted:
		playing.Indicator = "Muted"
	case snapshot.RunStatus == cycle.StatusPaused:
		playing.Indicator = "Paused"
	default:
		playing.Indicator = "Now Playing"
	}
	return playing, true
}

// Line renders the indicator and credits on one line.
func (playing Playing) Line() string {
	line := playing.Indicator
	if playing.Track.Title != "" {
		line += ": " + playing.Track.Title
	}
	if playing.Track.Artist != "" {
		line += " / " + playing.Track.Artist
	}
	return line
}
