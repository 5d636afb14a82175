package audio

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPlaybackDenied indicates the platform refused to start playback,
	// typically because no user gesture has unlocked audio yet.
	ErrPlaybackDenied = errors.New("playback denied")
	// ErrChannelUnavailable indicates a channel whose stream never loaded.
	ErrChannelUnavailable = errors.New("channel unavailable")
)

// ChannelID names one of the four logical sound channels.
type ChannelID string

const (
	ChannelFocusLoop ChannelID = "focus-loop"
	ChannelBreakLoop ChannelID = "break-loop"
	ChannelStartCue  ChannelID = "start-cue"
	ChannelBreakCue  ChannelID = "break-cue"
)

// Channels lists every channel in unlock order.
var Channels = []ChannelID{ChannelFocusLoop, ChannelBreakLoop, ChannelStartCue, ChannelBreakCue}

// Looping reports whether the channel is background music.
func (channel ChannelID) Looping() bool {
	return channel == ChannelFocusLoop || channel == ChannelBreakLoop
}

// MusicType is the logical background music selection.
type MusicType string

const (
	MusicNone  MusicType = ""
	MusicFocus MusicType = "focus"
	MusicBreak MusicType = "break"
)

// Stream is a playable audio resource supporting play, pause, seek, loop and volume.
type Stream interface {
	Play(ctx context.Context) error
	Pause()
	Seek(position time.Duration) error
	Position() time.Duration
	SetVolume(volume float64)
	Volume() float64
	Playing() bool
	Close() error
}

// Backend opens streams for logical channels.
type Backend interface {
	Open(channel ChannelID, loop bool) (Stream, error)
}

// GestureGated is implemented by backends that refuse playback until a
// user gesture has unlocked them.
type GestureGated interface {
	RequiresGesture() bool
}

// ChannelState is the observable state of a channel.
type ChannelState struct {
	Loaded   bool
	Playing  bool
	Position time.Duration
	Volume   float64
}

type userGestureKey struct{}

// WithUserGesture marks ctx as originating from a genuine user interaction.
func WithUserGesture(ctx context.Context) context.Context {
	return context.WithValue(ctx, userGestureKey{}, true)
}

// IsUserGesture reports whether ctx was marked by WithUserGesture.
func IsUserGesture(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	marked, _ := ctx.Value(userGestureKey{}).(bool)
	return marked
}
