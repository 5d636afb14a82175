package sound

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"pomodoro/internal/core/audio"
)

// ErrStreamClosed indicates an operation on a closed stream.
var ErrStreamClosed = errors.New("stream closed")

// MemoryOptions configures the in-memory backend.
type MemoryOptions struct {
	Clock        clockwork.Clock
	LoopLength   time.Duration
	CueLength    time.Duration
	GestureGated bool
	Unavailable  []audio.ChannelID
}

// Memory is a backend that produces no sound. Streams keep time with a
// clock, so positions, pauses and one-shot endings behave like real
// playback. With GestureGated set it refuses playback until a stream has
// been played from a user gesture.
type Memory struct {
	mu      sync.Mutex
	options MemoryOptions
	streams map[audio.ChannelID]*MemoryStream
}

// NewMemory creates an in-memory backend.
func NewMemory(options MemoryOptions) *Memory {
	if options.Clock == nil {
		options.Clock = clockwork.NewRealClock()
	}
	if options.LoopLength <= 0 {
		options.LoopLength = 3 * time.Minute
	}
	if options.CueLength <= 0 {
		options.CueLength = 2 * time.Second
	}
	return &Memory{
		options: options,
		streams: make(map[audio.ChannelID]*MemoryStream),
	}
}

// RequiresGesture implements audio.GestureGated.
func (memory *Memory) RequiresGesture() bool {
	return memory.options.GestureGated
}

// Open implements audio.Backend.
func (memory *Memory) Open(channel audio.ChannelID, loop bool) (audio.Stream, error) {
	for _, unavailable := range memory.options.Unavailable {
		if unavailable == channel {
			return nil, fmt.Errorf("open %s: %w", channel, audio.ErrChannelUnavailable)
		}
	}

	length := memory.options.CueLength
	if loop {
		length = memory.options.LoopLength
	}
	stream := &MemoryStream{
		clock:  memory.options.Clock,
		loop:   loop,
		length: length,
		gated:  memory.options.GestureGated,
		volume: 1,
	}

	memory.mu.Lock()
	memory.streams[channel] = stream
	memory.mu.Unlock()
	return stream, nil
}

// Stream returns the stream opened for channel, if any.
func (memory *Memory) Stream(channel audio.ChannelID) *MemoryStream {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	return memory.streams[channel]
}

// MemoryStream is a silent stream with clock-driven position.
type MemoryStream struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	loop      bool
	length    time.Duration
	gated     bool
	unlocked  bool
	playing   bool
	startedAt time.Time
	offset    time.Duration
	volume    float64
	plays     int
	denials   int
	closed    bool
}

// Play starts or continues playback from the current position.
func (stream *MemoryStream) Play(ctx context.Context) error {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	if stream.closed {
		return ErrStreamClosed
	}
	if stream.gated && !stream.unlocked {
		if !audio.IsUserGesture(ctx) {
			stream.denials++
			return audio.ErrPlaybackDenied
		}
		stream.unlocked = true
	}
	if stream.playingLocked() {
		return nil
	}
	position := stream.positionLocked()
	if !stream.loop && position >= stream.length {
		position = 0
	}
	stream.offset = position
	stream.playing = true
	stream.startedAt = stream.clock.Now()
	stream.plays++
	return nil
}

// Pause stops playback and keeps the position.
func (stream *MemoryStream) Pause() {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	if !stream.playing {
		return
	}
	stream.offset = stream.positionLocked()
	stream.playing = false
}

// Seek moves the play head, clamped to the stream length.
func (stream *MemoryStream) Seek(position time.Duration) error {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	if stream.closed {
		return ErrStreamClosed
	}
	if position < 0 {
		position = 0
	}
	if position > stream.length {
		position = stream.length
	}
	stream.offset = position
	stream.startedAt = stream.clock.Now()
	return nil
}

// Position returns the current play head.
func (stream *MemoryStream) Position() time.Duration {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	return stream.positionLocked()
}

// SetVolume sets the linear volume.
func (stream *MemoryStream) SetVolume(volume float64) {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	stream.volume = volume
}

// Volume returns the linear volume.
func (stream *MemoryStream) Volume() float64 {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	return stream.volume
}

// Playing reports whether the stream is audible, ignoring volume.
func (stream *MemoryStream) Playing() bool {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	return stream.playingLocked()
}

// Plays returns how many times playback actually started.
func (stream *MemoryStream) Plays() int {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	return stream.plays
}

// Denials returns how many play attempts were refused.
func (stream *MemoryStream) Denials() int {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	return stream.denials
}

// Close releases the stream.
func (stream *MemoryStream) Close() error {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	stream.closed = true
	stream.playing = false
	return nil
}

func (stream *MemoryStream) playingLocked() bool {
	if !stream.playing {
		return false
	}
	return stream.loop || stream.positionLocked() < stream.length
}

func (stream *MemoryStream) positionLocked() time.Duration {
	position := stream.offset
	if stream.playing {
		position += stream.clock.Since(stream.startedAt)
	}
	if stream.loop {
		if stream.length > 0 {
			position %= stream.length
		}
		return position
	}
	if position > stream.length {
		return stream.length
	}
	return position
}
