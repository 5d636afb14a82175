package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"pomodoro/internal/core/model"
)

// UnlockReport describes the outcome of an unlock attempt. Failures are
// informational; the coordinator is unlocked either way.
type UnlockReport struct {
	AlreadyUnlocked bool
	Failures        map[ChannelID]error
}

// Coordinator owns the four sound channels and turns cycle intents into
// playback. It never reports playback failures to callers.
type Coordinator struct {
	mu          sync.Mutex
	config      model.AudioConfig
	streams     map[ChannelID]Stream
	current     MusicType
	paused      bool
	muted       bool
	unlocked    bool
	closed      bool
	unlockGroup singleflight.Group
	logger      *slog.Logger
}

// NewCoordinator opens every channel on the backend. Channels that fail to
// open stay unloaded; operations on them are no-ops.
func NewCoordinator(backend Backend, config model.AudioConfig, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	coordinator := &Coordinator{
		config:   config,
		streams:  make(map[ChannelID]Stream, len(Channels)),
		unlocked: true,
		logger:   logger,
	}
	if gated, ok := backend.(GestureGated); ok && gated.RequiresGesture() {
		coordinator.unlocked = false
	}

	for _, channel := range Channels {
		stream, err := backend.Open(channel, channel.Looping())
		if err != nil {
			logger.Warn("audio channel unavailable", "channel", channel, "error", err)
			continue
		}
		if channel.Looping() {
			stream.SetVolume(config.MusicVolume)
		} else {
			stream.SetVolume(config.CueVolume)
		}
		coordinator.streams[channel] = stream
	}
	logger.Debug("audio coordinator initialized", "channels", len(coordinator.streams), "unlocked", coordinator.unlocked)
	return coordinator
}

// PlayFocusMusic rewinds and starts the focus loop, stopping break music.
func (coordinator *Coordinator) PlayFocusMusic() {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	coordinator.playMusicLocked(MusicFocus)
}

// PlayBreakMusic rewinds and starts the break loop, stopping focus music.
func (coordinator *Coordinator) PlayBreakMusic() {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	coordinator.playMusicLocked(MusicBreak)
}

// PauseMusic pauses both loops and keeps their positions.
func (coordinator *Coordinator) PauseMusic() {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	if coordinator.closed {
		return
	}
	for _, channel := range []ChannelID{ChannelFocusLoop, ChannelBreakLoop} {
		if stream := coordinator.streams[channel]; stream != nil {
			stream.Pause()
		}
	}
	coordinator.paused = true
	coordinator.logger.Debug("music paused", "music", coordinator.current)
}

// ResumeMusic continues the current music from its preserved position.
func (coordinator *Coordinator) ResumeMusic() {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	if coordinator.closed || coordinator.current == MusicNone {
		return
	}
	coordinator.paused = false
	stream := coordinator.streams[musicChannel(coordinator.current)]
	if stream == nil {
		coordinator.logger.Warn("music resume skipped", "music", coordinator.current, "error", ErrChannelUnavailable)
		return
	}
	stream.SetVolume(coordinator.musicVolumeLocked())
	coordinator.startLocked(context.Background(), musicChannel(coordinator.current), stream)
}

// StopMusic pauses and rewinds both loops and clears the music selection.
func (coordinator *Coordinator) StopMusic() {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	if coordinator.closed {
		return
	}
	for _, channel := range []ChannelID{ChannelFocusLoop, ChannelBreakLoop} {
		coordinator.rewindLocked(channel)
	}
	coordinator.current = MusicNone
	coordinator.paused = false
}

// PlayStartCue plays the focus start chime once.
func (coordinator *Coordinator) PlayStartCue() {
	coordinator.playCue(ChannelStartCue)
}

// PlayBreakCue plays the break chime once.
func (coordinator *Coordinator) PlayBreakCue() {
	coordinator.playCue(ChannelBreakCue)
}

// SetMuted changes loop volume only. A toggle also retries music that should
// be playing but never started.
func (coordinator *Coordinator) SetMuted(muted bool) {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	if coordinator.closed {
		return
	}
	coordinator.muted = muted
	volume := coordinator.musicVolumeLocked()
	for _, channel := range []ChannelID{ChannelFocusLoop, ChannelBreakLoop} {
		if stream := coordinator.streams[channel]; stream != nil {
			stream.SetVolume(volume)
		}
	}
	coordinator.logger.Debug("music volume updated", "muted", muted, "volume", volume)
	coordinator.retryLocked("mute toggle")
}

// SetVolumes replaces the nominal music and cue volumes. Muted loops stay
// silent until unmuted.
func (coordinator *Coordinator) SetVolumes(config model.AudioConfig) {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	if coordinator.closed {
		return
	}
	coordinator.config = config
	for channel, stream := range coordinator.streams {
		if channel.Looping() {
			stream.SetVolume(coordinator.musicVolumeLocked())
		} else {
			stream.SetVolume(config.CueVolume)
		}
	}
	coordinator.logger.Debug("volumes updated", "music", config.MusicVolume, "cue", config.CueVolume)
}

// Unlock performs the one-time gesture unlock. It must be called with a
// context from WithUserGesture; concurrent calls share one attempt.
func (coordinator *Coordinator) Unlock(ctx context.Context) UnlockReport {
	if coordinator.Unlocked() {
		return UnlockReport{AlreadyUnlocked: true}
	}

	result, _, _ := coordinator.unlockGroup.Do("unlock", func() (any, error) {
		return coordinator.runUnlock(ctx), nil
	})
	return result.(UnlockReport)
}

// Unlocked reports whether the unlock ritual has completed.
func (coordinator *Coordinator) Unlocked() bool {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	return coordinator.unlocked
}

// CurrentMusic returns the logical music selection.
func (coordinator *Coordinator) CurrentMusic() MusicType {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	return coordinator.current
}

// Muted reports the mute flag.
func (coordinator *Coordinator) Muted() bool {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	return coordinator.muted
}

// State returns a channel's observable state.
func (coordinator *Coordinator) State(channel ChannelID) ChannelState {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	stream := coordinator.streams[channel]
	if stream == nil {
		return ChannelState{}
	}
	return ChannelState{
		Loaded:   true,
		Playing:  stream.Playing(),
		Position: stream.Position(),
		Volume:   stream.Volume(),
	}
}

// Close tears down every stream.
func (coordinator *Coordinator) Close() error {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	if coordinator.closed {
		return nil
	}
	coordinator.closed = true

	var errs []error
	for _, channel := range Channels {
		stream := coordinator.streams[channel]
		if stream == nil {
			continue
		}
		stream.Pause()
		if err := stream.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", channel, err))
		}
	}
	coordinator.streams = map[ChannelID]Stream{}
	coordinator.current = MusicNone
	return errors.Join(errs...)
}

func (coordinator *Coordinator) runUnlock(ctx context.Context) UnlockReport {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	if coordinator.unlocked {
		return UnlockReport{AlreadyUnlocked: true}
	}

	report := UnlockReport{Failures: map[ChannelID]error{}}
	for _, channel := range Channels {
		stream := coordinator.streams[channel]
		if stream == nil {
			report.Failures[channel] = ErrChannelUnavailable
			continue
		}
		if stream.Playing() {
			continue
		}
		if err := ctx.Err(); err != nil {
			report.Failures[channel] = err
			continue
		}
		if err := prime(ctx, stream); err != nil {
			report.Failures[channel] = err
			coordinator.logger.Warn("audio unlock attempt failed", "channel", channel, "error", err)
		}
	}

	coordinator.unlocked = true
	coordinator.logger.Info("audio unlocked", "failures", len(report.Failures))
	if !coordinator.closed {
		coordinator.retryLocked("unlock")
	}
	return report
}

func (coordinator *Coordinator) playMusicLocked(music MusicType) {
	if coordinator.closed {
		return
	}
	target := musicChannel(music)
	coordinator.rewindLocked(otherLoop(target))

	coordinator.current = music
	coordinator.paused = false

	stream := coordinator.streams[target]
	if stream == nil {
		coordinator.logger.Warn("music start skipped", "channel", target, "error", ErrChannelUnavailable)
		return
	}
	if err := stream.Seek(0); err != nil {
		coordinator.logger.Debug("rewind failed", "channel", target, "error", err)
	}
	stream.SetVolume(coordinator.musicVolumeLocked())
	coordinator.startLocked(context.Background(), target, stream)
}

func (coordinator *Coordinator) playCue(channel ChannelID) {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	if coordinator.closed {
		return
	}
	stream := coordinator.streams[channel]
	if stream == nil {
		coordinator.logger.Warn("cue skipped", "channel", channel, "error", ErrChannelUnavailable)
		return
	}
	if err := stream.Seek(0); err != nil {
		coordinator.logger.Debug("rewind failed", "channel", channel, "error", err)
	}
	stream.SetVolume(coordinator.config.CueVolume)
	coordinator.startLocked(context.Background(), channel, stream)
}

// retryLocked restarts music that is logically current but not audible
// because an earlier start was refused.
func (coordinator *Coordinator) retryLocked(reason string) {
	if coordinator.current == MusicNone || coordinator.paused {
		return
	}
	channel := musicChannel(coordinator.current)
	stream := coordinator.streams[channel]
	if stream == nil || stream.Playing() {
		return
	}
	coordinator.logger.Debug("retrying music playback", "channel", channel, "reason", reason)
	stream.SetVolume(coordinator.musicVolumeLocked())
	coordinator.startLocked(context.Background(), channel, stream)
}

func (coordinator *Coordinator) startLocked(ctx context.Context, channel ChannelID, stream Stream) {
	if err := stream.Play(ctx); err != nil {
		coordinator.logger.Warn("playback failed", "channel", channel, "error", err)
		return
	}
	coordinator.logger.Debug("playback started", "channel", channel, "position", stream.Position())
}

func (coordinator *Coordinator) rewindLocked(channel ChannelID) {
	stream := coordinator.streams[channel]
	if stream == nil {
		return
	}
	stream.Pause()
	if err := stream.Seek(0); err != nil {
		coordinator.logger.Debug("rewind failed", "channel", channel, "error", err)
	}
}

func (coordinator *Coordinator) musicVolumeLocked() float64 {
	if coordinator.muted {
		return 0
	}
	return coordinator.config.MusicVolume
}

// prime runs a silent zero-length play on a stream, restoring its volume and
// position afterwards.
func prime(ctx context.Context, stream Stream) error {
	volume := stream.Volume()
	position := stream.Position()
	stream.SetVolume(0)
	defer stream.SetVolume(volume)

	playErr := stream.Play(ctx)
	stream.Pause()
	if err := stream.Seek(position); err != nil && playErr == nil {
		return fmt.Errorf("restore position %s: %w", position.Truncate(time.Millisecond), err)
	}
	return playErr
}

func musicChannel(music MusicType) ChannelID {
	if music == MusicBreak {
		return ChannelBreakLoop
	}
	return ChannelFocusLoop
}

func otherLoop(channel ChannelID) ChannelID {
	if channel == ChannelFocusLoop {
		return ChannelBreakLoop
	}
	return ChannelFocusLoop
}
