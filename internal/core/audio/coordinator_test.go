package audio_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodoro/internal/core/audio"
	"pomodoro/internal/core/model"
	"pomodoro/internal/platform/sound"
)

type fixture struct {
	coordinator *audio.Coordinator
	backend     *sound.Memory
	clock       *clockwork.FakeClock
}

func newFixture(t *testing.T, options sound.MemoryOptions) fixture {
	t.Helper()
	clock := clockwork.NewFakeClock()
	options.Clock = clock
	if options.LoopLength == 0 {
		options.LoopLength = 10 * time.Minute
	}
	backend := sound.NewMemory(options)
	coordinator := audio.NewCoordinator(backend, model.DefaultAudioConfig(), slog.Default())
	t.Cleanup(func() {
		_ = coordinator.Close()
	})
	return fixture{coordinator: coordinator, backend: backend, clock: clock}
}

func (f fixture) stream(channel audio.ChannelID) *sound.MemoryStream {
	return f.backend.Stream(channel)
}

func TestCoordinator_InitialVolumes(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{})

	assert.InDelta(t, 0.3, f.coordinator.State(audio.ChannelFocusLoop).Volume, 1e-9)
	assert.InDelta(t, 0.3, f.coordinator.State(audio.ChannelBreakLoop).Volume, 1e-9)
	assert.InDelta(t, 0.5, f.coordinator.State(audio.ChannelStartCue).Volume, 1e-9)
	assert.InDelta(t, 0.5, f.coordinator.State(audio.ChannelBreakCue).Volume, 1e-9)
	for _, channel := range audio.Channels {
		assert.True(t, f.coordinator.State(channel).Loaded, channel)
	}
	assert.True(t, f.coordinator.Unlocked(), "ungated backends start unlocked")
}

func TestCoordinator_PlayFocusStopsBreak(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{})

	f.coordinator.PlayBreakMusic()
	f.clock.Advance(20 * time.Second)
	require.True(t, f.coordinator.State(audio.ChannelBreakLoop).Playing)

	f.coordinator.PlayFocusMusic()
	breakState := f.coordinator.State(audio.ChannelBreakLoop)
	assert.False(t, breakState.Playing)
	assert.Equal(t, time.Duration(0), breakState.Position, "the other loop is rewound")
	assert.True(t, f.coordinator.State(audio.ChannelFocusLoop).Playing)
	assert.Equal(t, audio.MusicFocus, f.coordinator.CurrentMusic())
}

func TestCoordinator_PlayMusicRewinds(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{})

	f.coordinator.PlayFocusMusic()
	f.clock.Advance(30 * time.Second)
	f.coordinator.PlayFocusMusic()

	assert.Equal(t, time.Duration(0), f.coordinator.State(audio.ChannelFocusLoop).Position)
	assert.True(t, f.coordinator.State(audio.ChannelFocusLoop).Playing)
}

func TestCoordinator_PauseResumeKeepsPosition(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{})

	f.coordinator.PlayFocusMusic()
	f.clock.Advance(42 * time.Second)
	f.coordinator.PauseMusic()
	f.clock.Advance(time.Minute)

	state := f.coordinator.State(audio.ChannelFocusLoop)
	assert.False(t, state.Playing)
	assert.Equal(t, 42*time.Second, state.Position)
	assert.Equal(t, audio.MusicFocus, f.coordinator.CurrentMusic(), "pause keeps the music type")

	f.coordinator.ResumeMusic()
	f.clock.Advance(3 * time.Second)
	state = f.coordinator.State(audio.ChannelFocusLoop)
	assert.True(t, state.Playing)
	assert.Equal(t, 45*time.Second, state.Position)
}

func TestCoordinator_ResumeWithoutMusicIsNoop(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{})

	f.coordinator.ResumeMusic()

	assert.False(t, f.coordinator.State(audio.ChannelFocusLoop).Playing)
	assert.False(t, f.coordinator.State(audio.ChannelBreakLoop).Playing)
	assert.Equal(t, 0, f.stream(audio.ChannelFocusLoop).Plays())
}

func TestCoordinator_StopClearsMusic(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{})

	f.coordinator.PlayBreakMusic()
	f.clock.Advance(15 * time.Second)
	f.coordinator.StopMusic()
	f.coordinator.StopMusic()

	state := f.coordinator.State(audio.ChannelBreakLoop)
	assert.False(t, state.Playing)
	assert.Equal(t, time.Duration(0), state.Position)
	assert.Equal(t, audio.MusicNone, f.coordinator.CurrentMusic())

	f.coordinator.ResumeMusic()
	assert.False(t, f.coordinator.State(audio.ChannelBreakLoop).Playing, "resume after stop does nothing")
}

func TestCoordinator_MuteIsVolumeOnly(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{})

	f.coordinator.PlayFocusMusic()
	f.coordinator.SetMuted(true)

	focus := f.coordinator.State(audio.ChannelFocusLoop)
	assert.True(t, focus.Playing, "mute never stops playback")
	assert.Equal(t, 0.0, focus.Volume)
	assert.Equal(t, 0.0, f.coordinator.State(audio.ChannelBreakLoop).Volume)
	assert.True(t, f.coordinator.Muted())

	f.coordinator.PlayBreakMusic()
	assert.Equal(t, 0.0, f.coordinator.State(audio.ChannelBreakLoop).Volume, "new music starts at the muted volume")

	f.coordinator.SetMuted(false)
	assert.InDelta(t, 0.3, f.coordinator.State(audio.ChannelBreakLoop).Volume, 1e-9)
	assert.True(t, f.coordinator.State(audio.ChannelBreakLoop).Playing)
}

func TestCoordinator_SetVolumes(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{})
	f.coordinator.PlayFocusMusic()

	f.coordinator.SetVolumes(model.AudioConfig{MusicVolume: 0.7, CueVolume: 0.9})
	focus := f.coordinator.State(audio.ChannelFocusLoop)
	assert.True(t, focus.Playing, "volume changes keep playback")
	assert.InDelta(t, 0.7, focus.Volume, 1e-9)
	assert.InDelta(t, 0.9, f.coordinator.State(audio.ChannelStartCue).Volume, 1e-9)

	f.coordinator.SetMuted(true)
	f.coordinator.SetVolumes(model.AudioConfig{MusicVolume: 0.4, CueVolume: 0.2})
	assert.Equal(t, 0.0, f.coordinator.State(audio.ChannelBreakLoop).Volume, "muted loops stay silent")
	f.coordinator.PlayBreakCue()
	assert.InDelta(t, 0.2, f.coordinator.State(audio.ChannelBreakCue).Volume, 1e-9)

	f.coordinator.SetMuted(false)
	assert.InDelta(t, 0.4, f.coordinator.State(audio.ChannelFocusLoop).Volume, 1e-9)
}

func TestCoordinator_CuesIgnoreMute(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{})

	f.coordinator.SetMuted(true)
	f.coordinator.PlayStartCue()
	f.coordinator.PlayBreakCue()

	for _, channel := range []audio.ChannelID{audio.ChannelStartCue, audio.ChannelBreakCue} {
		state := f.coordinator.State(channel)
		assert.True(t, state.Playing, channel)
		assert.InDelta(t, 0.5, state.Volume, 1e-9, channel)
	}
}

func TestCoordinator_CueReplaysFromStart(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{CueLength: 2 * time.Second})

	f.coordinator.PlayStartCue()
	f.clock.Advance(time.Second)
	f.coordinator.PlayStartCue()

	assert.Equal(t, time.Duration(0), f.coordinator.State(audio.ChannelStartCue).Position)
	assert.False(t, f.coordinator.State(audio.ChannelFocusLoop).Playing, "cues do not touch loops")
}

func TestCoordinator_DeniedPlaybackKeepsIntent(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{GestureGated: true})
	require.False(t, f.coordinator.Unlocked())

	f.coordinator.PlayFocusMusic()

	assert.Equal(t, audio.MusicFocus, f.coordinator.CurrentMusic())
	assert.False(t, f.coordinator.State(audio.ChannelFocusLoop).Playing)
	assert.Equal(t, 1, f.stream(audio.ChannelFocusLoop).Denials())
}

func TestCoordinator_MuteToggleRetriesBlockedMusic(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{GestureGated: true})

	f.coordinator.PlayBreakMusic()
	require.False(t, f.coordinator.State(audio.ChannelBreakLoop).Playing)

	// Still gated, so the retry is refused again but attempted.
	f.coordinator.SetMuted(true)
	assert.Equal(t, 2, f.stream(audio.ChannelBreakLoop).Denials())

	f.coordinator.Unlock(audio.WithUserGesture(context.Background()))
	f.coordinator.PauseMusic()
	f.coordinator.SetMuted(false)
	assert.False(t, f.coordinator.State(audio.ChannelBreakLoop).Playing, "paused music is not retried")

	f.coordinator.ResumeMusic()
	assert.True(t, f.coordinator.State(audio.ChannelBreakLoop).Playing)
}

func TestCoordinator_UnlockStartsPendingMusic(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{GestureGated: true})

	f.coordinator.PlayFocusMusic()
	report := f.coordinator.Unlock(audio.WithUserGesture(context.Background()))

	assert.False(t, report.AlreadyUnlocked)
	assert.Empty(t, report.Failures)
	assert.True(t, f.coordinator.Unlocked())

	focus := f.coordinator.State(audio.ChannelFocusLoop)
	assert.True(t, focus.Playing, "unlock retries the current music")
	assert.InDelta(t, 0.3, focus.Volume, 1e-9, "unlock restores volume")
	assert.False(t, f.coordinator.State(audio.ChannelStartCue).Playing, "primed cues are paused again")
}

func TestCoordinator_UnlockWithoutGestureStillFlips(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{GestureGated: true})

	report := f.coordinator.Unlock(context.Background())

	assert.True(t, f.coordinator.Unlocked())
	assert.Len(t, report.Failures, len(audio.Channels))
	for _, err := range report.Failures {
		assert.ErrorIs(t, err, audio.ErrPlaybackDenied)
	}
}

func TestCoordinator_UnlockIsIdempotent(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{GestureGated: true})
	gesture := audio.WithUserGesture(context.Background())

	first := f.coordinator.Unlock(gesture)
	second := f.coordinator.Unlock(gesture)

	assert.False(t, first.AlreadyUnlocked)
	assert.True(t, second.AlreadyUnlocked)
	assert.Equal(t, 1, f.stream(audio.ChannelBreakCue).Plays(), "redundant unlock must not prime again")
}

func TestCoordinator_ConcurrentUnlockCollapses(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{GestureGated: true})
	gesture := audio.WithUserGesture(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.coordinator.Unlock(gesture)
		}()
	}
	wg.Wait()

	assert.True(t, f.coordinator.Unlocked())
	for _, channel := range audio.Channels {
		assert.Equal(t, 1, f.stream(channel).Plays(), channel)
	}
}

func TestCoordinator_UnlockKeepsPausedPosition(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{GestureGated: true})
	require.NoError(t, f.stream(audio.ChannelFocusLoop).Seek(30*time.Second))

	f.coordinator.Unlock(audio.WithUserGesture(context.Background()))

	state := f.coordinator.State(audio.ChannelFocusLoop)
	assert.False(t, state.Playing)
	assert.Equal(t, 30*time.Second, state.Position, "priming must not rewind a paused loop")
}

func TestCoordinator_UnavailableChannel(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{Unavailable: []audio.ChannelID{audio.ChannelFocusLoop}})

	assert.False(t, f.coordinator.State(audio.ChannelFocusLoop).Loaded)
	assert.NotPanics(t, func() {
		f.coordinator.PlayFocusMusic()
		f.coordinator.PauseMusic()
		f.coordinator.ResumeMusic()
		f.coordinator.SetMuted(true)
	})
	assert.Equal(t, audio.MusicFocus, f.coordinator.CurrentMusic())
}

func TestCoordinator_CloseIsFinal(t *testing.T) {
	f := newFixture(t, sound.MemoryOptions{})
	f.coordinator.PlayFocusMusic()

	require.NoError(t, f.coordinator.Close())
	require.NoError(t, f.coordinator.Close())

	assert.False(t, f.stream(audio.ChannelFocusLoop).Playing())
	assert.NotPanics(t, func() {
		f.coordinator.PlayBreakMusic()
		f.coordinator.PlayStartCue()
	})
	assert.False(t, f.coordinator.State(audio.ChannelBreakLoop).Loaded)
}

func TestUserGesture(t *testing.T) {
	assert.False(t, audio.IsUserGesture(context.Background()))
	assert.True(t, audio.IsUserGesture(audio.WithUserGesture(context.Background())))
}
