package sound

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodoro/internal/core/audio"
)

func openMemory(t *testing.T, options MemoryOptions, channel audio.ChannelID) (*MemoryStream, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	options.Clock = clock
	backend := NewMemory(options)
	_, err := backend.Open(channel, channel.Looping())
	require.NoError(t, err)
	stream := backend.Stream(channel)
	require.NotNil(t, stream)
	return stream, clock
}

func TestMemoryStream_PausePreservesPosition(t *testing.T) {
	stream, clock := openMemory(t, MemoryOptions{LoopLength: time.Minute}, audio.ChannelFocusLoop)

	require.NoError(t, stream.Play(context.Background()))
	clock.Advance(10 * time.Second)
	stream.Pause()
	assert.Equal(t, 10*time.Second, stream.Position())
	assert.False(t, stream.Playing())

	clock.Advance(30 * time.Second)
	assert.Equal(t, 10*time.Second, stream.Position(), "paused stream must not advance")

	require.NoError(t, stream.Play(context.Background()))
	clock.Advance(5 * time.Second)
	assert.Equal(t, 15*time.Second, stream.Position())
	assert.Equal(t, 2, stream.Plays())
}

func TestMemoryStream_LoopWraps(t *testing.T) {
	stream, clock := openMemory(t, MemoryOptions{LoopLength: time.Minute}, audio.ChannelBreakLoop)

	require.NoError(t, stream.Play(context.Background()))
	clock.Advance(75 * time.Second)
	assert.True(t, stream.Playing())
	assert.Equal(t, 15*time.Second, stream.Position())
}

func TestMemoryStream_CueEnds(t *testing.T) {
	stream, clock := openMemory(t, MemoryOptions{CueLength: 2 * time.Second}, audio.ChannelStartCue)

	require.NoError(t, stream.Play(context.Background()))
	assert.True(t, stream.Playing())
	clock.Advance(3 * time.Second)
	assert.False(t, stream.Playing())
	assert.Equal(t, 2*time.Second, stream.Position())

	require.NoError(t, stream.Play(context.Background()))
	assert.True(t, stream.Playing(), "playing an ended cue starts it over")
	assert.Equal(t, time.Duration(0), stream.Position())
}

func TestMemoryStream_SeekClamps(t *testing.T) {
	stream, _ := openMemory(t, MemoryOptions{LoopLength: time.Minute}, audio.ChannelFocusLoop)

	require.NoError(t, stream.Seek(-time.Second))
	assert.Equal(t, time.Duration(0), stream.Position())
	require.NoError(t, stream.Seek(2*time.Minute))
	assert.Equal(t, time.Duration(0), stream.Position(), "seeking to the loop length wraps to zero")
	require.NoError(t, stream.Seek(20*time.Second))
	assert.Equal(t, 20*time.Second, stream.Position())
}

func TestMemoryStream_GestureGate(t *testing.T) {
	stream, _ := openMemory(t, MemoryOptions{GestureGated: true}, audio.ChannelFocusLoop)

	err := stream.Play(context.Background())
	require.ErrorIs(t, err, audio.ErrPlaybackDenied)
	assert.Equal(t, 1, stream.Denials())
	assert.False(t, stream.Playing())

	require.NoError(t, stream.Play(audio.WithUserGesture(context.Background())))
	stream.Pause()

	require.NoError(t, stream.Play(context.Background()), "a gesture unlocks the stream for good")
	assert.True(t, stream.Playing())
}

func TestMemoryStream_Closed(t *testing.T) {
	stream, _ := openMemory(t, MemoryOptions{}, audio.ChannelBreakCue)

	require.NoError(t, stream.Close())
	assert.ErrorIs(t, stream.Play(context.Background()), ErrStreamClosed)
	assert.ErrorIs(t, stream.Seek(0), ErrStreamClosed)
}

func TestMemory_Unavailable(t *testing.T) {
	backend := NewMemory(MemoryOptions{Unavailable: []audio.ChannelID{audio.ChannelBreakCue}})

	_, err := backend.Open(audio.ChannelBreakCue, false)
	assert.ErrorIs(t, err, audio.ErrChannelUnavailable)
	assert.Nil(t, backend.Stream(audio.ChannelBreakCue))
	assert.False(t, backend.RequiresGesture())
}
