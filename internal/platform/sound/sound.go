package sound

import (
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"pomodoro/internal/core/audio"
	"pomodoro/internal/core/model"
	"pomodoro/resources"
)

// Backend kinds accepted in settings.
const (
	BackendAuto    = "auto"
	BackendSpeaker = "speaker"
	BackendSilent  = "silent"
)

// Options selects and configures a playback backend.
type Options struct {
	Backend      string
	Library      *resources.Library
	Assets       model.AssetSet
	SampleRate   int
	GestureGated bool
	Clock        clockwork.Clock
}

// Open returns the configured backend. In auto mode a missing output device
// falls back to the silent in-memory backend so the timer keeps working.
func Open(options Options, logger *slog.Logger) (audio.Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch options.Backend {
	case BackendSilent:
		return newSilent(options), nil
	case BackendSpeaker:
		if options.Library == nil {
			return nil, fmt.Errorf("speaker backend: no audio directory configured")
		}
		device, err := NewSpeaker(options.Library, options.Assets, options.SampleRate)
		if err != nil {
			return nil, err
		}
		return device, nil
	case BackendAuto, "":
		if options.Library == nil {
			logger.Warn("no audio directory configured, music and cues are silent")
			return newSilent(options), nil
		}
		device, err := NewSpeaker(options.Library, options.Assets, options.SampleRate)
		if err != nil {
			logger.Warn("speaker unavailable, music and cues are silent", "error", err)
			return newSilent(options), nil
		}
		return device, nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", options.Backend)
	}
}

func newSilent(options Options) *Memory {
	return NewMemory(MemoryOptions{
		Clock:        options.Clock,
		GestureGated: options.GestureGated,
	})
}

func assetName(assets model.AssetSet, channel audio.ChannelID) string {
	switch channel {
	case audio.ChannelFocusLoop:
		return assets.FocusLoop
	case audio.ChannelBreakLoop:
		return assets.BreakLoop
	case audio.ChannelStartCue:
		return assets.StartCue
	case audio.ChannelBreakCue:
		return assets.BreakCue
	default:
		return ""
	}
}
