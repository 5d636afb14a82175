package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"pomodoro/internal/core/audio"
	"pomodoro/internal/core/cycle"
	"pomodoro/internal/core/model"
	"pomodoro/internal/platform/sound"
	"pomodoro/internal/ui/preferences"
	"pomodoro/resources"
)

// Options configures a session. Backend is opened from Settings when nil.
type Options struct {
	Settings preferences.Settings
	Backend  audio.Backend
	Clock    clockwork.Clock
	Logger   *slog.Logger
}

// Session is one running timer with its audio, shared by every front end.
type Session struct {
	Controller *cycle.Controller
	Audio      *audio.Coordinator
	Catalog    model.Catalog
	Assets     model.AssetSet

	backend audio.Backend
	logger  *slog.Logger
}

// New wires the coordinator and controller, selects the default template and
// applies the start-muted preference.
func New(options Options) (*Session, error) {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Clock == nil {
		options.Clock = clockwork.NewRealClock()
	}
	settings := options.Settings

	backend := options.Backend
	if backend == nil {
		var library *resources.Library
		if settings.AudioDir != "" {
			library = resources.Dir(settings.AudioDir)
		}
		opened, err := sound.Open(sound.Options{
			Backend:      settings.AudioBackend,
			Library:      library,
			Assets:       settings.Assets,
			SampleRate:   settings.SampleRate,
			GestureGated: settings.GestureGated,
			Clock:        options.Clock,
		}, options.Logger.With("component", "sound"))
		if err != nil {
			return nil, fmt.Errorf("open audio backend: %w", err)
		}
		backend = opened
	}

	coordinator := audio.NewCoordinator(backend, settings.AudioConfig(), options.Logger.With("component", "audio"))
	controller := cycle.New(settings.CycleConfig(), coordinator, cycle.Options{
		Clock:  options.Clock,
		Logger: options.Logger.With("component", "cycle"),
	})

	session := &Session{
		Controller: controller,
		Audio:      coordinator,
		Catalog:    settings.Catalog(),
		Assets:     settings.Assets,
		backend:    backend,
		logger:     options.Logger,
	}

	if err := controller.SelectTemplate(settings.DefaultTemplate()); err != nil {
		session.Close()
		return nil, fmt.Errorf("select default template: %w", err)
	}
	if settings.StartMuted {
		controller.ToggleMute()
	}
	return session, nil
}

// Unlock marks ctx as a user interaction and unlocks audio. Front ends call it
// at the top of every input handler.
func (session *Session) Unlock(ctx context.Context) {
	if session.Audio.Unlocked() {
		return
	}
	report := session.Audio.Unlock(audio.WithUserGesture(ctx))
	for channel, err := range report.Failures {
		session.logger.Warn("audio unlock failed", "channel", channel, "error", err)
	}
}

// SelectTemplateAt selects the catalog entry at index.
func (session *Session) SelectTemplateAt(index int) error {
	if index < 0 || index >= len(session.Catalog) {
		return fmt.Errorf("template index %d out of range", index)
	}
	return session.Controller.SelectTemplate(session.Catalog[index])
}

// Toggle starts, pauses or resumes depending on the current state.
func (session *Session) Toggle() error {
	snapshot := session.Controller.Snapshot()
	switch {
	case snapshot.CycleState == cycle.CycleIdle:
		return session.Controller.Start()
	case snapshot.RunStatus == cycle.StatusRunning:
		return session.Controller.Pause()
	default:
		return session.Controller.Resume()
	}
}

// Reset returns the controller to idle.
func (session *Session) Reset() error {
	return session.Controller.Reset()
}

// ToggleMute flips music mute and returns the new value.
func (session *Session) ToggleMute() bool {
	return session.Controller.ToggleMute()
}

// SetCustomDurations selects a clamped custom template.
func (session *Session) SetCustomDurations(focusMinutes, breakMinutes int) (model.Template, error) {
	return session.Controller.SetCustomDurations(focusMinutes, breakMinutes)
}

// ApplySettings applies the preferences that are safe to change while a cycle
// runs. Volumes take effect immediately; everything else waits for the next
// launch.
func (session *Session) ApplySettings(settings preferences.Settings) {
	session.Audio.SetVolumes(settings.AudioConfig())
	session.logger.Info("settings applied", "music_volume", settings.MusicVolume, "cue_volume", settings.CueVolume)
}

// Snapshot returns the controller state.
func (session *Session) Snapshot() cycle.Snapshot {
	return session.Controller.Snapshot()
}

// Close stops the controller and releases audio resources.
func (session *Session) Close() error {
	session.Controller.Close()
	var errs []error
	if err := session.Audio.Close(); err != nil {
		errs = append(errs, err)
	}
	if closer, ok := session.backend.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close audio backend: %w", err))
		}
	}
	return errors.Join(errs...)
}
