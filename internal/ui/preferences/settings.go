package preferences

import (
	"time"

	"pomodoro/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	Templates         model.Catalog
	DefaultTemplateID string
	StartMuted        bool

	AudioDir     string
	Assets       model.AssetSet
	MusicVolume  float64
	CueVolume    float64
	AudioBackend string
	SampleRate   int
	// GestureGated makes the silent backend refuse playback until the first
	// user interaction.
	GestureGated bool

	StartMusicDelay      time.Duration
	TransitionMusicDelay time.Duration
	ResumeMusicDelay     time.Duration
}

// DefaultSettings returns default settings for Pomodoro.
func DefaultSettings() Settings {
	cycle := model.DefaultCycleConfig()
	audio := model.DefaultAudioConfig()
	return Settings{
		Templates:         model.DefaultCatalog(),
		DefaultTemplateID: "standard",
		StartMuted:        false,

		Assets:       model.DefaultAssetSet(),
		MusicVolume:  audio.MusicVolume,
		CueVolume:    audio.CueVolume,
		AudioBackend: "auto",
		SampleRate:   44100,

		StartMusicDelay:      cycle.StartMusicDelay,
		TransitionMusicDelay: cycle.TransitionMusicDelay,
		ResumeMusicDelay:     cycle.ResumeMusicDelay,
	}
}

// CycleConfig converts settings to the controller configuration. The tick
// interval is always one second so the countdown measures wall-clock time.
func (settings Settings) CycleConfig() model.CycleConfig {
	return model.CycleConfig{
		TickInterval:         time.Second,
		StartMusicDelay:      settings.StartMusicDelay,
		TransitionMusicDelay: settings.TransitionMusicDelay,
		ResumeMusicDelay:     settings.ResumeMusicDelay,
	}
}

// AudioConfig converts settings to the coordinator configuration.
func (settings Settings) AudioConfig() model.AudioConfig {
	return model.AudioConfig{
		MusicVolume: settings.MusicVolume,
		CueVolume:   settings.CueVolume,
	}
}

// Catalog returns the usable templates, falling back to the built-in ones.
func (settings Settings) Catalog() model.Catalog {
	catalog := settings.Templates.Valid()
	if len(catalog) == 0 {
		return model.DefaultCatalog()
	}
	return catalog
}

// DefaultTemplate returns the template selected at startup.
func (settings Settings) DefaultTemplate() model.Template {
	catalog := settings.Catalog()
	if template, ok := catalog.Find(settings.DefaultTemplateID); ok {
		return template
	}
	return catalog[0]
}
