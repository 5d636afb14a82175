package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"pomodoro/internal/core/model"
	"pomodoro/internal/ui/preferences"
)

const (
	settingsFileName = "settings.yaml"
	audioDirName     = "audio"
)

type yamlSettings struct {
	DefaultTemplate string         `yaml:"default_template"`
	StartMuted      bool           `yaml:"start_muted"`
	Audio           yamlAudio      `yaml:"audio"`
	Timing          yamlTiming     `yaml:"timing"`
	Templates       []yamlTemplate `yaml:"templates"`
}

type yamlAudio struct {
	Directory    string     `yaml:"directory"`
	Backend      string     `yaml:"backend"`
	SampleRate   int        `yaml:"sample_rate"`
	GestureGated bool       `yaml:"gesture_gated"`
	MusicVolume  *float64   `yaml:"music_volume"`
	CueVolume    *float64   `yaml:"cue_volume"`
	Files        yamlFiles  `yaml:"files"`
	Tracks       yamlTracks `yaml:"tracks"`
}

type yamlFiles struct {
	FocusLoop string `yaml:"focus_loop"`
	BreakLoop string `yaml:"break_loop"`
	StartCue  string `yaml:"start_cue"`
	BreakCue  string `yaml:"break_cue"`
}

type yamlTracks struct {
	Focus yamlTrack `yaml:"focus"`
	Break yamlTrack `yaml:"break"`
}

type yamlTrack struct {
	Title  string `yaml:"title"`
	Artist string `yaml:"artist"`
	URL    string `yaml:"url"`
}

type yamlTiming struct {
	StartMusicDelayMS      *int `yaml:"start_music_delay_ms"`
	TransitionMusicDelayMS *int `yaml:"transition_music_delay_ms"`
	ResumeMusicDelayMS     *int `yaml:"resume_music_delay_ms"`
}

type yamlTemplate struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	FocusMinutes int    `yaml:"focus_minutes"`
	BreakMinutes int    `yaml:"break_minutes"`
	Description  string `yaml:"description,omitempty"`
}

const maxMusicDelay = 10 * time.Second

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
// An unset audio directory points at the app's config directory.
func LoadSettings(appName string) (preferences.Settings, error) {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	settings, err := LoadSettingsFile(configPath)
	if settings.AudioDir == "" {
		settings.AudioDir = filepath.Join(filepath.Dir(configPath), audioDirName)
	}
	return settings, err
}

// LoadOrCreateSettings reads user preferences and writes the defaults when no
// file exists yet, so the user has something to edit.
func LoadOrCreateSettings(appName string) (preferences.Settings, error) {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		settings := preferences.DefaultSettings()
		settings.AudioDir = filepath.Join(filepath.Dir(configPath), audioDirName)
		if err := os.MkdirAll(settings.AudioDir, 0o755); err != nil {
			return settings, fmt.Errorf("create audio directory: %w", err)
		}
		return settings, SaveSettingsFile(configPath, settings)
	}
	return LoadSettings(appName)
}

// AudioDir returns the default audio asset directory for appName.
func AudioDir(appName string) (string, error) {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(configPath), audioDirName), nil
}

// LoadSettingsFile reads preferences from an explicit path.
func LoadSettingsFile(configPath string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(configPath, settings)
}

// SaveSettingsFile writes preferences to an explicit path.
func SaveSettingsFile(configPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(toYamlSettings(settings))
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// SettingsPath returns where the settings file for appName lives.
func SettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func toYamlSettings(settings preferences.Settings) yamlSettings {
	musicVolume := settings.MusicVolume
	cueVolume := settings.CueVolume
	startDelay := int(settings.StartMusicDelay / time.Millisecond)
	transitionDelay := int(settings.TransitionMusicDelay / time.Millisecond)
	resumeDelay := int(settings.ResumeMusicDelay / time.Millisecond)

	fileData := yamlSettings{
		DefaultTemplate: settings.DefaultTemplateID,
		StartMuted:      settings.StartMuted,
		Audio: yamlAudio{
			Directory:    settings.AudioDir,
			Backend:      settings.AudioBackend,
			SampleRate:   settings.SampleRate,
			GestureGated: settings.GestureGated,
			MusicVolume:  &musicVolume,
			CueVolume:    &cueVolume,
			Files: yamlFiles{
				FocusLoop: settings.Assets.FocusLoop,
				BreakLoop: settings.Assets.BreakLoop,
				StartCue:  settings.Assets.StartCue,
				BreakCue:  settings.Assets.BreakCue,
			},
			Tracks: yamlTracks{
				Focus: toYamlTrack(settings.Assets.FocusTrack),
				Break: toYamlTrack(settings.Assets.BreakTrack),
			},
		},
		Timing: yamlTiming{
			StartMusicDelayMS:      &startDelay,
			TransitionMusicDelayMS: &transitionDelay,
			ResumeMusicDelayMS:     &resumeDelay,
		},
	}
	for _, template := range settings.Templates {
		fileData.Templates = append(fileData.Templates, yamlTemplate{
			ID:           template.ID,
			Name:         template.Name,
			FocusMinutes: template.FocusMinutes,
			BreakMinutes: template.BreakMinutes,
			Description:  template.Description,
		})
	}
	return fileData
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if len(fileData.Templates) > 0 {
		catalog := make(model.Catalog, 0, len(fileData.Templates))
		for _, entry := range fileData.Templates {
			catalog = append(catalog, model.Template{
				ID:           entry.ID,
				Name:         entry.Name,
				FocusMinutes: entry.FocusMinutes,
				BreakMinutes: entry.BreakMinutes,
				Description:  entry.Description,
			})
		}
		if valid := catalog.Valid(); len(valid) > 0 {
			settings.Templates = valid
		}
	}
	if _, ok := settings.Templates.Find(fileData.DefaultTemplate); ok {
		settings.DefaultTemplateID = fileData.DefaultTemplate
	}
	settings.StartMuted = fileData.StartMuted

	audio := fileData.Audio
	if audio.Directory != "" {
		settings.AudioDir = audio.Directory
	}
	switch audio.Backend {
	case "auto", "speaker", "silent":
		settings.AudioBackend = audio.Backend
	}
	if audio.SampleRate >= 8000 && audio.SampleRate <= 192000 {
		settings.SampleRate = audio.SampleRate
	}
	settings.GestureGated = audio.GestureGated
	if audio.MusicVolume != nil && *audio.MusicVolume >= 0 && *audio.MusicVolume <= 1 {
		settings.MusicVolume = *audio.MusicVolume
	}
	if audio.CueVolume != nil && *audio.CueVolume >= 0 && *audio.CueVolume <= 1 {
		settings.CueVolume = *audio.CueVolume
	}
	applyNonEmpty(&settings.Assets.FocusLoop, audio.Files.FocusLoop)
	applyNonEmpty(&settings.Assets.BreakLoop, audio.Files.BreakLoop)
	applyNonEmpty(&settings.Assets.StartCue, audio.Files.StartCue)
	applyNonEmpty(&settings.Assets.BreakCue, audio.Files.BreakCue)
	applyTrack(&settings.Assets.FocusTrack, audio.Tracks.Focus)
	applyTrack(&settings.Assets.BreakTrack, audio.Tracks.Break)

	timing := fileData.Timing
	applyMusicDelay(&settings.StartMusicDelay, timing.StartMusicDelayMS)
	applyMusicDelay(&settings.TransitionMusicDelay, timing.TransitionMusicDelayMS)
	applyMusicDelay(&settings.ResumeMusicDelay, timing.ResumeMusicDelayMS)
}

func applyNonEmpty(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func toYamlTrack(track model.Track) yamlTrack {
	return yamlTrack{Title: track.Title, Artist: track.Artist, URL: track.URL}
}

// applyTrack overrides credits field by field so a file naming only a new
// title keeps the default artist.
func applyTrack(target *model.Track, entry yamlTrack) {
	applyNonEmpty(&target.Title, entry.Title)
	applyNonEmpty(&target.Artist, entry.Artist)
	applyNonEmpty(&target.URL, entry.URL)
}

func applyMusicDelay(target *time.Duration, milliseconds *int) {
	if milliseconds == nil {
		return
	}
	delay := time.Duration(*milliseconds) * time.Millisecond
	if delay >= 0 && delay <= maxMusicDelay {
		*target = delay
	}
}
