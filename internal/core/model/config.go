package model

import "time"

// CycleConfig contains runtime timing for the cycle controller.
type CycleConfig struct {
	TickInterval time.Duration

	// StartMusicDelay separates the start cue from focus music on Start.
	StartMusicDelay time.Duration
	// TransitionMusicDelay separates a phase cue from the next phase's music.
	TransitionMusicDelay time.Duration
	ResumeMusicDelay     time.Duration
}

// DefaultCycleConfig returns the timing used by the front ends.
func DefaultCycleConfig() CycleConfig {
	return CycleConfig{
		TickInterval:         time.Second,
		StartMusicDelay:      150 * time.Millisecond,
		TransitionMusicDelay: 100 * time.Millisecond,
		ResumeMusicDelay:     100 * time.Millisecond,
	}
}

// AudioConfig contains volume levels for the audio coordinator.
type AudioConfig struct {
	MusicVolume float64
	CueVolume   float64
}

// DefaultAudioConfig keeps music subtle and cues noticeable.
func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		MusicVolume: 0.3,
		CueVolume:   0.5,
	}
}

// Track credits the music behind a loop.
type Track struct {
	Title  string
	Artist string
	URL    string
}

// AssetSet names the four playable audio assets and credits the two loops.
type AssetSet struct {
	FocusLoop string
	BreakLoop string
	StartCue  string
	BreakCue  string

	FocusTrack Track
	BreakTrack Track
}

// DefaultAssetSet returns the conventional asset file names.
func DefaultAssetSet() AssetSet {
	return AssetSet{
		FocusLoop: "focus-music.mp3",
		BreakLoop: "break-music.mp3",
		StartCue:  "alarm-start.mp3",
		BreakCue:  "alarm-break.mp3",
		FocusTrack: Track{
			Title:  "Focus Music",
			Artist: "Jason Lewis - Mind Amend",
			URL:    "https://www.youtube.com/watch?v=jvM9AfAzoSo",
		},
		BreakTrack: Track{
			Title:  "Lofi Music",
			Artist: "Lofi Kitty",
			URL:    "https://www.youtube.com/watch?v=01dn67QubYQ",
		},
	}
}
