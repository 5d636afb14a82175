package sound

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	"pomodoro/internal/core/audio"
	"pomodoro/internal/core/model"
	"pomodoro/resources"
)

// ErrUnsupportedFormat indicates an asset extension with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

const resampleQuality = 4

// Speaker plays decoded assets on the default output device. Every opened
// stream stays in the speaker mixer for its whole life and outputs silence
// while paused.
type Speaker struct {
	library *resources.Library
	assets  model.AssetSet
	rate    beep.SampleRate
}

// NewSpeaker initializes the output device.
func NewSpeaker(library *resources.Library, assets model.AssetSet, sampleRate int) (*Speaker, error) {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	rate := beep.SampleRate(sampleRate)
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return &Speaker{library: library, assets: assets, rate: rate}, nil
}

// Open implements audio.Backend.
func (device *Speaker) Open(channel audio.ChannelID, loop bool) (audio.Stream, error) {
	name := assetName(device.assets, channel)
	if name == "" {
		return nil, fmt.Errorf("open %s: %w", channel, audio.ErrChannelUnavailable)
	}
	asset, err := device.library.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", channel, err)
	}
	source, format, err := decode(asset)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	var reader beep.Streamer = source
	if format.SampleRate != device.rate {
		reader = beep.Resample(resampleQuality, format.SampleRate, device.rate, source)
	}
	stream := &track{
		source: source,
		reader: reader,
		format: format,
		loop:   loop,
		paused: true,
		volume: 1,
	}
	speaker.Play(stream)
	return stream, nil
}

// Close stops the mixer and releases the device.
func (device *Speaker) Close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}

func decode(asset *resources.Asset) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(path.Ext(asset.Name())) {
	case ".mp3":
		return mp3.Decode(asset)
	case ".wav":
		return wav.Decode(asset)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, asset.Name())
	}
}

// track adapts a decoded asset to audio.Stream. Fields are guarded by the
// speaker lock, which the mixer also holds while calling Stream.
type track struct {
	source beep.StreamSeekCloser
	reader beep.Streamer
	format beep.Format
	loop   bool
	paused bool
	ended  bool
	closed bool
	volume float64
}

func (stream *track) Stream(samples [][2]float64) (int, bool) {
	if stream.closed {
		return 0, false
	}
	if stream.paused {
		clear(samples)
		return len(samples), true
	}

	filled := 0
	rewound := false
	for filled < len(samples) {
		n, ok := stream.reader.Stream(samples[filled:])
		for index := filled; index < filled+n; index++ {
			samples[index][0] *= stream.volume
			samples[index][1] *= stream.volume
		}
		filled += n
		if ok && n > 0 {
			rewound = false
			continue
		}
		if !stream.loop || rewound {
			stream.paused = true
			stream.ended = true
			break
		}
		if err := stream.source.Seek(0); err != nil {
			stream.paused = true
			break
		}
		rewound = true
	}
	clear(samples[filled:])
	return len(samples), true
}

func (stream *track) Err() error {
	return nil
}

func (stream *track) Play(_ context.Context) error {
	speaker.Lock()
	defer speaker.Unlock()
	if stream.closed {
		return ErrStreamClosed
	}
	if stream.ended {
		if err := stream.source.Seek(0); err != nil {
			return fmt.Errorf("rewind ended stream: %w", err)
		}
		stream.ended = false
	}
	stream.paused = false
	return nil
}

func (stream *track) Pause() {
	speaker.Lock()
	stream.paused = true
	speaker.Unlock()
}

func (stream *track) Seek(position time.Duration) error {
	speaker.Lock()
	defer speaker.Unlock()
	if stream.closed {
		return ErrStreamClosed
	}
	sample := stream.format.SampleRate.N(position)
	if sample < 0 {
		sample = 0
	}
	if length := stream.source.Len(); sample > length {
		sample = length
	}
	stream.ended = false
	return stream.source.Seek(sample)
}

func (stream *track) Position() time.Duration {
	speaker.Lock()
	defer speaker.Unlock()
	return stream.format.SampleRate.D(stream.source.Position())
}

func (stream *track) SetVolume(volume float64) {
	speaker.Lock()
	stream.volume = volume
	speaker.Unlock()
}

func (stream *track) Volume() float64 {
	speaker.Lock()
	defer speaker.Unlock()
	return stream.volume
}

func (stream *track) Playing() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return !stream.paused && !stream.closed
}

func (stream *track) Close() error {
	speaker.Lock()
	stream.closed = true
	speaker.Unlock()
	return stream.source.Close()
}
