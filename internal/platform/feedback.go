package platform

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"eyestretch/internal/core/model"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// ErrAudioUnavailable is returned when the speaker cannot be opened.
var ErrAudioUnavailable = errors.New("audio unavailable")

// NopFeedback ignores every cue.
type NopFeedback struct{}

// Fire does nothing.
func (NopFeedback) Fire(model.FeedbackKind) {}

// SoundFeedback plays short synthesized tones in place of device haptics.
type SoundFeedback struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	enabled bool
}

// NewSoundFeedback opens the default speaker.
func NewSoundFeedback() (*SoundFeedback, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("init speaker: %w: %v", ErrAudioUnavailable, err)
	}
	return &SoundFeedback{rate: sampleRate, enabled: true}, nil
}

// SetEnabled mutes or unmutes the cues.
func (feedback *SoundFeedback) SetEnabled(enabled bool) {
	feedback.mu.Lock()
	defer feedback.mu.Unlock()
	feedback.enabled = enabled
}

// Fire plays the cue for kind without blocking.
func (feedback *SoundFeedback) Fire(kind model.FeedbackKind) {
	feedback.mu.Lock()
	enabled := feedback.enabled
	feedback.mu.Unlock()
	if !enabled {
		return
	}

	cue, err := Cue(feedback.rate, kind)
	if err != nil {
		return
	}
	speaker.Play(cue)
}

type note struct {
	freq   float64
	length time.Duration
	volume float64
}

const gap = 40 * time.Millisecond

var cues = map[model.FeedbackKind][]note{
	model.FeedbackLightImpact: {{freq: 660, length: 40 * time.Millisecond, volume: 0.25}},
	model.FeedbackSuccess: {
		{freq: 880, length: 80 * time.Millisecond, volume: 0.35},
		{freq: 1320, length: 120 * time.Millisecond, volume: 0.35},
	},
	model.FeedbackMilestone: {
		{freq: 660, length: 90 * time.Millisecond, volume: 0.4},
		{freq: 880, length: 90 * time.Millisecond, volume: 0.4},
		{freq: 1320, length: 200 * time.Millisecond, volume: 0.4},
	},
}

// Cue builds the tone sequence for kind. Notes are separated by a short silence.
func Cue(rate beep.SampleRate, kind model.FeedbackKind) (beep.Streamer, error) {
	notes, ok := cues[kind]
	if !ok {
		return nil, fmt.Errorf("cue %q: unknown feedback kind", kind)
	}

	parts := make([]beep.Streamer, 0, len(notes)*2)
	for index, n := range notes {
		if index > 0 {
			parts = append(parts, beep.Silence(rate.N(gap)))
		}
		tone, err := generators.SineTone(rate, n.freq)
		if err != nil {
			return nil, fmt.Errorf("cue %q: %w", kind, err)
		}
		parts = append(parts, beep.Take(rate.N(n.length), withVolume(tone, n.volume)))
	}
	return beep.Seq(parts...), nil
}

func withVolume(streamer beep.Streamer, volume float64) beep.Streamer {
	if volume <= 0 {
		return &effects.Volume{Streamer: streamer, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: streamer, Base: 2, Volume: math.Log2(volume)}
}
