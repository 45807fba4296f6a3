package model

import "time"

// Speed is the persisted animation speed level.
type Speed string

const (
	SpeedNormal Speed = "normal_speed"
	SpeedFast   Speed = "fast_speed"
)

// Valid reports whether speed is a known level.
func (speed Speed) Valid() bool {
	return speed == SpeedNormal || speed == SpeedFast
}

// Toggle returns the other speed level.
func (speed Speed) Toggle() Speed {
	if speed == SpeedFast {
		return SpeedNormal
	}
	return SpeedFast
}

// SessionConfig contains runtime settings for an exercise session.
type SessionConfig struct {
	Variant string

	CountdownSteps    int
	CountdownInterval time.Duration
	// StartDelay separates the last countdown step from the first pattern.
	StartDelay time.Duration

	TransitionHold time.Duration
	PatternGap     time.Duration

	MilestoneEvery int
}

// DefaultSessionConfig mirrors the pacing of the exercise screens.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Variant:           "eysee",
		CountdownSteps:    3,
		CountdownInterval: time.Second,
		StartDelay:        time.Second,
		TransitionHold:    1500 * time.Millisecond,
		PatternGap:        500 * time.Millisecond,
		MilestoneEvery:    10,
	}
}

// FeedbackKind names a tactile or audible cue.
type FeedbackKind string

const (
	FeedbackLightImpact FeedbackKind = "light_impact"
	FeedbackSuccess     FeedbackKind = "success_notification"
	FeedbackMilestone   FeedbackKind = "milestone"
)
