package session

import (
	"time"

	"eyestretch/internal/core/model"
	"eyestretch/internal/core/pattern"
)

// State represents the screen the session is on.
type State string

const (
	StateMenu       State = "menu"
	StateCountdown  State = "countdown"
	StateStretching State = "stretching"
	StateTransition State = "transition"
	StatePaused     State = "paused"
	StateCompletion State = "completion"
)

// Active reports whether an exercise is underway.
func (state State) Active() bool {
	switch state {
	case StateCountdown, StateStretching, StateTransition, StatePaused:
		return true
	default:
		return false
	}
}

// EventType defines the type of session event.
type EventType string

const (
	EventStateChange     EventType = "state_change"
	EventProgress        EventType = "progress"
	EventCountdown       EventType = "countdown"
	EventSpeedChange     EventType = "speed_change"
	EventPatternComplete EventType = "pattern_complete"
	EventSessionComplete EventType = "session_complete"
)

// Event represents a session update for observers.
type Event struct {
	Type      EventType
	State     State
	Pattern   pattern.ID
	Cycle     int
	Total     int
	Countdown int
	Speed     model.Speed
	Progress  float64
	Completed int
	At        time.Time
}
