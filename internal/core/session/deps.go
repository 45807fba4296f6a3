package session

import (
	"strconv"
	"sync"
	"time"

	"eyestretch/internal/core/model"
)

// Preference keys persisted by the session.
const (
	KeyCompletedSessions = "completed_sessions"
	KeyLastCompleted     = "last_completed"
	KeyAnimationSpeed    = "animation_speed"
)

// Preferences is a key/value store for session statistics and the speed level.
type Preferences interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Feedback triggers tactile or audible cues.
type Feedback interface {
	Fire(kind model.FeedbackKind)
}

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// Timers schedules one-shot callbacks and reports wall-clock time.
type Timers interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

type systemTimers struct{}

func (systemTimers) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

func (systemTimers) Now() time.Time { return time.Now() }

// SystemTimers uses the time package.
var SystemTimers Timers = systemTimers{}

type nopFeedback struct{}

func (nopFeedback) Fire(model.FeedbackKind) {}

type memoryPreferences struct {
	mu     sync.Mutex
	values map[string]string
}

func (prefs *memoryPreferences) Get(key string) (string, bool) {
	prefs.mu.Lock()
	defer prefs.mu.Unlock()
	value, ok := prefs.values[key]
	return value, ok
}

func (prefs *memoryPreferences) Set(key, value string) error {
	prefs.mu.Lock()
	defer prefs.mu.Unlock()
	prefs.values[key] = value
	return nil
}

// Stats are the persisted completion statistics.
type Stats struct {
	CompletedSessions int
	LastCompleted     time.Time
}

// CompletedToday reports whether the last completion falls on the same local day as now.
func (stats Stats) CompletedToday(now time.Time) bool {
	if stats.LastCompleted.IsZero() {
		return false
	}
	last := stats.LastCompleted.In(now.Location())
	y1, m1, d1 := last.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func loadStats(prefs Preferences) (Stats, model.Speed) {
	var stats Stats
	if raw, ok := prefs.Get(KeyCompletedSessions); ok {
		if count, err := strconv.Atoi(raw); err == nil && count > 0 {
			stats.CompletedSessions = count
		}
	}
	if raw, ok := prefs.Get(KeyLastCompleted); ok {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			stats.LastCompleted = parsed
		}
	}
	speed := model.SpeedNormal
	if raw, ok := prefs.Get(KeyAnimationSpeed); ok && model.Speed(raw).Valid() {
		speed = model.Speed(raw)
	}
	return stats, speed
}
