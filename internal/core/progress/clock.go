// Package progress advances a normalized progress value over a wall-clock duration.
//
// A Clock derives progress from elapsed monotonic time, never from the number of
// ticks delivered, so the animation keeps the same speed at any frame rate.
package progress

import (
	"math"
	"sync"
	"time"
)

// MinDuration is the shortest run a clock accepts. Shorter durations are clamped.
const MinDuration = time.Millisecond

// State is the clock lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Clock drives progress from 0 to 1 over a target duration.
type Clock struct {
	mu         sync.Mutex
	scheduler  Scheduler
	time       TimeSource
	state      State
	epoch      time.Time
	duration   time.Duration
	progress   float64
	generation uint64
	requests   uint64
	onComplete func()
	onTick     func(float64)
	cancelTick func()
}

// NewClock creates an idle clock. A nil time source uses SystemTime.
func NewClock(scheduler Scheduler, source TimeSource) *Clock {
	if source == nil {
		source = SystemTime
	}
	return &Clock{
		scheduler: scheduler,
		time:      source,
		state:     StateIdle,
	}
}

// SetOnTick sets a handler called on the scheduling context after every progress update.
func (clock *Clock) SetOnTick(handler func(float64)) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.onTick = handler
}

// Start runs the clock from 0 over duration. The request is marshaled onto the
// scheduler and takes effect asynchronously; Progress reports 0 right away.
// onComplete fires at most once.
func (clock *Clock) Start(duration time.Duration, onComplete func()) {
	request := clock.request(0)
	clock.scheduler.Do(func() {
		clock.begin(request, 0, duration, onComplete)
	})
}

// Resume runs the clock from fromProgress over a (possibly new) duration, keeping
// the current position: the epoch is placed fromProgress*duration in the past.
func (clock *Clock) Resume(fromProgress float64, duration time.Duration, onComplete func()) {
	request := clock.request(fromProgress)
	clock.scheduler.Do(func() {
		clock.begin(request, fromProgress, duration, onComplete)
	})
}

// Stop halts the clock without firing completion. Safe to call when idle.
// Start or Resume requests still queued on the scheduler are dropped.
func (clock *Clock) Stop() {
	clock.mu.Lock()
	clock.requests++
	cancel := clock.stopLocked()
	clock.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Progress returns the current progress in [0, 1].
func (clock *Clock) Progress() float64 {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.progress
}

// Running reports whether the clock is advancing.
func (clock *Clock) Running() bool {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.state == StateRunning
}

// State returns the lifecycle state.
func (clock *Clock) State() State {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.state
}

// Duration returns the target duration of the current or last run.
func (clock *Clock) Duration() time.Duration {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.duration
}

func (clock *Clock) request(from float64) uint64 {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.progress = clampUnit(from)
	clock.requests++
	return clock.requests
}

func (clock *Clock) begin(request uint64, from float64, duration time.Duration, onComplete func()) {
	if duration < MinDuration {
		duration = MinDuration
	}
	from = clampUnit(from)

	clock.mu.Lock()
	if request != clock.requests {
		// Superseded by a later Start, Resume or Stop.
		clock.mu.Unlock()
		return
	}
	previous := clock.stopLocked()
	clock.generation++
	generation := clock.generation
	clock.duration = duration
	clock.onComplete = onComplete
	clock.epoch = clock.time.Now().Add(-time.Duration(from * float64(duration)))
	clock.progress = from
	clock.state = StateRunning
	clock.mu.Unlock()

	if previous != nil {
		previous()
	}

	cancel := clock.scheduler.Every(func() {
		clock.tick(generation)
	})

	clock.mu.Lock()
	if clock.generation == generation && clock.state == StateRunning {
		clock.cancelTick = cancel
		cancel = nil
	}
	clock.mu.Unlock()
	if cancel != nil {
		// Stopped or restarted while registering.
		cancel()
	}
}

func (clock *Clock) tick(generation uint64) {
	clock.mu.Lock()
	if clock.state != StateRunning || clock.generation != generation {
		clock.mu.Unlock()
		return
	}

	elapsed := clock.time.Now().Sub(clock.epoch)
	progress := clampUnit(float64(elapsed) / float64(clock.duration))
	clock.progress = progress
	onTick := clock.onTick

	var onComplete func()
	var cancel func()
	if progress >= 1 {
		clock.progress = 1
		onComplete = clock.onComplete
		clock.onComplete = nil
		cancel = clock.stopLocked()
	}
	clock.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if onTick != nil {
		onTick(progress)
	}
	if onComplete != nil {
		onComplete()
	}
}

// stopLocked marks the clock idle and returns the tick cancel func to call after unlocking.
func (clock *Clock) stopLocked() func() {
	cancel := clock.cancelTick
	clock.cancelTick = nil
	if clock.state == StateRunning {
		clock.generation++
	}
	clock.state = StateIdle
	return cancel
}

func clampUnit(value float64) float64 {
	if math.IsNaN(value) || value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
