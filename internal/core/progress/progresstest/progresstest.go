// Package progresstest provides deterministic schedulers and time sources for tests.
package progresstest

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs frame callbacks only when Step is called.
// With Deferred set, Do queues tasks until RunPending, mimicking a
// host that marshals calls onto its own context.
type Scheduler struct {
	mu       sync.Mutex
	Deferred bool
	pending  []func()
	frames   map[uint64]func()
	nextID   uint64
}

// NewScheduler creates a scheduler that runs Do tasks immediately.
func NewScheduler() *Scheduler {
	return &Scheduler{frames: make(map[uint64]func())}
}

// Do runs fn now, or queues it when Deferred.
func (scheduler *Scheduler) Do(fn func()) {
	scheduler.mu.Lock()
	if scheduler.Deferred {
		scheduler.pending = append(scheduler.pending, fn)
		scheduler.mu.Unlock()
		return
	}
	scheduler.mu.Unlock()
	fn()
}

// Every registers a frame callback.
func (scheduler *Scheduler) Every(fn func()) func() {
	scheduler.mu.Lock()
	id := scheduler.nextID
	scheduler.nextID++
	scheduler.frames[id] = fn
	scheduler.mu.Unlock()

	return func() {
		scheduler.mu.Lock()
		delete(scheduler.frames, id)
		scheduler.mu.Unlock()
	}
}

// RunPending runs queued Do tasks in order.
func (scheduler *Scheduler) RunPending() {
	scheduler.mu.Lock()
	pending := scheduler.pending
	scheduler.pending = nil
	scheduler.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// Step delivers one frame to every registered callback, in registration order.
func (scheduler *Scheduler) Step() {
	scheduler.mu.Lock()
	ids := make([]uint64, 0, len(scheduler.frames))
	for id := range scheduler.frames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	frames := make([]func(), 0, len(ids))
	for _, id := range ids {
		frames = append(frames, scheduler.frames[id])
	}
	scheduler.mu.Unlock()

	for _, fn := range frames {
		fn()
	}
}

// Frames returns the number of registered frame callbacks.
func (scheduler *Scheduler) Frames() int {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return len(scheduler.frames)
}

// Time is a manually advanced time source.
type Time struct {
	mu  sync.Mutex
	now time.Time
}

// NewTime creates a time source starting at start.
func NewTime(start time.Time) *Time {
	return &Time{now: start}
}

// Now returns the current fake time.
func (source *Time) Now() time.Time {
	source.mu.Lock()
	defer source.mu.Unlock()
	return source.now
}

// Advance moves the fake time forward.
func (source *Time) Advance(delta time.Duration) {
	source.mu.Lock()
	source.now = source.now.Add(delta)
	source.mu.Unlock()
}
