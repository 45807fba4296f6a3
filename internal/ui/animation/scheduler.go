package animation

import (
	"sort"
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// FrameScheduler delivers frame callbacks from a looping fyne animation, which the
// driver ticks on the main thread in step with the display. Do marshals work onto
// the same thread.
type FrameScheduler struct {
	mu        sync.Mutex
	frames    map[uint64]func()
	nextID    uint64
	animation *fyne.Animation
}

// NewFrameScheduler creates an idle scheduler. The animation runs only while callbacks are registered.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{frames: make(map[uint64]func())}
}

// Do runs fn on the fyne main thread.
func (scheduler *FrameScheduler) Do(fn func()) {
	fyne.Do(fn)
}

// Every registers fn to run once per rendered frame.
func (scheduler *FrameScheduler) Every(fn func()) func() {
	scheduler.mu.Lock()
	id := scheduler.nextID
	scheduler.nextID++
	scheduler.frames[id] = fn
	var start *fyne.Animation
	if scheduler.animation == nil {
		scheduler.animation = scheduler.newAnimation()
		start = scheduler.animation
	}
	scheduler.mu.Unlock()

	if start != nil {
		start.Start()
	}

	return func() {
		scheduler.mu.Lock()
		delete(scheduler.frames, id)
		var stop *fyne.Animation
		if len(scheduler.frames) == 0 && scheduler.animation != nil {
			stop = scheduler.animation
			scheduler.animation = nil
		}
		scheduler.mu.Unlock()

		if stop != nil {
			stop.Stop()
		}
	}
}

// Step runs every registered callback once, in registration order.
func (scheduler *FrameScheduler) Step() {
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

// running reports whether the frame animation is active.
func (scheduler *FrameScheduler) running() bool {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.animation != nil
}

func (scheduler *FrameScheduler) newAnimation() *fyne.Animation {
	// The tick value is ignored; progress comes from elapsed time, not animation position.
	animation := fyne.NewAnimation(time.Second, func(float32) {
		scheduler.Step()
	})
	animation.Curve = fyne.AnimationLinear
	animation.RepeatCount = fyne.AnimationRepeatForever
	return animation
}
