package progress

import (
	"sync"
	"time"
)

// Scheduler is the host context that owns clock state.
type Scheduler interface {
	// Do runs fn on the scheduling context. It may return before fn runs.
	Do(fn func())
	// Every calls fn once per frame on the scheduling context until cancel is called.
	Every(fn func()) (cancel func())
}

// TimeSource provides monotonic time readings.
type TimeSource interface {
	Now() time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now() }

// SystemTime reads the process monotonic clock.
var SystemTime TimeSource = systemTime{}

// DefaultFrameInterval is the nominal 60 Hz tick of the loop scheduler.
const DefaultFrameInterval = time.Second / 60

// Loop is a Scheduler backed by a single goroutine, for hosts without a UI thread.
type Loop struct {
	mu       sync.Mutex
	interval time.Duration
	tasks    chan func()
	stopCh   chan struct{}
	frames   map[uint64]func()
	nextID   uint64
	running  bool
}

// NewLoop creates a loop that ticks every interval.
func NewLoop(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Loop{
		interval: interval,
		tasks:    make(chan func(), 64),
		stopCh:   make(chan struct{}),
		frames:   make(map[uint64]func()),
	}
}

// Start launches the loop goroutine.
func (loop *Loop) Start() {
	loop.mu.Lock()
	if loop.running {
		loop.mu.Unlock()
		return
	}
	loop.running = true
	loop.mu.Unlock()

	go loop.run()
}

// Stop terminates the loop goroutine. Pending tasks are dropped.
func (loop *Loop) Stop() {
	loop.mu.Lock()
	defer loop.mu.Unlock()
	if !loop.running {
		return
	}
	loop.running = false
	close(loop.stopCh)
}

// Do queues fn for the loop goroutine. Tasks queued on a stopped loop are dropped.
func (loop *Loop) Do(fn func()) {
	loop.mu.Lock()
	running := loop.running
	loop.mu.Unlock()
	if !running {
		return
	}
	select {
	case loop.tasks <- fn:
	case <-loop.stopCh:
	}
}

// Every registers fn to run on each loop tick.
func (loop *Loop) Every(fn func()) func() {
	loop.mu.Lock()
	id := loop.nextID
	loop.nextID++
	loop.frames[id] = fn
	loop.mu.Unlock()

	return func() {
		loop.mu.Lock()
		delete(loop.frames, id)
		loop.mu.Unlock()
	}
}

func (loop *Loop) run() {
	ticker := time.NewTicker(loop.interval)
	defer ticker.Stop()

	for {
		select {
		case <-loop.stopCh:
			return
		case task := <-loop.tasks:
			task()
		case <-ticker.C:
			loop.step()
		}
	}
}

func (loop *Loop) step() {
	loop.mu.Lock()
	frames := make([]func(), 0, len(loop.frames))
	for _, fn := range loop.frames {
		frames = append(frames, fn)
	}
	loop.mu.Unlock()

	for _, fn := range frames {
		fn()
	}
}
