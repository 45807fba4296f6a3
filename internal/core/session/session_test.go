package session

import (
	"sort"
	"sync"
	"testing"
	"time"

	"eyestretch/internal/core/model"
	"eyestretch/internal/core/pattern"
	"eyestretch/internal/core/progress/progresstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 6, 18, 9, 0, 0, 0, time.Local)

type harness struct {
	session   *Session
	scheduler *progresstest.Scheduler
	timers    *fakeTimers
	feedback  *recordingFeedback
	prefs     *memoryPreferences
}

func newHarness(t *testing.T, values map[string]string) *harness {
	t.Helper()
	if values == nil {
		values = make(map[string]string)
	}
	h := &harness{
		scheduler: progresstest.NewScheduler(),
		timers:    newFakeTimers(epoch),
		feedback:  &recordingFeedback{},
		prefs:     &memoryPreferences{values: values},
	}
	h.session = New(model.DefaultSessionConfig(), Dependencies{
		Preferences: h.prefs,
		Feedback:    h.feedback,
		Scheduler:   h.scheduler,
		Time:        h.timers.source,
		Timers:      h.timers,
	})
	t.Cleanup(h.session.Close)
	return h
}

// advance moves time forward and delivers one frame.
func (h *harness) advance(d time.Duration) {
	h.timers.Advance(d)
	h.scheduler.Step()
}

// finishPattern runs the current pattern to completion and through the transition.
func (h *harness) finishPattern(duration time.Duration) {
	h.advance(duration)
	h.timers.Advance(1500 * time.Millisecond)
	h.timers.Advance(500 * time.Millisecond)
}

func TestNewLoadsStatsAndSpeed(t *testing.T) {
	h := newHarness(t, map[string]string{
		KeyCompletedSessions: "7",
		KeyLastCompleted:     epoch.Add(-time.Hour).Format(time.RFC3339),
		KeyAnimationSpeed:    string(model.SpeedFast),
	})

	snapshot := h.session.Snapshot()
	assert.Equal(t, StateMenu, snapshot.State)
	assert.Equal(t, 7, snapshot.Stats.CompletedSessions)
	assert.True(t, snapshot.Stats.CompletedToday(epoch))
	assert.Equal(t, model.SpeedFast, snapshot.Speed)
	assert.Equal(t, pattern.VariantEysee, snapshot.Variant)
	assert.Equal(t, 4, snapshot.Total)
}

func TestNewIgnoresCorruptPreferences(t *testing.T) {
	h := newHarness(t, map[string]string{
		KeyCompletedSessions: "many",
		KeyLastCompleted:     "yesterday",
		KeyAnimationSpeed:    "warp",
	})

	stats := h.session.Stats()
	assert.Equal(t, 0, stats.CompletedSessions)
	assert.True(t, stats.LastCompleted.IsZero())
	assert.Equal(t, model.SpeedNormal, h.session.Speed())
}

func TestCountdownLeadsIntoFirstPattern(t *testing.T) {
	h := newHarness(t, nil)
	h.session.StartStretching()

	snapshot := h.session.Snapshot()
	require.Equal(t, StateCountdown, snapshot.State)
	assert.Equal(t, 3, snapshot.Countdown)

	h.timers.Advance(time.Second)
	assert.Equal(t, 2, h.session.Snapshot().Countdown)
	h.timers.Advance(time.Second)
	assert.Equal(t, 1, h.session.Snapshot().Countdown)
	h.timers.Advance(time.Second)
	assert.Equal(t, StateCountdown, h.session.Snapshot().State)
	assert.Equal(t, 3, h.feedback.count(model.FeedbackLightImpact))

	h.timers.Advance(time.Second)
	snapshot = h.session.Snapshot()
	assert.Equal(t, StateStretching, snapshot.State)
	assert.Equal(t, pattern.Figure8, snapshot.Pattern)
	assert.Equal(t, 0, snapshot.Cycle)
	assert.Equal(t, 4, h.feedback.count(model.FeedbackLightImpact))
	assert.Equal(t, 1, h.scheduler.Frames())
}

func TestFullSessionCompletesAndPersists(t *testing.T) {
	h := newHarness(t, nil)
	h.session.BeginStretching()

	expected := []pattern.ID{pattern.Figure8, pattern.Circle, pattern.Vertical, pattern.Diamond}
	for index, id := range expected {
		snapshot := h.session.Snapshot()
		require.Equal(t, StateStretching, snapshot.State, "pattern %d", index)
		assert.Equal(t, id, snapshot.Pattern)
		assert.Equal(t, index, snapshot.Cycle)

		h.advance(10 * time.Second)
		assert.InDelta(t, float64(index)+0.5, h.session.DisplayProgress(), 1e-9)

		h.advance(10 * time.Second)
		if index < len(expected)-1 {
			assert.Equal(t, StateTransition, h.session.Snapshot().State)
			assert.Equal(t, float64(index+1), h.session.DisplayProgress())
			h.timers.Advance(1500 * time.Millisecond)
			assert.Equal(t, StateTransition, h.session.Snapshot().State)
			h.timers.Advance(500 * time.Millisecond)
			continue
		}
		h.timers.Advance(1500 * time.Millisecond)
	}

	snapshot := h.session.Snapshot()
	assert.Equal(t, StateCompletion, snapshot.State)
	assert.Equal(t, 4.0, snapshot.DisplayProgress)
	assert.Equal(t, 1, snapshot.Stats.CompletedSessions)
	assert.Equal(t, 5, h.feedback.count(model.FeedbackSuccess))
	assert.Equal(t, 0, h.feedback.count(model.FeedbackMilestone))

	stored, ok := h.prefs.Get(KeyCompletedSessions)
	require.True(t, ok)
	assert.Equal(t, "1", stored)
	last, ok := h.prefs.Get(KeyLastCompleted)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339, last)
	require.NoError(t, err)
	assert.True(t, snapshot.Stats.CompletedToday(parsed))
}

func TestMilestoneEveryTenSessions(t *testing.T) {
	h := newHarness(t, map[string]string{KeyCompletedSessions: "9"})
	h.session.BeginStretching()
	for i := 0; i < 4; i++ {
		h.finishPattern(20 * time.Second)
	}

	assert.Equal(t, StateCompletion, h.session.Snapshot().State)
	assert.Equal(t, 10, h.session.Stats().CompletedSessions)
	assert.Equal(t, 1, h.feedback.count(model.FeedbackMilestone))
}

func TestFastSpeedHalvesPatternDuration(t *testing.T) {
	h := newHarness(t, map[string]string{KeyAnimationSpeed: string(model.SpeedFast)})
	h.session.BeginStretching()

	h.advance(5 * time.Second)
	assert.InDelta(t, 0.5, h.session.Snapshot().Progress, 1e-9)
	h.advance(5 * time.Second)
	assert.Equal(t, StateTransition, h.session.Snapshot().State)
}

func TestToggleSpeedKeepsMarkerInPlace(t *testing.T) {
	h := newHarness(t, nil)
	viewport := pattern.Viewport{Width: 400, Height: 800}
	h.session.BeginStretching()

	h.advance(10 * time.Second)
	before, visible := h.session.Position(viewport)
	require.True(t, visible)

	speed := h.session.ToggleSpeed()
	assert.Equal(t, model.SpeedFast, speed)
	after, visible := h.session.Position(viewport)
	require.True(t, visible)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	stored, _ := h.prefs.Get(KeyAnimationSpeed)
	assert.Equal(t, string(model.SpeedFast), stored)

	// Remaining half of the pattern now takes 5s instead of 10s.
	h.advance(4 * time.Second)
	assert.Equal(t, StateStretching, h.session.Snapshot().State)
	assert.InDelta(t, 0.9, h.session.Snapshot().Progress, 1e-9)
	h.advance(time.Second)
	assert.Equal(t, StateTransition, h.session.Snapshot().State)
}

func TestToggleSpeedOutsideExerciseOnlyPersists(t *testing.T) {
	h := newHarness(t, nil)
	events := h.session.Subscribe(4)

	h.session.ToggleSpeed()
	h.session.SetSpeed(model.SpeedFast)
	h.session.SetSpeed(model.SpeedNormal)

	assert.Equal(t, model.SpeedNormal, h.session.Speed())
	assert.Equal(t, StateMenu, h.session.Snapshot().State)
	assert.Equal(t, 0, h.scheduler.Frames())

	event := <-events
	assert.Equal(t, EventSpeedChange, event.Type)
	assert.Equal(t, model.SpeedFast, event.Speed)
}

func TestPauseFreezesPattern(t *testing.T) {
	h := newHarness(t, nil)
	viewport := pattern.Viewport{Width: 400, Height: 800}
	h.session.BeginStretching()
	h.advance(5 * time.Second)

	h.session.Pause()
	frozen, visible := h.session.Position(viewport)
	require.True(t, visible)
	assert.Equal(t, StatePaused, h.session.Snapshot().State)

	h.advance(time.Minute)
	assert.InDelta(t, 0.25, h.session.DisplayProgress(), 1e-9)
	still, _ := h.session.Position(viewport)
	assert.Equal(t, frozen, still)

	h.session.Resume()
	assert.Equal(t, StateStretching, h.session.Snapshot().State)
	h.advance(14 * time.Second)
	assert.Equal(t, StateStretching, h.session.Snapshot().State)
	h.advance(time.Second)
	assert.Equal(t, StateTransition, h.session.Snapshot().State)
}

func TestPauseOutsidePatternIsIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.session.Pause()
	assert.Equal(t, StateMenu, h.session.Snapshot().State)

	h.session.StartStretching()
	h.session.Pause()
	h.session.Resume()
	assert.Equal(t, StateCountdown, h.session.Snapshot().State)
}

func TestReturnToMenuCancelsPendingWork(t *testing.T) {
	h := newHarness(t, nil)
	h.session.StartStretching()
	h.timers.Advance(2 * time.Second)

	h.session.ReturnToMenu()
	h.timers.Advance(10 * time.Second)
	assert.Equal(t, StateMenu, h.session.Snapshot().State)
	assert.Equal(t, 0, h.scheduler.Frames())

	h.session.BeginStretching()
	h.advance(20 * time.Second)
	require.Equal(t, StateTransition, h.session.Snapshot().State)
	h.session.ReturnToMenu()
	h.timers.Advance(5 * time.Second)

	snapshot := h.session.Snapshot()
	assert.Equal(t, StateMenu, snapshot.State)
	assert.Equal(t, 0, snapshot.Stats.CompletedSessions)
}

func TestPositionHiddenOutsidePattern(t *testing.T) {
	h := newHarness(t, nil)
	viewport := pattern.Viewport{Width: 400, Height: 800}

	point, visible := h.session.Position(viewport)
	assert.False(t, visible)
	assert.Equal(t, viewport.Center(), point)

	h.session.BeginStretching()
	h.advance(20 * time.Second)
	_, visible = h.session.Position(viewport)
	assert.False(t, visible)
}

func TestGuidePathFollowsCurrentPattern(t *testing.T) {
	h := newHarness(t, nil)
	viewport := pattern.Viewport{Width: 400, Height: 800}
	assert.Nil(t, h.session.GuidePath(viewport, 16))

	h.session.BeginStretching()
	path := h.session.GuidePath(viewport, 16)
	require.Len(t, path, 17)
	assert.Equal(t, path[0], path[16])
}

func TestSetVariantAppliesToNextSession(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.session.SetVariant(pattern.VariantClassic))
	assert.Equal(t, pattern.VariantClassic, h.session.Snapshot().Variant)

	h.session.BeginStretching()
	require.NoError(t, h.session.SetVariant(pattern.VariantExtended))
	snapshot := h.session.Snapshot()
	assert.Equal(t, pattern.VariantClassic, snapshot.Variant)
	assert.Equal(t, pattern.Circle, snapshot.Pattern)

	h.session.ReturnToMenu()
	snapshot = h.session.Snapshot()
	assert.Equal(t, pattern.VariantExtended, snapshot.Variant)
	assert.Equal(t, 5, snapshot.Total)

	assert.ErrorIs(t, h.session.SetVariant("spiral"), pattern.ErrUnknownVariant)
}

func TestEventsAreEmitted(t *testing.T) {
	h := newHarness(t, nil)
	events := h.session.Subscribe(64)

	h.session.BeginStretching()
	h.advance(time.Second)
	h.advance(19 * time.Second)

	var types []EventType
	for len(events) > 0 {
		types = append(types, (<-events).Type)
	}
	assert.Equal(t, []EventType{EventStateChange, EventProgress, EventProgress, EventPatternComplete}, types)
}

func TestProgressEventsAreThrottled(t *testing.T) {
	h := newHarness(t, nil)
	events := h.session.Subscribe(64)
	h.session.BeginStretching()
	<-events

	for i := 0; i < 30; i++ {
		h.advance(time.Second / 60)
	}

	var progressEvents int
	for len(events) > 0 {
		if (<-events).Type == EventProgress {
			progressEvents++
		}
	}
	assert.Equal(t, 2, progressEvents)
}

func TestCloseClosesSubscribers(t *testing.T) {
	h := newHarness(t, nil)
	events := h.session.Subscribe(1)
	h.session.Close()

	_, open := <-events
	assert.False(t, open)
}

func TestCompletedToday(t *testing.T) {
	now := time.Date(2025, 6, 18, 23, 0, 0, 0, time.UTC)
	assert.False(t, Stats{}.CompletedToday(now))
	assert.True(t, Stats{LastCompleted: now.Add(-22 * time.Hour)}.CompletedToday(now))
	assert.False(t, Stats{LastCompleted: now.Add(-24 * time.Hour)}.CompletedToday(now))
}

func TestPhaseRetargetIsContinuous(t *testing.T) {
	p := phase{multiplier: 1}
	assert.Equal(t, 0.3, p.at(0.3))

	p = p.retarget(0.3, 2)
	assert.InDelta(t, 0.3, p.at(0.3), 1e-12)
	assert.InDelta(t, 1.7, p.at(1), 1e-12)

	p = p.retarget(0.5, 1)
	assert.InDelta(t, 0.7, p.at(0.5), 1e-12)
}

type recordingFeedback struct {
	mu    sync.Mutex
	kinds []model.FeedbackKind
}

func (feedback *recordingFeedback) Fire(kind model.FeedbackKind) {
	feedback.mu.Lock()
	defer feedback.mu.Unlock()
	feedback.kinds = append(feedback.kinds, kind)
}

func (feedback *recordingFeedback) count(kind model.FeedbackKind) int {
	feedback.mu.Lock()
	defer feedback.mu.Unlock()
	var n int
	for _, k := range feedback.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

// fakeTimers fires one-shot callbacks as Advance moves the shared time source.
type fakeTimers struct {
	mu      sync.Mutex
	source  *progresstest.Time
	pending []*fakeTimer
	nextID  int
}

type fakeTimer struct {
	owner    *fakeTimers
	id       int
	deadline time.Time
	fn       func()
}

func newFakeTimers(start time.Time) *fakeTimers {
	return &fakeTimers{source: progresstest.NewTime(start)}
}

func (timers *fakeTimers) Now() time.Time { return timers.source.Now() }

func (timers *fakeTimers) AfterFunc(d time.Duration, fn func()) Timer {
	timers.mu.Lock()
	defer timers.mu.Unlock()
	timer := &fakeTimer{owner: timers, id: timers.nextID, deadline: timers.source.Now().Add(d), fn: fn}
	timers.nextID++
	timers.pending = append(timers.pending, timer)
	return timer
}

// Advance moves time to now+d, firing due timers in deadline order.
func (timers *fakeTimers) Advance(d time.Duration) {
	target := timers.source.Now().Add(d)
	for {
		timers.mu.Lock()
		sort.SliceStable(timers.pending, func(i, j int) bool {
			a, b := timers.pending[i], timers.pending[j]
			if a.deadline.Equal(b.deadline) {
				return a.id < b.id
			}
			return a.deadline.Before(b.deadline)
		})
		var due *fakeTimer
		if len(timers.pending) > 0 && !timers.pending[0].deadline.After(target) {
			due = timers.pending[0]
			timers.pending = timers.pending[1:]
		}
		timers.mu.Unlock()

		if due == nil {
			break
		}
		if delta := due.deadline.Sub(timers.source.Now()); delta > 0 {
			timers.source.Advance(delta)
		}
		due.fn()
	}
	if delta := target.Sub(timers.source.Now()); delta > 0 {
		timers.source.Advance(delta)
	}
}

func (timer *fakeTimer) Stop() bool {
	timers := timer.owner
	timers.mu.Lock()
	defer timers.mu.Unlock()
	for index, pending := range timers.pending {
		if pending == timer {
			timers.pending = append(timers.pending[:index], timers.pending[index+1:]...)
			return true
		}
	}
	return false
}

func TestSetCountdownStepsAppliesToNextStart(t *testing.T) {
	h := newHarness(t, nil)

	h.session.SetCountdownSteps(5)
	h.session.StartStretching()
	assert.Equal(t, 5, h.session.Snapshot().Countdown)

	h.session.ReturnToMenu()
	h.session.SetCountdownSteps(0)
	h.session.StartStretching()
	assert.Equal(t, 3, h.session.Snapshot().Countdown)
}

func TestCloseStopsDefaultLoop(t *testing.T) {
	sess := New(model.DefaultSessionConfig(), Dependencies{})
	require.NotNil(t, sess.loop)
	sess.Close()

	ran := make(chan struct{})
	sess.loop.Do(func() { close(ran) })

	select {
	case <-ran:
		t.Fatal("default loop still running after Close")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestInjectedSchedulerIsNotOwned(t *testing.T) {
	h := newHarness(t, nil)

	assert.Nil(t, h.session.loop)
}

func TestRevisionChangesWithFormulas(t *testing.T) {
	h := newHarness(t, nil)
	start := h.session.Snapshot().Revision

	h.session.SetDeviceScale(0.7)
	scaled := h.session.Snapshot().Revision
	assert.NotEqual(t, start, scaled)

	h.session.SetDeviceScale(0.7)
	assert.Equal(t, scaled, h.session.Snapshot().Revision)

	require.NoError(t, h.session.SetVariant(pattern.VariantClassic))
	assert.NotEqual(t, scaled, h.session.Snapshot().Revision)
}
