package session

import (
	"log"
	"strconv"
	"sync"
	"time"

	"eyestretch/internal/core/model"
	"eyestretch/internal/core/pattern"
	"eyestretch/internal/core/progress"
)

// ProgressEventInterval throttles EventProgress emission.
const ProgressEventInterval = 250 * time.Millisecond

// Dependencies are the collaborators a Session drives.
type Dependencies struct {
	Preferences Preferences
	Feedback    Feedback
	Scheduler   progress.Scheduler
	Time        progress.TimeSource
	Timers      Timers
}

// Snapshot is a consistent read of the session for rendering.
type Snapshot struct {
	State           State
	Variant         string
	Pattern         pattern.ID
	Cycle           int
	Total           int
	Countdown       int
	Speed           model.Speed
	Progress        float64
	DisplayProgress float64
	Stats           Stats
	// Revision changes whenever the pattern formulas are rebuilt.
	Revision        uint64
}

// Session sequences countdown, patterns and completion for one user.
type Session struct {
	mu            sync.Mutex
	config        model.SessionConfig
	variant       pattern.Variant
	pendingVar    *pattern.Variant
	registry      *pattern.Registry
	revision      uint64
	scale         float64
	prefs         Preferences
	feedback      Feedback
	scheduler     progress.Scheduler
	loop          *progress.Loop
	timers        Timers
	clock         *progress.Clock
	state         State
	previousState State
	cycle         int
	current       pattern.ID
	countdown     int
	speed         model.Speed
	phase         phase
	pausedAt      float64
	stats         Stats
	timer         Timer
	token         uint64
	events        []chan Event
	onFrame       func()
	lastProgress  time.Time
}

// New creates a session in the menu state. Statistics and speed are read from the preferences.
func New(config model.SessionConfig, deps Dependencies) *Session {
	if deps.Preferences == nil {
		deps.Preferences = &memoryPreferences{values: make(map[string]string)}
	}
	if deps.Feedback == nil {
		deps.Feedback = nopFeedback{}
	}
	if deps.Timers == nil {
		deps.Timers = SystemTimers
	}
	var loop *progress.Loop
	if deps.Scheduler == nil {
		loop = progress.NewLoop(progress.DefaultFrameInterval)
		loop.Start()
		deps.Scheduler = loop
	}
	config = normalizeConfig(config)

	variant, err := pattern.LookupVariant(config.Variant)
	if err != nil {
		log.Printf("session variant: %v", err)
	}
	stats, speed := loadStats(deps.Preferences)

	session := &Session{
		config:    config,
		variant:   variant,
		scale:     1,
		prefs:     deps.Preferences,
		feedback:  deps.Feedback,
		scheduler: deps.Scheduler,
		loop:      loop,
		timers:    deps.Timers,
		clock:     progress.NewClock(deps.Scheduler, deps.Time),
		state:     StateMenu,
		speed:     speed,
		stats:     stats,
	}
	session.registry = variant.Registry(session.scale)
	session.clock.SetOnTick(session.handleTick)
	return session
}

// Subscribe registers a new observer channel.
func (session *Session) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	session.mu.Lock()
	session.events = append(session.events, ch)
	session.mu.Unlock()
	return ch
}

// SetOnFrame sets a handler run on the scheduling context after every clock tick.
func (session *Session) SetOnFrame(handler func()) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.onFrame = handler
}

// SetDeviceScale rebuilds the formulas for a new device area factor.
func (session *Session) SetDeviceScale(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if scale == session.scale {
		return
	}
	session.scale = scale
	session.registry = session.variant.Registry(scale)
	session.revision++
}

// SetVariant switches the pattern set. During an exercise the change applies to the next session.
func (session *Session) SetVariant(name string) error {
	variant, err := pattern.LookupVariant(name)
	if err != nil {
		return err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.state.Active() {
		session.pendingVar = &variant
		return nil
	}
	session.applyVariantLocked(variant)
	return nil
}

// SetCountdownSteps changes the countdown length used by the next StartStretching.
func (session *Session) SetCountdownSteps(steps int) {
	session.mu.Lock()
	defer session.mu.Unlock()
	config := session.config
	config.CountdownSteps = steps
	session.config = normalizeConfig(config)
}

// StartStretching enters the countdown.
func (session *Session) StartStretching() {
	session.mu.Lock()
	defer session.mu.Unlock()

	session.resetLocked()
	if session.pendingVar != nil {
		session.applyVariantLocked(*session.pendingVar)
		session.pendingVar = nil
	}
	session.state = StateCountdown
	session.countdown = session.config.CountdownSteps
	session.emitStateLocked(EventStateChange)
	session.emitStateLocked(EventCountdown)
	session.afterLocked(session.config.CountdownInterval, session.countdownStep)
}

// BeginStretching skips any remaining countdown and starts the first pattern.
func (session *Session) BeginStretching() {
	session.mu.Lock()
	defer session.mu.Unlock()

	session.resetLocked()
	session.cycle = 0
	session.current = session.variant.Sequence[0]
	session.state = StateStretching
	session.emitStateLocked(EventStateChange)
	session.startPatternLocked()
}

// ToggleSpeed flips between normal and fast. A running pattern continues from
// its current position at the new speed.
func (session *Session) ToggleSpeed() model.Speed {
	session.mu.Lock()
	defer session.mu.Unlock()

	session.speed = session.speed.Toggle()
	session.persistLocked(KeyAnimationSpeed, string(session.speed))
	session.feedback.Fire(model.FeedbackLightImpact)

	multiplier := session.multiplierLocked()
	switch session.state {
	case StateStretching:
		current := session.clock.Progress()
		session.phase = session.phase.retarget(current, multiplier)
		session.clock.Resume(current, session.variant.Duration(multiplier), session.completionLocked())
	case StatePaused:
		session.phase = session.phase.retarget(session.pausedAt, multiplier)
	}
	session.emitStateLocked(EventSpeedChange)
	return session.speed
}

// SetSpeed sets the speed level, retargeting a running pattern like ToggleSpeed.
func (session *Session) SetSpeed(speed model.Speed) {
	if !speed.Valid() {
		return
	}
	session.mu.Lock()
	same := session.speed == speed
	session.mu.Unlock()
	if !same {
		session.ToggleSpeed()
	}
}

// Pause freezes the current pattern, keeping its position.
func (session *Session) Pause() {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.state != StateStretching {
		return
	}
	session.pausedAt = session.clock.Progress()
	session.clock.Stop()
	session.previousState = session.state
	session.state = StatePaused
	session.emitStateLocked(EventStateChange)
}

// Resume continues a paused pattern from where it stopped.
func (session *Session) Resume() {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.state != StatePaused {
		return
	}
	session.state = session.previousState
	duration := session.variant.Duration(session.multiplierLocked())
	session.clock.Resume(session.pausedAt, duration, session.completionLocked())
	session.emitStateLocked(EventStateChange)
}

// ReturnToMenu abandons any exercise in progress.
func (session *Session) ReturnToMenu() {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.resetLocked()
	if session.pendingVar != nil {
		session.applyVariantLocked(*session.pendingVar)
		session.pendingVar = nil
	}
	session.state = StateMenu
	session.emitStateLocked(EventStateChange)
}

// Cancel stops the exercise and returns to the menu.
func (session *Session) Cancel() {
	session.ReturnToMenu()
}

// Close stops the session, its default scheduler loop if it created one, and closes observer channels.
func (session *Session) Close() {
	session.mu.Lock()
	session.resetLocked()
	events := session.events
	session.events = nil
	session.mu.Unlock()

	if session.loop != nil {
		session.loop.Stop()
	}
	for _, ch := range events {
		close(ch)
	}
}

// Position returns the marker position for viewport. The marker is hidden outside a running or paused pattern.
func (session *Session) Position(viewport pattern.Viewport) (pattern.Point, bool) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.state != StateStretching && session.state != StatePaused {
		return viewport.Center(), false
	}
	point, err := session.registry.Position(session.current, session.phaseLocked(), viewport)
	if err != nil {
		return point, false
	}
	return point, true
}

// GuidePath samples the current pattern for drawing its outline.
func (session *Session) GuidePath(viewport pattern.Viewport, steps int) []pattern.Point {
	session.mu.Lock()
	fn, ok := session.registry.Lookup(session.current)
	session.mu.Unlock()
	if !ok {
		return nil
	}
	return pattern.Sample(fn, viewport, steps)
}

// Snapshot returns the current session view.
func (session *Session) Snapshot() Snapshot {
	session.mu.Lock()
	defer session.mu.Unlock()
	return Snapshot{
		State:           session.state,
		Variant:         session.variant.Name,
		Pattern:         session.current,
		Cycle:           session.cycle,
		Total:           len(session.variant.Sequence),
		Countdown:       session.countdown,
		Speed:           session.speed,
		Progress:        session.progressLocked(),
		DisplayProgress: session.displayProgressLocked(),
		Stats:           session.stats,
		Revision:        session.revision,
	}
}

// DisplayProgress returns overall progress in pattern units: cycle plus the fraction of the current pattern.
func (session *Session) DisplayProgress() float64 {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.displayProgressLocked()
}

// Stats returns the persisted completion statistics.
func (session *Session) Stats() Stats {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.stats
}

// Speed returns the current speed level.
func (session *Session) Speed() model.Speed {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.speed
}

func (session *Session) countdownStep(token uint64) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if token != session.token || session.state != StateCountdown {
		return
	}

	session.feedback.Fire(model.FeedbackLightImpact)
	if session.countdown > 1 {
		session.countdown--
		session.emitStateLocked(EventCountdown)
		session.afterLocked(session.config.CountdownInterval, session.countdownStep)
		return
	}
	session.afterLocked(session.config.StartDelay, func(token uint64) {
		session.mu.Lock()
		current := token == session.token && session.state == StateCountdown
		session.mu.Unlock()
		if current {
			session.BeginStretching()
		}
	})
}

func (session *Session) startPatternLocked() {
	multiplier := session.multiplierLocked()
	session.phase = phase{multiplier: multiplier}
	session.feedback.Fire(model.FeedbackLightImpact)
	session.clock.Start(session.variant.Duration(multiplier), session.completionLocked())
}

// completionLocked returns the clock callback for the current token.
func (session *Session) completionLocked() func() {
	token := session.token
	return func() {
		session.completePattern(token)
	}
}

func (session *Session) completePattern(token uint64) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if token != session.token || session.state != StateStretching {
		return
	}

	session.state = StateTransition
	session.feedback.Fire(model.FeedbackSuccess)
	session.emitStateLocked(EventPatternComplete)
	session.afterLocked(session.config.TransitionHold, session.advance)
}

func (session *Session) advance(token uint64) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if token != session.token || session.state != StateTransition {
		return
	}

	next := session.cycle + 1
	if next >= len(session.variant.Sequence) {
		session.cycle = next
		session.completeSessionLocked()
		return
	}

	session.current = session.variant.Sequence[next]
	session.afterLocked(session.config.PatternGap, func(token uint64) {
		session.mu.Lock()
		defer session.mu.Unlock()
		if token != session.token || session.state != StateTransition {
			return
		}
		session.cycle = next
		session.state = StateStretching
		session.emitStateLocked(EventStateChange)
		session.startPatternLocked()
	})
}

func (session *Session) completeSessionLocked() {
	session.clock.Stop()
	session.stats.CompletedSessions++
	session.stats.LastCompleted = session.timers.Now()
	session.persistLocked(KeyCompletedSessions, strconv.Itoa(session.stats.CompletedSessions))
	session.persistLocked(KeyLastCompleted, session.stats.LastCompleted.Format(time.RFC3339))

	session.state = StateCompletion
	session.feedback.Fire(model.FeedbackSuccess)
	if every := session.config.MilestoneEvery; every > 0 && session.stats.CompletedSessions%every == 0 {
		session.feedback.Fire(model.FeedbackMilestone)
	}
	session.emitStateLocked(EventSessionComplete)
	session.emitStateLocked(EventStateChange)
}

func (session *Session) handleTick(float64) {
	session.mu.Lock()
	onFrame := session.onFrame
	now := session.timers.Now()
	if session.lastProgress.IsZero() || now.Sub(session.lastProgress) >= ProgressEventInterval {
		session.emitStateLocked(EventProgress)
		session.lastProgress = now
	}
	session.mu.Unlock()

	if onFrame != nil {
		onFrame()
	}
}

// afterLocked schedules fn on the scheduling context, tagged with the current token.
func (session *Session) afterLocked(delay time.Duration, fn func(token uint64)) {
	if session.timer != nil {
		session.timer.Stop()
	}
	token := session.token
	session.timer = session.timers.AfterFunc(delay, func() {
		session.scheduler.Do(func() {
			fn(token)
		})
	})
}

// resetLocked cancels timers and the clock and invalidates outstanding callbacks.
func (session *Session) resetLocked() {
	session.token++
	if session.timer != nil {
		session.timer.Stop()
		session.timer = nil
	}
	session.clock.Stop()
	session.countdown = 0
	session.pausedAt = 0
	session.phase = phase{multiplier: session.multiplierLocked()}
}

func (session *Session) applyVariantLocked(variant pattern.Variant) {
	session.variant = variant
	session.config.Variant = variant.Name
	session.registry = variant.Registry(session.scale)
	session.revision++
	session.cycle = 0
	session.current = ""
}

func (session *Session) multiplierLocked() float64 {
	return session.variant.Multiplier(session.speed == model.SpeedFast)
}

func (session *Session) progressLocked() float64 {
	switch session.state {
	case StatePaused:
		return session.pausedAt
	case StateStretching:
		return session.clock.Progress()
	case StateTransition, StateCompletion:
		return 1
	default:
		return 0
	}
}

func (session *Session) phaseLocked() float64 {
	return session.phase.at(session.progressLocked())
}

func (session *Session) displayProgressLocked() float64 {
	switch session.state {
	case StateStretching, StatePaused:
		return float64(session.cycle) + session.progressLocked()
	case StateTransition:
		return float64(session.cycle + 1)
	case StateCompletion:
		return float64(len(session.variant.Sequence))
	default:
		return 0
	}
}

func (session *Session) persistLocked(key, value string) {
	if err := session.prefs.Set(key, value); err != nil {
		log.Printf("save %s: %v", key, err)
	}
}

func (session *Session) emitStateLocked(eventType EventType) {
	session.emitLocked(Event{
		Type:      eventType,
		State:     session.state,
		Pattern:   session.current,
		Cycle:     session.cycle,
		Total:     len(session.variant.Sequence),
		Countdown: session.countdown,
		Speed:     session.speed,
		Progress:  session.displayProgressLocked(),
		Completed: session.stats.CompletedSessions,
		At:        session.timers.Now(),
	})
}

func (session *Session) emitLocked(event Event) {
	for _, ch := range session.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func normalizeConfig(config model.SessionConfig) model.SessionConfig {
	defaults := model.DefaultSessionConfig()
	if config.Variant == "" {
		config.Variant = defaults.Variant
	}
	if config.CountdownSteps <= 0 {
		config.CountdownSteps = defaults.CountdownSteps
	}
	if config.CountdownInterval <= 0 {
		config.CountdownInterval = defaults.CountdownInterval
	}
	if config.StartDelay < 0 {
		config.StartDelay = 0
	}
	if config.TransitionHold < 0 {
		config.TransitionHold = 0
	}
	if config.PatternGap < 0 {
		config.PatternGap = 0
	}
	return config
}
