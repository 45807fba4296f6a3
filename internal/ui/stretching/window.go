package stretching

import (
	"time"

	"eyestretch/internal/core/session"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// Translator resolves localized strings.
type Translator interface {
	Translate(key string) string
	TranslateCount(key string, count int) string
}

// Config defines window behavior.
type Config struct {
	Title          string
	Fullscreen     bool
	MilestoneEvery int
	// Padding surrounds every screen; see platform.Margins.
	Padding fyne.Size
}

const (
	defaultWindowWidth  = float32(480)
	defaultWindowHeight = float32(820)
)

// Window shows the menu, countdown, exercise and completion screens of a session.
// All methods must run on the fyne main thread.
type Window struct {
	window     fyne.Window
	session    *session.Session
	text       Translator
	config     Config
	now        func() time.Time
	menu       *menuScreen
	countdown  *countdownScreen
	exercise   *exerciseScreen
	completion *completionScreen
	padding    *fyne.Container
	shown      fyne.CanvasObject
}

// New creates the stretching window for sess. The window hides instead of closing.
func New(app fyne.App, sess *session.Session, text Translator, config Config) *Window {
	if config.Title == "" {
		config.Title = "EyeStretch"
	}
	window := app.NewWindow(config.Title)
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	stretching := &Window{
		window:  window,
		session: sess,
		text:    text,
		config:  config,
		now:     time.Now,
	}
	stretching.menu = newMenuScreen(stretching)
	stretching.countdown = newCountdownScreen()
	stretching.exercise = newExerciseScreen(stretching)
	stretching.completion = newCompletionScreen(stretching)

	screens := container.NewStack(
		stretching.menu.root,
		stretching.countdown.root,
		stretching.exercise.root,
		stretching.completion.root,
	)
	stretching.padding = container.New(&paddedLayout{size: config.Padding}, screens)
	window.SetContent(stretching.padding)
	window.SetCloseIntercept(func() {
		sess.Cancel()
		stretching.Hide()
	})

	stretching.Refresh()
	stretching.applyWindowMode()
	return stretching
}

// Show displays the window.
func (stretching *Window) Show() {
	stretching.Refresh()
	stretching.applyWindowMode()
	stretching.window.Show()
	stretching.window.RequestFocus()
}

// Hide hides the window.
func (stretching *Window) Hide() {
	if stretching.config.Fullscreen {
		stretching.window.SetFullScreen(false)
	}
	stretching.window.Hide()
}

// SetTranslator switches the interface language.
func (stretching *Window) SetTranslator(text Translator) {
	stretching.text = text
	stretching.Refresh()
}

// SetOnAreaResize sets a handler called when the motion area changes size.
func (stretching *Window) SetOnAreaResize(handler func(fyne.Size)) {
	stretching.exercise.area.onResize = handler
}

// UpdateConfig applies new window settings.
func (stretching *Window) UpdateConfig(config Config) {
	if config.Title == "" {
		config.Title = stretching.config.Title
	}
	stretching.config = config
	stretching.window.SetTitle(config.Title)
	if padded, ok := stretching.padding.Layout.(*paddedLayout); ok {
		padded.size = config.Padding
		stretching.padding.Refresh()
	}
	stretching.applyWindowMode()
	stretching.Refresh()
}

// HandleEvent reacts to a session event.
func (stretching *Window) HandleEvent(event session.Event) {
	switch event.Type {
	case session.EventProgress:
		if stretching.shown == stretching.exercise.root {
			stretching.exercise.frame(event.Progress)
		}
	default:
		stretching.Refresh()
	}
}

// Frame advances the dot. Called once per rendered frame while a pattern runs.
func (stretching *Window) Frame() {
	if stretching.shown != stretching.exercise.root {
		return
	}
	stretching.exercise.frame(stretching.session.DisplayProgress())
}

// Refresh redraws the screen for the session's current state.
func (stretching *Window) Refresh() {
	snapshot := stretching.session.Snapshot()
	switch snapshot.State {
	case session.StateCountdown:
		stretching.countdown.update(snapshot, stretching.text)
		stretching.showScreen(stretching.countdown.root)
	case session.StateStretching, session.StateTransition, session.StatePaused:
		stretching.showScreen(stretching.exercise.root)
		stretching.exercise.update(snapshot, stretching.text)
	case session.StateCompletion:
		stretching.completion.update(snapshot, stretching.text, stretching.config.MilestoneEvery)
		stretching.showScreen(stretching.completion.root)
	default:
		stretching.menu.update(snapshot, stretching.text, stretching.now())
		stretching.showScreen(stretching.menu.root)
	}
}

// Screen reports which screen is showing: menu, countdown, exercise or completion.
func (stretching *Window) Screen() string {
	switch stretching.shown {
	case stretching.countdown.root:
		return "countdown"
	case stretching.exercise.root:
		return "exercise"
	case stretching.completion.root:
		return "completion"
	default:
		return "menu"
	}
}

func (stretching *Window) showScreen(screen fyne.CanvasObject) {
	if stretching.shown == screen {
		return
	}
	for _, candidate := range []fyne.CanvasObject{
		stretching.menu.root,
		stretching.countdown.root,
		stretching.exercise.root,
		stretching.completion.root,
	} {
		if candidate == screen {
			candidate.Show()
		} else {
			candidate.Hide()
		}
	}
	stretching.shown = screen
}

func (stretching *Window) applyWindowMode() {
	if stretching.config.Fullscreen {
		stretching.window.SetFullScreen(true)
		return
	}
	stretching.window.SetFullScreen(false)
	stretching.window.Resize(fyne.NewSize(defaultWindowWidth, defaultWindowHeight))
	stretching.window.CenterOnScreen()
}

// paddedLayout insets its single child by a fixed margin on each side.
type paddedLayout struct {
	size fyne.Size
}

func (layout *paddedLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	inner := fyne.NewSize(size.Width-2*layout.size.Width, size.Height-2*layout.size.Height)
	if inner.Width < 0 {
		inner.Width = 0
	}
	if inner.Height < 0 {
		inner.Height = 0
	}
	for _, object := range objects {
		object.Move(fyne.NewPos(layout.size.Width, layout.size.Height))
		object.Resize(inner)
	}
}

func (layout *paddedLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var minSize fyne.Size
	for _, object := range objects {
		minSize = minSize.Max(object.MinSize())
	}
	return minSize.Add(fyne.NewSize(2*layout.size.Width, 2*layout.size.Height))
}
