package stretching

import (
	"fmt"
	"image/color"
	"strconv"
	"time"

	"eyestretch/internal/core/model"
	"eyestretch/internal/core/session"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// RecommendedPerDay is shown on the menu as the daily target.
const RecommendedPerDay = 3

var primaryText = color.NRGBA{R: 33, G: 37, B: 41, A: 255}

func newTitle(size float32) *canvas.Text {
	text := canvas.NewText("", primaryText)
	text.TextSize = size
	text.TextStyle = fyne.TextStyle{Bold: true}
	text.Alignment = fyne.TextAlignCenter
	return text
}

func setText(text *canvas.Text, value string) {
	if text.Text == value {
		return
	}
	text.Text = value
	text.Refresh()
}

type statCard struct {
	title *widget.Label
	value *canvas.Text
	root  fyne.CanvasObject
}

func newStatCard() *statCard {
	card := &statCard{
		title: widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{}),
		value: newTitle(20),
	}
	card.value.Color = mint
	card.root = container.NewVBox(card.value, card.title)
	return card
}

type menuScreen struct {
	title       *canvas.Text
	subtitle    *widget.Label
	completed   *statCard
	recent      *statCard
	recommended *statCard
	speed       *widget.RadioGroup
	speedDesc   *widget.Label
	start       *widget.Button
	speedByName map[string]model.Speed
	root        *fyne.Container
}

func newMenuScreen(window *Window) *menuScreen {
	screen := &menuScreen{
		title:       newTitle(30),
		subtitle:    widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{}),
		completed:   newStatCard(),
		recent:      newStatCard(),
		recommended: newStatCard(),
		speedDesc:   widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
	}
	screen.speed = widget.NewRadioGroup(nil, func(selected string) {
		if speed, ok := screen.speedByName[selected]; ok {
			window.session.SetSpeed(speed)
		}
	})
	screen.speed.Horizontal = true
	screen.speed.Required = true
	screen.start = widget.NewButton("", func() {
		window.session.StartStretching()
	})
	screen.start.Importance = widget.HighImportance

	stats := container.NewGridWithColumns(3, screen.completed.root, screen.recent.root, screen.recommended.root)
	screen.root = container.NewVBox(
		layout.NewSpacer(),
		screen.title,
		screen.subtitle,
		stats,
		container.NewCenter(screen.speed),
		screen.speedDesc,
		screen.start,
		layout.NewSpacer(),
	)
	return screen
}

func (screen *menuScreen) update(snapshot session.Snapshot, text Translator, now time.Time) {
	setText(screen.title, text.Translate("menu_title"))
	screen.subtitle.SetText(text.Translate("menu_subtitle"))

	screen.completed.title.SetText(text.Translate("completed_count"))
	setText(screen.completed.value, strconv.Itoa(snapshot.Stats.CompletedSessions)+text.Translate("count_unit"))

	screen.recent.title.SetText(text.Translate("recent_exercise"))
	recent := text.Translate("not_yet")
	if snapshot.Stats.CompletedToday(now) {
		recent = text.Translate("today")
	} else if !snapshot.Stats.LastCompleted.IsZero() {
		recent = snapshot.Stats.LastCompleted.In(now.Location()).Format("01/02")
	}
	setText(screen.recent.value, recent)

	screen.recommended.title.SetText(text.Translate("recommended_count"))
	setText(screen.recommended.value, strconv.Itoa(RecommendedPerDay)+text.Translate("times_per_day"))

	normal := text.Translate(string(model.SpeedNormal))
	fast := text.Translate(string(model.SpeedFast))
	screen.speedByName = map[string]model.Speed{normal: model.SpeedNormal, fast: model.SpeedFast}
	if len(screen.speed.Options) != 2 || screen.speed.Options[0] != normal || screen.speed.Options[1] != fast {
		screen.speed.Options = []string{normal, fast}
		screen.speed.Refresh()
	}
	selected := normal
	if snapshot.Speed == model.SpeedFast {
		selected = fast
	}
	if screen.speed.Selected != selected {
		screen.speed.SetSelected(selected)
	}
	screen.speedDesc.SetText(text.Translate(string(snapshot.Speed) + "_desc"))

	screen.start.SetText(text.Translate("start_exercise"))
}

type countdownScreen struct {
	number *canvas.Text
	hint   *widget.Label
	root   *fyne.Container
}

func newCountdownScreen() *countdownScreen {
	screen := &countdownScreen{
		number: newTitle(120),
		hint:   widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
	}
	screen.number.Color = mint
	screen.root = container.NewVBox(layout.NewSpacer(), screen.number, screen.hint, layout.NewSpacer())
	return screen
}

func (screen *countdownScreen) update(snapshot session.Snapshot, text Translator) {
	setText(screen.number, strconv.Itoa(snapshot.Countdown))
	screen.hint.SetText(text.Translate("get_ready"))
}

type exerciseScreen struct {
	area        *motionArea
	cycle       *canvas.Text
	name        *widget.Label
	description *widget.Label
	speed       *widget.Button
	pause       *widget.Button
	close       *widget.Button
	progress    *widget.ProgressBar
	root        *fyne.Container
}

func newExerciseScreen(window *Window) *exerciseScreen {
	screen := &exerciseScreen{
		area:        newMotionArea(window.session),
		cycle:       newTitle(22),
		name:        widget.NewLabel(""),
		description: widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		progress:    widget.NewProgressBar(),
	}
	screen.cycle.Alignment = fyne.TextAlignLeading
	screen.speed = widget.NewButton("", func() {
		window.session.ToggleSpeed()
	})
	screen.pause = widget.NewButton("", func() {
		if window.session.Snapshot().State == session.StatePaused {
			window.session.Resume()
			return
		}
		window.session.Pause()
	})
	screen.close = widget.NewButton("✕", func() {
		window.session.Cancel()
	})
	screen.progress.TextFormatter = func() string { return "" }

	heading := container.NewVBox(screen.cycle, screen.name)
	controls := container.NewHBox(screen.speed, screen.pause, screen.close)
	top := container.NewBorder(nil, screen.description, nil, controls, heading)
	screen.root = container.NewBorder(top, screen.progress, nil, nil, screen.area.root)
	return screen
}

func (screen *exerciseScreen) update(snapshot session.Snapshot, text Translator) {
	current := snapshot.Cycle + 1
	if current > snapshot.Total {
		current = snapshot.Total
	}
	setText(screen.cycle, fmt.Sprintf("%d/%d", current, snapshot.Total))

	patternName := text.Translate("pattern_" + string(snapshot.Pattern))
	speedName := text.Translate(string(snapshot.Speed))
	screen.name.SetText(patternName + " • " + speedName)
	screen.description.SetText(text.Translate("pattern_" + string(snapshot.Pattern) + "_desc"))
	screen.speed.SetText(speedName)

	switch snapshot.State {
	case session.StatePaused:
		screen.pause.SetText(text.Translate("resume_button"))
		screen.pause.Enable()
	case session.StateStretching:
		screen.pause.SetText(text.Translate("pause_button"))
		screen.pause.Enable()
	default:
		screen.pause.SetText(text.Translate("pause_button"))
		screen.pause.Disable()
	}

	screen.progress.Max = float64(snapshot.Total)
	screen.progress.SetValue(snapshot.DisplayProgress)
	screen.area.update(snapshot, text.Translate("pattern_complete"))
}

// frame moves the dot and the progress bar between session events.
func (screen *exerciseScreen) frame(displayProgress float64) {
	screen.area.moveDot()
	screen.progress.SetValue(displayProgress)
}

type completionScreen struct {
	title     *canvas.Text
	message   *widget.Label
	total     *widget.Label
	count     *canvas.Text
	milestone *widget.Label
	done      *widget.Button
	root      *fyne.Container
}

func newCompletionScreen(window *Window) *completionScreen {
	screen := &completionScreen{
		title:     newTitle(30),
		message:   widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{}),
		total:     widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{}),
		count:     newTitle(36),
		milestone: widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
	}
	screen.count.Color = mint
	screen.done = widget.NewButton("", func() {
		window.session.ReturnToMenu()
	})
	screen.done.Importance = widget.HighImportance
	screen.root = container.NewVBox(
		layout.NewSpacer(),
		screen.title,
		screen.message,
		screen.total,
		screen.count,
		screen.milestone,
		screen.done,
		layout.NewSpacer(),
	)
	return screen
}

func (screen *completionScreen) update(snapshot session.Snapshot, text Translator, milestoneEvery int) {
	setText(screen.title, text.Translate("exercise_complete"))
	screen.message.SetText(text.Translate("exercise_success_message"))
	screen.total.SetText(text.Translate("total_completed"))
	completed := snapshot.Stats.CompletedSessions
	setText(screen.count, strconv.Itoa(completed)+text.Translate("count_unit"))

	if milestoneEvery > 0 && completed > 0 && completed%milestoneEvery == 0 {
		screen.milestone.SetText(text.TranslateCount("milestone_message", completed))
		screen.milestone.Show()
	} else {
		screen.milestone.Hide()
	}
	screen.done.SetText(text.Translate("complete_button"))
}
