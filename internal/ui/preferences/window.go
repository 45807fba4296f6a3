package preferences

import (
	"strconv"

	"eyestretch/internal/core/pattern"
	"eyestretch/internal/i18n"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Translator resolves localized strings.
type Translator interface {
	Translate(key string) string
}

// Window handles the preferences UI.
type Window struct {
	window     fyne.Window
	settings   Settings
	text       Translator
	onSave     func(Settings)
	labels     map[string]*widget.Label
	variant    *widget.Select
	language   *widget.Select
	sound      *widget.Check
	countdown  *widget.Entry
	fullscreen *widget.Check
	login      *widget.Check
	save       *widget.Button
	cancel     *widget.Button
	variants   []string
	languages  []string
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, text Translator, onSave func(Settings)) *Window {
	window := app.NewWindow("")

	prefs := &Window{
		window:    window,
		settings:  settings,
		text:      text,
		onSave:    onSave,
		variants:  pattern.VariantNames(),
		languages: append([]string{""}, i18n.Supported()...),
		labels: map[string]*widget.Label{
			"settings_variant":   widget.NewLabel(""),
			"settings_language":  widget.NewLabel(""),
			"settings_countdown": widget.NewLabel(""),
		},
		variant:    widget.NewSelect(nil, nil),
		language:   widget.NewSelect(nil, nil),
		sound:      widget.NewCheck("", nil),
		countdown:  widget.NewEntry(),
		fullscreen: widget.NewCheck("", nil),
		login:      widget.NewCheck("", nil),
	}

	form := container.NewVBox(
		prefs.labels["settings_variant"],
		prefs.variant,
		prefs.labels["settings_language"],
		prefs.language,
		container.NewHBox(prefs.labels["settings_countdown"], prefs.countdown),
		prefs.sound,
		prefs.fullscreen,
		prefs.login,
	)

	prefs.save = widget.NewButton("", prefs.handleSave)
	prefs.save.Importance = widget.HighImportance
	prefs.cancel = widget.NewButton("", func() {
		window.Hide()
	})
	buttons := container.NewHBox(prefs.save, layout.NewSpacer(), prefs.cancel)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(380, 400))
	window.SetCloseIntercept(window.Hide)

	prefs.applyText()
	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// SetTranslator switches the window language.
func (prefs *Window) SetTranslator(text Translator) {
	prefs.text = text
	prefs.applyText()
	prefs.UpdateSettings(prefs.settings)
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.variant.SetSelectedIndex(indexOf(prefs.variants, settings.Variant))
	prefs.language.SetSelectedIndex(indexOf(prefs.languages, settings.Language))
	prefs.countdown.SetText(strconv.Itoa(settings.CountdownSteps))
	prefs.sound.SetChecked(settings.SoundFeedback)
	prefs.fullscreen.SetChecked(settings.Fullscreen)
	prefs.login.SetChecked(settings.LaunchAtLogin)
}

func (prefs *Window) applyText() {
	prefs.window.SetTitle(prefs.text.Translate("settings_title"))
	for key, label := range prefs.labels {
		label.SetText(prefs.text.Translate(key))
	}

	variantNames := make([]string, len(prefs.variants))
	for index, name := range prefs.variants {
		variantNames[index] = prefs.text.Translate("variant_" + name)
	}
	prefs.variant.Options = variantNames

	languageNames := make([]string, len(prefs.languages))
	for index, code := range prefs.languages {
		if code == "" {
			languageNames[index] = prefs.text.Translate("settings_language_auto")
			continue
		}
		languageNames[index] = i18n.DisplayName(code)
	}
	prefs.language.Options = languageNames

	prefs.sound.Text = prefs.text.Translate("settings_sound")
	prefs.sound.Refresh()
	prefs.fullscreen.Text = prefs.text.Translate("settings_fullscreen")
	prefs.fullscreen.Refresh()
	prefs.login.Text = prefs.text.Translate("settings_launch_at_login")
	prefs.login.Refresh()
	prefs.save.SetText(prefs.text.Translate("save_button"))
	prefs.cancel.SetText(prefs.text.Translate("cancel_button"))
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if index := prefs.variant.SelectedIndex(); index >= 0 {
		settings.Variant = prefs.variants[index]
	}
	if index := prefs.language.SelectedIndex(); index >= 0 {
		settings.Language = prefs.languages[index]
	}
	if steps, ok := parseCountdown(prefs.countdown.Text); ok {
		settings.CountdownSteps = steps
	}
	settings.SoundFeedback = prefs.sound.Checked
	settings.Fullscreen = prefs.fullscreen.Checked
	settings.LaunchAtLogin = prefs.login.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parseCountdown(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < MinCountdownSteps || parsed > MaxCountdownSteps {
		return 0, false
	}
	return parsed, true
}

func indexOf(values []string, value string) int {
	for index, candidate := range values {
		if candidate == value {
			return index
		}
	}
	return 0
}
