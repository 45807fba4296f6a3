package main

import (
	"errors"
	"log"

	"eyestretch/internal/core/session"
	"eyestretch/internal/i18n"
	"eyestretch/internal/platform"
	"eyestretch/internal/storage"
	"eyestretch/internal/ui/animation"
	"eyestretch/internal/ui/preferences"
	"eyestretch/internal/ui/stretching"
	"eyestretch/internal/ui/tray"
	"eyestretch/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

const appName = "EyeStretch"

func main() {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			if err := platform.ActivateRunningInstance(appName); err != nil {
				log.Printf("single instance: %v", err)
			}
			return
		}
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID("com.eyestretch.app")
	fyneApp.SetIcon(resources.MustIcon("app.svg"))

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		log.Printf("load settings: %v", err)
	}
	store, err := storage.OpenStore(appName)
	if err != nil {
		log.Printf("open progress store: %v", err)
		store = storage.NewStore("")
	}
	text := loadTranslator(settings)

	loginItem, err := platform.NewLoginItem(appName)
	if err != nil {
		log.Printf("login item: %v", err)
	}
	if settings.LaunchAtLogin {
		// Rewrites the entry so it follows a moved executable.
		applyLoginItem(loginItem, true)
	}

	var feedback session.Feedback = platform.NopFeedback{}
	sound, err := platform.NewSoundFeedback()
	if err != nil {
		log.Printf("sound feedback: %v", err)
	} else {
		sound.SetEnabled(settings.SoundFeedback)
		feedback = sound
	}

	frames := animation.NewFrameScheduler()
	sess := session.New(settings.SessionConfig(), session.Dependencies{
		Preferences: store,
		Feedback:    feedback,
		Scheduler:   frames,
		Timers:      session.SystemTimers,
	})

	deviceClass := platform.CurrentDeviceClass(fyne.NewSize(480, 820))
	window := stretching.New(fyneApp, sess, text, windowConfig(settings, text, deviceClass))
	window.SetOnAreaResize(func(size fyne.Size) {
		sess.SetDeviceScale(platform.AreaScale(platform.CurrentDeviceClass(size)))
	})
	sess.SetOnFrame(window.Frame)

	var trayManager *tray.Manager
	prefsWindow := preferences.New(fyneApp, settings, text, func(updated preferences.Settings) {
		if err := storage.SaveSettings(appName, updated); err != nil {
			log.Printf("save settings: %v", err)
		}
		if updated.Language != settings.Language {
			text = loadTranslator(updated)
		}
		if updated.LaunchAtLogin != settings.LaunchAtLogin {
			applyLoginItem(loginItem, updated.LaunchAtLogin)
		}
		settings = updated

		if err := sess.SetVariant(settings.Variant); err != nil {
			log.Printf("set variant: %v", err)
		}
		sess.SetCountdownSteps(settings.CountdownSteps)
		if sound != nil {
			sound.SetEnabled(settings.SoundFeedback)
		}
		window.SetTranslator(text)
		window.UpdateConfig(windowConfig(settings, text, deviceClass))
		if trayManager != nil {
			trayManager.SetTranslator(text)
		}
	})

	quit := func() {
		sess.Close()
		fyneApp.Quit()
	}

	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager = tray.New(desktopApp, text, tray.Callbacks{
			OnStart: func() {
				window.Show()
				sess.StartStretching()
			},
			OnPreferences: func() {
				prefsWindow.SetTranslator(text)
				prefsWindow.Show()
			},
			OnQuit: quit,
		})
		trayManager.SetCompleted(sess.Stats().CompletedSessions)
		desktopApp.SetSystemTrayIcon(resources.MustIcon("tray.svg"))
	}

	go guard.Serve(func() {
		fyne.Do(window.Show)
	})

	events := sess.Subscribe(16)
	go func() {
		for event := range events {
			event := event
			fyne.Do(func() {
				handleEvent(event, window, trayManager)
			})
		}
	}()

	window.Show()
	fyneApp.Run()
}

func handleEvent(event session.Event, window *stretching.Window, trayManager *tray.Manager) {
	window.HandleEvent(event)
	if trayManager == nil {
		return
	}
	switch event.Type {
	case session.EventStateChange:
		trayManager.SetActive(event.State.Active())
	case session.EventSessionComplete:
		trayManager.SetCompleted(event.Completed)
	}
}

func applyLoginItem(item *platform.LoginItem, enabled bool) {
	if item == nil {
		return
	}
	if err := item.Apply(enabled); err != nil {
		log.Printf("launch at login: %v", err)
	}
}

func loadTranslator(settings preferences.Settings) *i18n.Translator {
	lang := settings.Language
	if lang == "" {
		lang = i18n.DetectLanguage()
	}
	text, err := i18n.New(resources.Locales(), lang)
	if err == nil {
		return text
	}
	log.Printf("load translator: %v", err)
	text, err = i18n.New(resources.Locales(), i18n.DefaultLanguage)
	if err != nil {
		log.Printf("load translator: %v", err)
	}
	return text
}

func windowConfig(settings preferences.Settings, text *i18n.Translator, class platform.DeviceClass) stretching.Config {
	horizontal, vertical := platform.Margins(class)
	return stretching.Config{
		Title:          text.Translate("menu_title"),
		Fullscreen:     settings.Fullscreen,
		MilestoneEvery: settings.SessionConfig().MilestoneEvery,
		Padding:        fyne.NewSize(horizontal, vertical),
	}
}
