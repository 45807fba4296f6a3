package tray

import (
	"fyne.io/fyne/v2"
)

// App is the part of desktop.App the tray needs.
type App interface {
	SetSystemTrayMenu(menu *fyne.Menu)
}

// Translator resolves localized strings.
type Translator interface {
	Translate(key string) string
	TranslateCount(key string, count int) string
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnStart       func()
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app        App
	text       Translator
	callbacks  Callbacks
	statusItem *fyne.MenuItem
	startItem  *fyne.MenuItem
	prefsItem  *fyne.MenuItem
	quitItem   *fyne.MenuItem
	completed  int
	active     bool
	menu       *fyne.Menu
}

// New creates a tray manager with the provided callbacks.
func New(app App, text Translator, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		text:      text,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true
	manager.startItem = fyne.NewMenuItem("", func() {
		if manager.callbacks.OnStart != nil {
			manager.callbacks.OnStart()
		}
	})
	manager.prefsItem = fyne.NewMenuItem("", func() {
		if manager.callbacks.OnPreferences != nil {
			manager.callbacks.OnPreferences()
		}
	})
	manager.quitItem = fyne.NewMenuItem("", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})
	manager.quitItem.IsQuit = true

	manager.refreshMenu()
	return manager
}

// SetTranslator switches the menu language.
func (manager *Manager) SetTranslator(text Translator) {
	manager.text = text
	manager.refreshMenu()
}

// SetCompleted updates the completed session count in the status line.
func (manager *Manager) SetCompleted(completed int) {
	if completed == manager.completed {
		return
	}
	manager.completed = completed
	manager.refreshMenu()
}

// SetActive disables the start item while an exercise is underway.
func (manager *Manager) SetActive(active bool) {
	if active == manager.active {
		return
	}
	manager.active = active
	manager.refreshMenu()
}

// Menu returns the menu currently installed in the tray.
func (manager *Manager) Menu() *fyne.Menu {
	return manager.menu
}

func (manager *Manager) refreshMenu() {
	manager.statusItem.Label = manager.text.TranslateCount("tray_status", manager.completed)
	manager.startItem.Label = manager.text.Translate("tray_start")
	manager.startItem.Disabled = manager.active
	manager.prefsItem.Label = manager.text.Translate("tray_preferences")
	manager.quitItem.Label = manager.text.Translate("tray_quit")

	manager.menu = fyne.NewMenu(manager.text.Translate("menu_title"),
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.startItem,
		manager.prefsItem,
		fyne.NewMenuItemSeparator(),
		manager.quitItem,
	)
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.menu)
	}
}
