package tray

import (
	"fmt"
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApp struct {
	menus []*fyne.Menu
}

func (app *fakeApp) SetSystemTrayMenu(menu *fyne.Menu) {
	app.menus = append(app.menus, menu)
}

type keyTranslator struct{}

func (keyTranslator) Translate(key string) string { return key }

func (keyTranslator) TranslateCount(key string, count int) string {
	return fmt.Sprintf("%s:%d", key, count)
}

type upperTranslator struct{ keyTranslator }

func (upperTranslator) Translate(key string) string { return "T " + key }

func labels(menu *fyne.Menu) []string {
	var result []string
	for _, item := range menu.Items {
		if item.IsSeparator {
			continue
		}
		result = append(result, item.Label)
	}
	return result
}

func TestNewInstallsMenu(t *testing.T) {
	app := &fakeApp{}
	manager := New(app, keyTranslator{}, Callbacks{})

	require.Len(t, app.menus, 1)
	assert.Same(t, manager.Menu(), app.menus[0])
	assert.Equal(t, []string{"tray_status:0", "tray_start", "tray_preferences", "tray_quit"}, labels(manager.Menu()))
	assert.True(t, manager.statusItem.Disabled)
}

func TestCallbacksFire(t *testing.T) {
	var started, prefs, quit int
	manager := New(&fakeApp{}, keyTranslator{}, Callbacks{
		OnStart:       func() { started++ },
		OnPreferences: func() { prefs++ },
		OnQuit:        func() { quit++ },
	})

	manager.startItem.Action()
	manager.prefsItem.Action()
	manager.quitItem.Action()

	assert.Equal(t, 1, started)
	assert.Equal(t, 1, prefs)
	assert.Equal(t, 1, quit)
}

func TestNilCallbacksAreIgnored(t *testing.T) {
	manager := New(&fakeApp{}, keyTranslator{}, Callbacks{})

	assert.NotPanics(t, func() {
		manager.startItem.Action()
		manager.prefsItem.Action()
		manager.quitItem.Action()
	})
}

func TestSetCompletedUpdatesStatus(t *testing.T) {
	app := &fakeApp{}
	manager := New(app, keyTranslator{}, Callbacks{})

	manager.SetCompleted(4)
	manager.SetCompleted(4)

	assert.Len(t, app.menus, 2)
	assert.Equal(t, "tray_status:4", manager.statusItem.Label)
}

func TestSetActiveDisablesStart(t *testing.T) {
	manager := New(&fakeApp{}, keyTranslator{}, Callbacks{})

	manager.SetActive(true)
	assert.True(t, manager.startItem.Disabled)

	manager.SetActive(false)
	assert.False(t, manager.startItem.Disabled)
}

func TestSetTranslatorRelabels(t *testing.T) {
	manager := New(&fakeApp{}, keyTranslator{}, Callbacks{})

	manager.SetTranslator(upperTranslator{})

	assert.Equal(t, "T menu_title", manager.Menu().Label)
	assert.Equal(t, "T tray_start", manager.startItem.Label)
	assert.Equal(t, "tray_status:0", manager.statusItem.Label)
}

func TestNilAppIsAllowed(t *testing.T) {
	manager := New(nil, keyTranslator{}, Callbacks{})

	assert.NotNil(t, manager.Menu())
}
