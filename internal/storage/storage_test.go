package storage

import (
	"os"
	"path/filepath"
	"testing"

	"eyestretch/internal/ui/preferences"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsMissingFileReturnsDefaults(t *testing.T) {
	settings, err := LoadSettingsFile(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	saved := preferences.Settings{
		Variant:        "classic",
		Language:       "ja",
		SoundFeedback:  false,
		CountdownSteps: 5,
		Fullscreen:     true,
		LaunchAtLogin:  true,
	}
	require.NoError(t, SaveSettingsFile(path, saved))

	loaded, err := LoadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestLoadSettingsRejectsOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	raw := "variant: spiral\nlanguage: xx\ncountdown_steps: 40\nfullscreen: true\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	settings, err := LoadSettingsFile(path)
	require.NoError(t, err)

	defaults := preferences.DefaultSettings()
	assert.Equal(t, defaults.Variant, settings.Variant)
	assert.Equal(t, defaults.Language, settings.Language)
	assert.Equal(t, defaults.CountdownSteps, settings.CountdownSteps)
	assert.True(t, settings.SoundFeedback)
	assert.True(t, settings.Fullscreen)
}

func TestLoadSettingsInvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("variant: [unclosed"), 0o644))

	settings, err := LoadSettingsFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse settings yaml")
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestStorePersistsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.yaml")
	store, err := LoadStore(path)
	require.NoError(t, err)

	_, ok := store.Get("completed_sessions")
	assert.False(t, ok)

	require.NoError(t, store.Set("completed_sessions", "3"))
	require.NoError(t, store.Set("animation_speed", "fast_speed"))

	reopened, err := LoadStore(path)
	require.NoError(t, err)
	value, ok := reopened.Get("completed_sessions")
	require.True(t, ok)
	assert.Equal(t, "3", value)
	value, _ = reopened.Get("animation_speed")
	assert.Equal(t, "fast_speed", value)
}

func TestStoreReadsUnquotedScalars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.yaml")
	require.NoError(t, os.WriteFile(path, []byte("completed_sessions: 12\n"), 0o644))

	store, err := LoadStore(path)
	require.NoError(t, err)
	value, ok := store.Get("completed_sessions")
	require.True(t, ok)
	assert.Equal(t, "12", value)
}

func TestLoadStoreNullDocument(t *testing.T) {
	for _, document := range []string{"~\n", "null\n", ""} {
		path := filepath.Join(t.TempDir(), "progress.yaml")
		require.NoError(t, os.WriteFile(path, []byte(document), 0o644))

		store, err := LoadStore(path)
		require.NoError(t, err, document)
		_, ok := store.Get("completed_sessions")
		assert.False(t, ok, document)

		require.NotPanics(t, func() {
			require.NoError(t, store.Set("completed_sessions", "1"), document)
		}, document)
		value, _ := store.Get("completed_sessions")
		assert.Equal(t, "1", value, document)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewStore("")
	require.NoError(t, store.Set("k", "v"))
	value, ok := store.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", value)
}

func TestStoreKeepsValueWhenWriteFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	store := NewStore(filepath.Join(blocker, "progress.yaml"))
	err := store.Set("k", "v")
	require.Error(t, err)

	value, ok := store.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", value)
}
