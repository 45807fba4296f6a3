package preferences

import (
	"eyestretch/internal/core/model"
	"eyestretch/internal/core/pattern"
)

// Countdown bounds accepted from the settings file and window.
const (
	MinCountdownSteps = 1
	MaxCountdownSteps = 10
)

// Settings defines editable user preferences.
type Settings struct {
	Variant string
	// Language is a supported language code. Empty follows the system locale.
	Language       string
	SoundFeedback  bool
	CountdownSteps int
	Fullscreen     bool
	LaunchAtLogin  bool
}

// DefaultSettings returns default settings for EyeStretch.
func DefaultSettings() Settings {
	return Settings{
		Variant:        pattern.DefaultVariant,
		Language:       "",
		SoundFeedback:  true,
		CountdownSteps: 3,
		Fullscreen:     false,
		LaunchAtLogin:  false,
	}
}

// SessionConfig converts settings to the session configuration.
func (settings Settings) SessionConfig() model.SessionConfig {
	config := model.DefaultSessionConfig()
	if settings.Variant != "" {
		config.Variant = settings.Variant
	}
	if settings.CountdownSteps >= MinCountdownSteps && settings.CountdownSteps <= MaxCountdownSteps {
		config.CountdownSteps = settings.CountdownSteps
	}
	return config
}
