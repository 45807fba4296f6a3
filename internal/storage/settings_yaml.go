package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"eyestretch/internal/core/pattern"
	"eyestretch/internal/i18n"
	"eyestretch/internal/platform"
	"eyestretch/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const (
	settingsFileName = "settings.yaml"
	progressFileName = "progress.yaml"
)

type yamlSettings struct {
	Variant        string `yaml:"variant"`
	Language       string `yaml:"language"`
	SoundFeedback  *bool  `yaml:"sound_feedback"`
	CountdownSteps int    `yaml:"countdown_steps"`
	Fullscreen     bool   `yaml:"fullscreen"`
	LaunchAtLogin  bool   `yaml:"launch_at_login"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	configPath, err := resolveConfigPath(appName, settingsFileName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	return LoadSettingsFile(configPath)
}

// LoadSettingsFile reads user preferences from the YAML file at path.
func LoadSettingsFile(path string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()
	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := resolveConfigPath(appName, settingsFileName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(configPath, settings)
}

// SaveSettingsFile writes user preferences to the YAML file at path.
func SaveSettingsFile(path string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	sound := settings.SoundFeedback
	fileData := yamlSettings{
		Variant:        settings.Variant,
		Language:       settings.Language,
		SoundFeedback:  &sound,
		CountdownSteps: settings.CountdownSteps,
		Fullscreen:     settings.Fullscreen,
		LaunchAtLogin:  settings.LaunchAtLogin,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveConfigPath(appName, fileName string) (string, error) {
	configDir, err := platform.ConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return filepath.Join(configDir, appName, fileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if _, err := pattern.LookupVariant(fileData.Variant); err == nil {
		settings.Variant = fileData.Variant
	}
	if i18n.IsSupported(fileData.Language) {
		settings.Language = fileData.Language
	}
	if fileData.CountdownSteps >= preferences.MinCountdownSteps && fileData.CountdownSteps <= preferences.MaxCountdownSteps {
		settings.CountdownSteps = fileData.CountdownSteps
	}

	if fileData.SoundFeedback != nil {
		settings.SoundFeedback = *fileData.SoundFeedback
	}
	settings.Fullscreen = fileData.Fullscreen
	settings.LaunchAtLogin = fileData.LaunchAtLogin
}
