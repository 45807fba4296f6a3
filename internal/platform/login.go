package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrLoginItemUnsupported is returned on systems without a known login mechanism.
var ErrLoginItemUnsupported = errors.New("launch at login unsupported")

// LoginItem registers the executable to start when the user logs in.
type LoginItem struct {
	appName  string
	execPath string
	// dir overrides the per-user registration directory.
	dir string
}

// NewLoginItem creates a login item for the running executable.
func NewLoginItem(appName string) (*LoginItem, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("login item executable: %w", err)
	}
	return &LoginItem{appName: appName, execPath: execPath}, nil
}

// Apply registers or removes the login item.
func (item *LoginItem) Apply(enabled bool) error {
	if strings.TrimSpace(item.appName) == "" {
		return fmt.Errorf("apply login item: app name is empty")
	}
	if !enabled {
		return item.disable()
	}
	if item.execPath == "" {
		return fmt.Errorf("apply login item: exec path is empty")
	}
	return item.enable()
}

// slug turns the app name into a file-system friendly identifier.
func (item *LoginItem) slug() string {
	name := strings.ToLower(strings.TrimSpace(item.appName))
	return strings.ReplaceAll(name, " ", "-")
}

// ConfigDir returns the per-user configuration directory.
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("config dir: %w", err)
		}
		return "", fmt.Errorf("config dir: %w", homeErr)
	}
	return fallbackConfigDir(homeDir), nil
}
