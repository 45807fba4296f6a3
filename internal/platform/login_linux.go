//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (item *LoginItem) entryPath() (string, error) {
	dir := item.dir
	if dir == "" {
		configDir, err := ConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(configDir, "autostart")
	}
	return filepath.Join(dir, item.slug()+".desktop"), nil
}

func (item *LoginItem) enable() error {
	path, err := item.entryPath()
	if err != nil {
		return fmt.Errorf("enable login item: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("enable login item: %w", err)
	}
	if err := os.WriteFile(path, []byte(desktopEntry(item.appName, item.execPath)), 0o644); err != nil {
		return fmt.Errorf("enable login item: %w", err)
	}
	return nil
}

func (item *LoginItem) disable() error {
	path, err := item.entryPath()
	if err != nil {
		return fmt.Errorf("disable login item: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disable login item: %w", err)
	}
	return nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}

func desktopEntry(appName, execPath string) string {
	if strings.Contains(execPath, " ") && !strings.HasPrefix(execPath, `"`) {
		execPath = `"` + execPath + `"`
	}
	return fmt.Sprintf("[Desktop Entry]\nType=Application\nName=%s\nExec=%s\nX-GNOME-Autostart-enabled=true\nTerminal=false\n", appName, execPath)
}
