//go:build darwin

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (item *LoginItem) label() string {
	return "com.eyestretch." + item.slug()
}

func (item *LoginItem) plistPath() (string, error) {
	dir := item.dir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(homeDir, "Library", "LaunchAgents")
	}
	return filepath.Join(dir, item.label()+".plist"), nil
}

func (item *LoginItem) enable() error {
	path, err := item.plistPath()
	if err != nil {
		return fmt.Errorf("enable login item: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("enable login item: %w", err)
	}
	if err := os.WriteFile(path, []byte(launchAgent(item.label(), item.execPath)), 0o644); err != nil {
		return fmt.Errorf("enable login item: %w", err)
	}
	return nil
}

func (item *LoginItem) disable() error {
	path, err := item.plistPath()
	if err != nil {
		return fmt.Errorf("disable login item: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disable login item: %w", err)
	}
	return nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "Library", "Application Support")
}

var plistEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")

func launchAgent(label, execPath string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`, plistEscaper.Replace(label), plistEscaper.Replace(execPath))
}
