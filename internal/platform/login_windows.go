//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const runKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (item *LoginItem) enable() error {
	path := `"` + strings.Trim(item.execPath, `"`) + `"`
	return runReg("enable login item", "add", runKey, "/v", item.appName, "/t", "REG_SZ", "/d", path, "/f")
}

func (item *LoginItem) disable() error {
	return runReg("disable login item", "delete", runKey, "/v", item.appName, "/f")
}

func runReg(action string, args ...string) error {
	output, err := exec.Command("reg", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", action, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}
