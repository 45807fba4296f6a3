//go:build !linux && !darwin && !windows

package platform

import "path/filepath"

func (item *LoginItem) enable() error { return ErrLoginItemUnsupported }

func (item *LoginItem) disable() error { return nil }

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}
