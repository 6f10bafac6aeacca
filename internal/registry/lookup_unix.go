//go:build !windows

package registry

import (
	"fmt"
	"os"
	"path/filepath"
)

// Resolve finds the manifest for the named host in the platform's
// manifest directories.  Per-user directories take precedence over
// system-wide ones, matching the browser's lookup order.
func Resolve(name string) (*Manifest, error) {
	dirs, err := DefaultDirs()
	if err != nil {
		return nil, err
	}
	return ResolveIn(dirs, name)
}

// DefaultDirs returns the platform's manifest search path, per-user
// directories first.
func DefaultDirs() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	dirs := make([]string, 0, len(userSubDirs)+len(systemDirs))
	for _, sub := range userSubDirs {
		dirs = append(dirs, filepath.Join(home, sub))
	}
	dirs = append(dirs, systemDirs...)
	return dirs, nil
}
