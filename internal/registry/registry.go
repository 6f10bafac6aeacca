// Package registry resolves native messaging hosts by name, using the
// manifest files that hosts register with the browser.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Manifest models the native messaging host manifest JSON.
//
// See the official Chrome documentation at:
// https://developer.chrome.com/docs/apps/nativeMessaging/#native-messaging-host
type Manifest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Path           string   `json:"path"`
	AllowedOrigins []string `json:"allowed_origins"`
	Typ            string   `json:"type"`
}

// manifestType is the (only supported) value for the "type" field in
// the manifest.
const manifestType = "stdio"

// ErrNotRegistered means no manifest for the requested host name was
// found in any of the searched directories.
var ErrNotRegistered = errors.New("native messaging host not registered")

var nameRe = regexp.MustCompile(`^([a-z0-9_]+)(\.[a-z0-9_]+)*$`)

// ValidName returns true if name is a well-formed native messaging host
// name: dot-separated runs of lowercase alphanumerics and underscores.
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

// ResolveIn finds the manifest for the named host in the given
// directories, in order.
func ResolveIn(dirs []string, name string) (*Manifest, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("invalid host name %q", name)
	}

	for _, dir := range dirs {
		m, err := load(filepath.Join(dir, name+".json"))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if m.Name != name {
			return nil, fmt.Errorf("manifest for %q names host %q", name, m.Name)
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
}

// load reads and validates one manifest file.
func load(path string) (*Manifest, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(buf, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if m.Typ != manifestType {
		return nil, fmt.Errorf("manifest %s has type %q, want %q", path, m.Typ, manifestType)
	}
	if m.Path == "" {
		return nil, fmt.Errorf("manifest %s has no host path", path)
	}
	return &m, nil
}
