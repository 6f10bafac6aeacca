package registry

import (
	"errors"
	"fmt"

	winreg "golang.org/x/sys/windows/registry"
)

// Resolve finds the manifest for the named host via the Windows
// registry.  Chrome stores the manifest location as the default value
// of a per-host key; the current-user hive takes precedence over the
// local-machine hive, matching the browser's lookup order.
func Resolve(name string) (*Manifest, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("invalid host name %q", name)
	}

	keyPath := `Software\Google\Chrome\NativeMessagingHosts\` + name
	for _, root := range []winreg.Key{winreg.CURRENT_USER, winreg.LOCAL_MACHINE} {
		key, err := winreg.OpenKey(root, keyPath, winreg.QUERY_VALUE)
		if errors.Is(err, winreg.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("opening registry key for %s: %w", name, err)
		}
		path, _, err := key.GetStringValue("")
		key.Close()
		if err != nil {
			return nil, fmt.Errorf("reading registry key for %s: %w", name, err)
		}

		m, err := load(path)
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
