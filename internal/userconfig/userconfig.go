// Package userconfig locates and reads the per-user config.env file. The
// file lives under the platform config directory (XDG on Linux) in the
// manifest-tool namespace and is read once at startup; the raw contents
// are threaded explicitly into the resolver rather than held as global
// state.
package userconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileName is the config file's name inside the manifest-tool directory.
const FileName = "config.env"

// Path returns the per-user config file path, e.g.
// ~/.config/manifest-tool/config.env on Linux.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "manifest-tool", FileName), nil
}

// Load reads the config file at path. A missing file is not an error: the
// config layer is simply absent and Load returns the empty string. Any
// other read failure is fatal.
func Load(fs afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
