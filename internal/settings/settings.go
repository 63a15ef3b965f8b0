// Package settings loads the optional site settings file that relocates
// the checkout layout paths. Without a settings file the standard .repo
// layout is assumed.
package settings

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no explicit path is given,
// relative to the working tree root.
const DefaultPath = ".manifest-tool.yaml"

// Settings selects the manifest locations inside the working tree.
type Settings struct {
	// ManifestDir holds the upstream manifest files scanned by the
	// generation pipeline.
	ManifestDir string `yaml:"manifest_dir"`
	// LocalManifestDir receives the generated override manifests.
	LocalManifestDir string `yaml:"local_manifest_dir"`
	// DefaultManifest is the manifest used by the bulk template mode.
	DefaultManifest string `yaml:"default_manifest"`
}

// Default returns the standard .repo layout.
func Default() Settings {
	return Settings{
		ManifestDir:      ".repo/manifests",
		LocalManifestDir: ".repo/local_manifests",
		DefaultManifest:  ".repo/manifest.xml",
	}
}

// Load reads the settings file at path, filling unset fields from the
// defaults. A missing file yields the defaults; a malformed file is an
// error.
func Load(fs afero.Fs, path string) (Settings, error) {
	s := Default()
	data, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if s.ManifestDir == "" {
		s.ManifestDir = Default().ManifestDir
	}
	if s.LocalManifestDir == "" {
		s.LocalManifestDir = Default().LocalManifestDir
	}
	if s.DefaultManifest == "" {
		s.DefaultManifest = Default().DefaultManifest
	}
	return s, nil
}
