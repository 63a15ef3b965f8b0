// Package generate implements the local-manifest generation pipeline:
// every manifest file found in the manifest directory is parsed, each of
// its remotes is resolved through the config overlay, and an override
// fragment containing only the rewritten remotes is written to the
// local-manifests directory under the same file name.
package generate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/pullreqr/manifest-tool/internal/manifest"
	"github.com/pullreqr/manifest-tool/internal/overlay"
)

// Pipeline holds the inputs for one generation run. ConfigText is the raw
// per-user config.env contents, loaded once at startup.
type Pipeline struct {
	FS          afero.Fs
	ManifestDir string
	OutDir      string
	ConfigText  string
	Overrides   overlay.Overrides
	Log         *slog.Logger
}

// Run processes every .xml file in ManifestDir, in directory order. The
// first failure of any kind aborts the whole run: a partially applied
// override set is worse than none, so sibling files are not attempted
// after an error.
func (p *Pipeline) Run() error {
	entries, err := afero.ReadDir(p.FS, p.ManifestDir)
	if os.IsNotExist(err) {
		// No manifest directory means nothing to rewrite, not a failure:
		// the tool may run before the checkout has been initialized.
		if p.Log != nil {
			p.Log.Debug("manifest dir absent, nothing to do", "dir", p.ManifestDir)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read manifest dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".xml" {
			continue
		}
		if err := p.processFile(entry.Name()); err != nil {
			return fmt.Errorf("%s: %w", entry.Name(), err)
		}
	}
	return nil
}

// processFile rewrites one manifest file into its local override
// fragment. Remote order is preserved, so unchanged inputs produce
// byte-identical output.
func (p *Pipeline) processFile(name string) error {
	data, err := afero.ReadFile(p.FS, filepath.Join(p.ManifestDir, name))
	if err != nil {
		return err
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return err
	}

	remotes := make([]manifest.Remote, 0, len(m.Remotes))
	for _, r := range m.Remotes {
		resolved, err := overlay.Resolve(r.Name, p.ConfigText, p.Overrides)
		if err != nil {
			return err
		}
		remotes = append(remotes, resolved)
	}

	out, err := manifest.LocalManifest(remotes).Marshal()
	if err != nil {
		return err
	}
	if err := p.FS.MkdirAll(p.OutDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", p.OutDir, err)
	}
	target := filepath.Join(p.OutDir, name)
	if err := afero.WriteFile(p.FS, target, out, 0644); err != nil {
		return err
	}
	if p.Log != nil {
		p.Log.Debug("wrote local manifest", "source", name, "target", target, "remotes", len(remotes))
	}
	return nil
}
