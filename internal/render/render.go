// Package render implements the bulk template mode: one user-supplied
// template is rendered once per project of the default manifest, with the
// project's remote identity and URLs as template variables, and the
// rendered chunks are appended to the output stream as-is.
package render

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/pullreqr/manifest-tool/internal/manifest"
	"github.com/pullreqr/manifest-tool/internal/subst"
)

// StdinPath is the sentinel template path selecting standard input.
const StdinPath = "-"

// LoadTemplate reads the whole template, from stdin when path is the
// sentinel "-".
func LoadTemplate(fs afero.Fs, path string, stdin io.Reader) (string, error) {
	if path == StdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read template from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return string(data), nil
}

// Run parses the default manifest at manifestPath and renders template
// once per project, in declaration order, writing the rendered bytes to
// out with no added separators. The first unresolved variable aborts the
// run: a template asking for push_url when the remote declares none is an
// authoring error, not something to skip.
func Run(fs afero.Fs, manifestPath, template string, out io.Writer) error {
	data, err := afero.ReadFile(fs, manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return err
	}
	m.SetDefaults()
	byName := m.RemotesByName()

	for _, project := range m.Projects {
		vars := subst.Vars{"project_name": project.Name}
		if project.Remote != "" {
			vars["remote_name"] = project.Remote
			// A dangling remote reference leaves the URL keys out of the
			// context rather than failing the project.
			if remote, ok := byName[project.Remote]; ok {
				vars["fetch_url"] = remote.Fetch
				if remote.PushURL != "" {
					vars["push_url"] = remote.PushURL
				}
			}
		}
		rendered, err := subst.Expand(template, vars)
		if err != nil {
			return fmt.Errorf("project %q: %w", project.Name, err)
		}
		if _, err := io.WriteString(out, rendered); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}
