// Package overlay resolves the effective connection parameters for one
// remote from layered sources: the per-user config file first, then
// command-line overrides, both parameterized by the remote's name through
// placeholder substitution. The command line wins for any key present in
// both layers.
package overlay

import (
	"fmt"
	"strings"

	"github.com/pullreqr/manifest-tool/internal/manifest"
	"github.com/pullreqr/manifest-tool/internal/subst"
)

// Keys recognized in the resolved parameter map.
const (
	KeyPushURL        = "push_url"
	KeyFetchURL       = "fetch_url"
	KeyReviewURL      = "review_url"
	KeyReviewProtocol = "review_protocol"
)

// Overrides holds the command-line override values. An empty field means
// the flag was not supplied.
type Overrides struct {
	PushURL        string
	FetchURL       string
	ReviewURL      string
	ReviewProtocol string
}

// ConfigFormatError reports a config line that is not a key=value pair.
type ConfigFormatError struct {
	Line int
	Text string
}

func (e *ConfigFormatError) Error() string {
	return fmt.Sprintf("config line %d: %q is not a key=value pair", e.Line, e.Text)
}

// FetchRequiredError reports a remote whose resolved parameters carry no
// fetch URL. A local override without a fetch URL would be silently
// unusable, so this fails the whole manifest file.
type FetchRequiredError struct {
	Remote string
}

func (e *FetchRequiredError) Error() string {
	return fmt.Sprintf("remote %q: no fetch_url in config file or flags", e.Remote)
}

// parseEnv splits text into key=value pairs, one per line. The first =
// delimits key from value; values may contain further = characters. Blank
// lines are skipped; any other line without = is a format error.
func parseEnv(text string) (map[string]string, error) {
	params := make(map[string]string)
	for i, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, &ConfigFormatError{Line: i + 1, Text: line}
		}
		params[key] = value
	}
	return params, nil
}

// Resolve produces the override Remote for remoteName from the raw
// config-file text and the command-line overrides. Resolution is a pure
// function of its inputs: same triple, same result.
func Resolve(remoteName, configText string, ov Overrides) (manifest.Remote, error) {
	vars := subst.Vars{"remote_name": remoteName}

	expanded, err := subst.Expand(configText, vars)
	if err != nil {
		return manifest.Remote{}, fmt.Errorf("remote %q: config file: %w", remoteName, err)
	}
	params, err := parseEnv(expanded)
	if err != nil {
		return manifest.Remote{}, err
	}

	for key, value := range map[string]string{
		KeyPushURL:        ov.PushURL,
		KeyFetchURL:       ov.FetchURL,
		KeyReviewURL:      ov.ReviewURL,
		KeyReviewProtocol: ov.ReviewProtocol,
	} {
		if value == "" {
			continue
		}
		expanded, err := subst.Expand(value, vars)
		if err != nil {
			return manifest.Remote{}, fmt.Errorf("remote %q: flag %s: %w", remoteName, key, err)
		}
		params[key] = expanded
	}

	if params[KeyFetchURL] == "" {
		return manifest.Remote{}, &FetchRequiredError{Remote: remoteName}
	}

	remote := manifest.Remote{
		Name:      remoteName,
		Fetch:     params[KeyFetchURL],
		PushURL:   params[KeyPushURL],
		Review:    params[KeyReviewURL],
		ForceAuth: true,
	}
	if proto := params[KeyReviewProtocol]; proto != "" {
		parsed, err := manifest.ParseReviewProtocol(proto)
		if err != nil {
			return manifest.Remote{}, fmt.Errorf("remote %q: %w", remoteName, err)
		}
		remote.ReviewProtocol = parsed
	}
	return remote, nil
}
