// Package manifest models git-repo style checkout manifests: named remotes
// grouping fetch/push/review endpoints, projects bound to those remotes,
// and manifest-level defaults. It owns the XML wire form used both for
// reading upstream manifests and for writing local override fragments.
package manifest

import (
	"encoding/xml"
	"fmt"
)

// Manifest is one parsed manifest document. Remotes and Projects keep
// their declaration order.
type Manifest struct {
	XMLName  struct{}  `xml:"manifest"`
	Default  *Default  `xml:"default,omitempty"`
	Remotes  []Remote  `xml:"remote"`
	Projects []Project `xml:"project"`
}

// Default carries the manifest-level defaults applied to projects that do
// not name their own remote or revision.
type Default struct {
	Remote   string `xml:"remote,attr,omitempty"`
	Revision string `xml:"revision,attr,omitempty"`
}

// Remote is a named upstream endpoint. ForceAuth marks a remote as a
// local override when written into a local manifest fragment.
type Remote struct {
	Name           string         `xml:"name,attr"`
	Alias          string         `xml:"alias,attr,omitempty"`
	Fetch          string         `xml:"fetch,attr"`
	PushURL        string         `xml:"pushurl,attr,omitempty"`
	Review         string         `xml:"review,attr,omitempty"`
	Revision       string         `xml:"revision,attr,omitempty"`
	ReviewProtocol ReviewProtocol `xml:"reviewprotocol,attr,omitempty"`
	ForceAuth      bool           `xml:"forceauth,attr,omitempty"`
}

// Project is a repository entry bound to a remote. An empty Remote means
// "use the manifest default remote" until SetDefaults has run.
type Project struct {
	Name     string `xml:"name,attr"`
	Path     string `xml:"path,attr,omitempty"`
	Remote   string `xml:"remote,attr,omitempty"`
	Revision string `xml:"revision,attr,omitempty"`
	Groups   string `xml:"groups,attr,omitempty"`
}

// ReviewProtocol is the closed set of protocols a review endpoint may
// declare. Parsing rejects anything outside the set so configuration
// typos surface immediately.
type ReviewProtocol string

const (
	ProtocolGerrit ReviewProtocol = "gerrit"
	ProtocolSSH    ReviewProtocol = "ssh"
	ProtocolHTTP   ReviewProtocol = "http"
	ProtocolHTTPS  ReviewProtocol = "https"
)

// ParseReviewProtocol converts text into a ReviewProtocol, failing on
// unrecognized values.
func ParseReviewProtocol(s string) (ReviewProtocol, error) {
	switch p := ReviewProtocol(s); p {
	case ProtocolGerrit, ProtocolSSH, ProtocolHTTP, ProtocolHTTPS:
		return p, nil
	}
	return "", fmt.Errorf("unknown review protocol %q", s)
}

// UnmarshalXMLAttr validates the protocol while decoding, so a manifest
// carrying a bad reviewprotocol attribute fails at parse time.
func (p *ReviewProtocol) UnmarshalXMLAttr(attr xml.Attr) error {
	parsed, err := ParseReviewProtocol(attr.Value)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Parse decodes a manifest XML document.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Marshal encodes the manifest with tab indentation and a trailing
// newline. Encoding is deterministic: equal manifests produce identical
// bytes.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := xml.MarshalIndent(m, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// SetDefaults fills each project's missing remote and revision from the
// manifest-level default. Call before reading projects.
func (m *Manifest) SetDefaults() {
	if m.Default == nil {
		return
	}
	for i := range m.Projects {
		if m.Projects[i].Remote == "" {
			m.Projects[i].Remote = m.Default.Remote
		}
		if m.Projects[i].Revision == "" {
			m.Projects[i].Revision = m.Default.Revision
		}
	}
}

// RemotesByName builds a name → Remote lookup over the manifest's remotes.
func (m *Manifest) RemotesByName() map[string]Remote {
	byName := make(map[string]Remote, len(m.Remotes))
	for _, r := range m.Remotes {
		byName[r.Name] = r
	}
	return byName
}

// LocalManifest builds the override fragment containing only the given
// remotes: no projects, no defaults. The host checkout tool layers it
// over the upstream manifest.
func LocalManifest(remotes []Remote) *Manifest {
	return &Manifest{Remotes: remotes}
}
