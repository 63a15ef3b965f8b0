package generate

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/pullreqr/manifest-tool/internal/overlay"
)

const upstream = `<manifest>
	<remote name="origin" fetch="https://upstream.example/origin"/>
	<remote name="aosp" fetch="https://upstream.example/aosp"/>
	<default remote="origin"/>
	<project name="app"/>
</manifest>
`

func newPipeline(fs afero.Fs, config string, ov overlay.Overrides) *Pipeline {
	return &Pipeline{
		FS:          fs,
		ManifestDir: ".repo/manifests",
		OutDir:      ".repo/local_manifests",
		ConfigText:  config,
		Overrides:   ov,
	}
}

func TestRun_WritesOverrideFragment(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, ".repo/manifests/default.xml", []byte(upstream), 0644)

	p := newPipeline(fs, "fetch_url=https://mirror.example/${remote_name}\npush_url=ssh://mirror.example/${remote_name}\n", overlay.Overrides{})
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out, err := afero.ReadFile(fs, ".repo/local_manifests/default.xml")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "<manifest>\n" +
		"\t<remote name=\"origin\" fetch=\"https://mirror.example/origin\" pushurl=\"ssh://mirror.example/origin\" forceauth=\"true\"></remote>\n" +
		"\t<remote name=\"aosp\" fetch=\"https://mirror.example/aosp\" pushurl=\"ssh://mirror.example/aosp\" forceauth=\"true\"></remote>\n" +
		"</manifest>\n"
	if string(out) != want {
		t.Errorf("output mismatch:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestRun_Idempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, ".repo/manifests/default.xml", []byte(upstream), 0644)
	p := newPipeline(fs, "fetch_url=https://m.example/${remote_name}\n", overlay.Overrides{})

	if err := p.Run(); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _ := afero.ReadFile(fs, ".repo/local_manifests/default.xml")

	if err := p.Run(); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, _ := afero.ReadFile(fs, ".repo/local_manifests/default.xml")

	if string(first) != string(second) {
		t.Errorf("reruns differ:\nfirst:  %q\nsecond: %q", first, second)
	}
}

func TestRun_SkipsNonXML(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, ".repo/manifests/README.md", []byte("not a manifest"), 0644)
	afero.WriteFile(fs, ".repo/manifests/default.xml", []byte(upstream), 0644)

	p := newPipeline(fs, "fetch_url=https://m.example/${remote_name}\n", overlay.Overrides{})
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := fs.Stat(".repo/local_manifests/README.md"); !os.IsNotExist(err) {
		t.Error("non-xml file should not produce output")
	}
}

func TestRun_ConfigFormatErrorWritesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, ".repo/manifests/default.xml", []byte(upstream), 0644)

	p := newPipeline(fs, "badline\n", overlay.Overrides{})
	err := p.Run()
	var cfe *overlay.ConfigFormatError
	if !errors.As(err, &cfe) {
		t.Fatalf("want ConfigFormatError, got %v", err)
	}
	if _, err := fs.Stat(".repo/local_manifests/default.xml"); !os.IsNotExist(err) {
		t.Error("no output file may be written on failure")
	}
}

func TestRun_FetchRequiredAbortsRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	// Two files in directory order; the first fails, the second must not
	// be processed.
	afero.WriteFile(fs, ".repo/manifests/a.xml", []byte(upstream), 0644)
	afero.WriteFile(fs, ".repo/manifests/b.xml", []byte(upstream), 0644)

	p := newPipeline(fs, "push_url=ssh://m.example/${remote_name}\n", overlay.Overrides{})
	err := p.Run()
	var fre *overlay.FetchRequiredError
	if !errors.As(err, &fre) {
		t.Fatalf("want FetchRequiredError, got %v", err)
	}
	for _, name := range []string{"a.xml", "b.xml"} {
		if _, err := fs.Stat(".repo/local_manifests/" + name); !os.IsNotExist(err) {
			t.Errorf("%s: output written despite failed run", name)
		}
	}
}

func TestRun_MissingManifestDirIsNoOp(t *testing.T) {
	p := newPipeline(afero.NewMemMapFs(), "fetch_url=https://m.example\n", overlay.Overrides{})
	if err := p.Run(); err != nil {
		t.Fatalf("missing manifest dir should be a no-op, got: %v", err)
	}
}

func TestRun_MalformedManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, ".repo/manifests/default.xml", []byte("<manifest><remote"), 0644)

	p := newPipeline(fs, "fetch_url=https://m.example\n", overlay.Overrides{})
	if err := p.Run(); err == nil {
		t.Fatal("want parse error")
	}
}

func TestRun_CLIOverrideWins(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, ".repo/manifests/default.xml", []byte(upstream), 0644)

	p := newPipeline(fs,
		"fetch_url=https://config.example/${remote_name}\n",
		overlay.Overrides{FetchURL: "https://flag.example/${remote_name}"})
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out, _ := afero.ReadFile(fs, ".repo/local_manifests/default.xml")
	if want := `fetch="https://flag.example/origin"`; !strings.Contains(string(out), want) {
		t.Errorf("flag value missing from output: %s", out)
	}
}
