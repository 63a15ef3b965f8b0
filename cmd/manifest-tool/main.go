// manifest-tool derives local override manifests for a git-repo style
// checkout from the upstream manifests plus layered user configuration.
//
// Usage:
//
//	manifest-tool [--push-url=<url>] [--fetch-url=<url>] [--review-url=<url>] [--review-protocol=<proto>]
//	manifest-tool --envsubst-projects=<template|-> > out.txt
//
// Without --envsubst-projects, every manifest under the manifest
// directory is rewritten: each remote's connection parameters are
// resolved from ~/.config/manifest-tool/config.env (with ${remote_name}
// substituted) overlaid with the URL flags, and an override fragment is
// written to the local-manifests directory. With --envsubst-projects, the
// given template is rendered once per project of the default manifest to
// stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pullreqr/manifest-tool/internal/generate"
	"github.com/pullreqr/manifest-tool/internal/logging"
	"github.com/pullreqr/manifest-tool/internal/overlay"
	"github.com/pullreqr/manifest-tool/internal/render"
	"github.com/pullreqr/manifest-tool/internal/settings"
	"github.com/pullreqr/manifest-tool/internal/userconfig"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	pushURL        string
	fetchURL       string
	reviewURL      string
	reviewProtocol string
	override       bool
	template       string
	settingsPath   string
	logLevel       string
	logFormat      string
}

var rootCmd = &cobra.Command{
	Use:   "manifest-tool [manifest-file ...]",
	Short: "Generate local override manifests from upstream manifests and layered config",
	Long: `manifest-tool rewrites the remotes of every upstream manifest through a
layered configuration (per-user config.env, then flags) and emits local
override manifests for the checkout tool to layer on top. Flag values and
config.env contents may reference ${remote_name}.

With --envsubst-projects, a template is instead rendered once per project
of the default manifest, with ${project_name}, ${remote_name},
${fetch_url} and ${push_url} available.`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&rootFlags.pushURL, "push-url", "", "Override push URL (may reference ${remote_name})")
	f.StringVar(&rootFlags.fetchURL, "fetch-url", "", "Override fetch URL (may reference ${remote_name})")
	f.StringVar(&rootFlags.reviewURL, "review-url", "", "Override review URL (may reference ${remote_name})")
	f.StringVar(&rootFlags.reviewProtocol, "review-protocol", "", "Review protocol (gerrit, ssh, http, https)")
	f.BoolVar(&rootFlags.override, "override", false, "Allow overriding duplicate remotes (reserved)")
	f.StringVar(&rootFlags.template, "envsubst-projects", "", "Render this template for every project to stdout ('-' reads stdin)")
	f.StringVar(&rootFlags.settingsPath, "settings", settings.DefaultPath, "Site settings file")
	f.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.Version = version
}

func run(cmd *cobra.Command, args []string) error {
	logging.Init(logging.ParseLevel(rootFlags.logLevel), rootFlags.logFormat)
	fs := afero.NewOsFs()

	cfg, err := settings.Load(fs, rootFlags.settingsPath)
	if err != nil {
		return err
	}

	if rootFlags.template != "" {
		template, err := render.LoadTemplate(fs, rootFlags.template, cmd.InOrStdin())
		if err != nil {
			return err
		}
		return render.Run(fs, cfg.DefaultManifest, template, cmd.OutOrStdout())
	}

	configPath, err := userconfig.Path()
	if err != nil {
		return err
	}
	configText, err := userconfig.Load(fs, configPath)
	if err != nil {
		return err
	}

	p := &generate.Pipeline{
		FS:          fs,
		ManifestDir: cfg.ManifestDir,
		OutDir:      cfg.LocalManifestDir,
		ConfigText:  configText,
		Overrides: overlay.Overrides{
			PushURL:        rootFlags.pushURL,
			FetchURL:       rootFlags.fetchURL,
			ReviewURL:      rootFlags.reviewURL,
			ReviewProtocol: rootFlags.reviewProtocol,
		},
		Log: logging.New("generate"),
	}
	return p.Run()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
