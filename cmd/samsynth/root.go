// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/backapirest/samsynth/internal/config"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the parsed flags of one invocation.
type rootFlagValues struct {
	configPath   string
	dir          string
	verbose      bool
	dryRun       bool
	watch        bool
	capabilities string
	rootPolicy   string
}

// newRootCommand builds the samsynth command writing to stdout and stderr.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlagValues{}

	cmd := &cobra.Command{
		Use:   "samsynth",
		Short: "Generate a SAM template and esbuild configuration from an API tree",
		Long: TitleStyle.Render("samsynth") + SubtitleStyle.Render(" - SAM template synthesizer") + `

samsynth walks the 'api' resource tree of a project, creates one Lambda
function per resource directory, derives its routes from the matching
controller and writes template.yaml and esbuild.config.json.

Settings come from samsynth.cue or samsynth.toml, then AWS_* environment
variables (including those from .env files), then flags.

` + SubtitleStyle.Render("Examples:") + `
  samsynth                          Generate both artifacts
  samsynth --dry-run                Print the template without writing
  samsynth --watch                  Regenerate whenever sources change
  samsynth --capabilities declared  Use only capabilities from the config`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := newRunner(flags, stdout, stderr, cmd.Flags().Changed)
			var err error
			if flags.watch {
				err = r.watch(cmd.Context())
			} else {
				err = r.generate(cmd.Context())
			}
			if err != nil {
				return &ExitError{Code: 1, Err: displayError{err: err, verbose: flags.verbose}}
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "project config file (default: samsynth.cue or samsynth.toml in --dir)")
	f.StringVarP(&flags.dir, "dir", "C", ".", "project directory")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	f.BoolVar(&flags.dryRun, "dry-run", false, "print the template to stdout and write nothing")
	f.BoolVar(&flags.watch, "watch", false, "regenerate when project sources change")
	f.StringVar(&flags.capabilities, "capabilities", string(config.CapabilityModeAuto),
		"capability source: auto, declared or inferred")
	f.StringVar(&flags.rootPolicy, "root-policy", string(config.RootPolicyFirst),
		"candidate root handling: first or all")
	cmd.MarkFlagsMutuallyExclusive("watch", "dry-run")

	return cmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. It is called by main.main.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		newRootCommand(os.Stdout, os.Stderr),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
