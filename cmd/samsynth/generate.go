// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/backapirest/samsynth/internal/artifact"
	"github.com/backapirest/samsynth/internal/config"
	"github.com/backapirest/samsynth/internal/environment"
	"github.com/backapirest/samsynth/internal/issue"
	"github.com/backapirest/samsynth/internal/synth"

	"github.com/charmbracelet/log"
)

// runner carries one invocation's flags and outputs.
type runner struct {
	flags   *rootFlagValues
	changed func(name string) bool
	stdout  io.Writer
	stderr  io.Writer
	logger  *log.Logger
	// ambient is the environment captured at startup. Dotenv values are
	// layered over it on every run, never written back to the process.
	ambient []string
}

func newRunner(flags *rootFlagValues, stdout, stderr io.Writer, changed func(string) bool) *runner {
	level := log.InfoLevel
	if flags.verbose {
		level = log.DebugLevel
	}
	return &runner{
		flags:   flags,
		changed: changed,
		stdout:  stdout,
		stderr:  stderr,
		logger:  log.NewWithOptions(stderr, log.Options{Prefix: "samsynth", Level: level}),
		ambient: os.Environ(),
	}
}

func (r *runner) baseDir() (string, error) {
	dir := r.flags.dir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve project directory: %w", err)
	}
	return abs, nil
}

// loadConfig reads the project file, reads the configured .env files and
// reloads so their AWS_* values take part in the layering, then applies flags.
// It returns the environment the run sees: ambient values over dotenv ones.
func (r *runner) loadConfig(ctx context.Context, baseDir string) (*config.Config, []string, error) {
	opts := config.LoadOptions{ConfigFilePath: r.flags.configPath, BaseDir: baseDir, Environ: r.ambient}
	provider := config.NewProvider()

	cfg, err := provider.Load(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	paths := make([]string, len(cfg.Environment.Dotenv))
	for i, p := range cfg.Environment.Dotenv {
		paths[i] = resolve(baseDir, p)
	}
	vars, loaded, err := environment.ReadDotenv(paths...)
	if err != nil {
		return nil, nil, err
	}
	environ := environment.Overlay(r.ambient, vars)
	if len(loaded) > 0 {
		r.logger.Debug("read dotenv files", "files", loaded, "vars", len(vars))
		opts.Environ = environ
		if cfg, err = provider.Load(ctx, opts); err != nil {
			return nil, nil, err
		}
	}

	if r.changed("capabilities") {
		cfg.Capabilities.Mode = config.CapabilityMode(strings.ToLower(r.flags.capabilities))
	}
	if r.changed("root-policy") {
		cfg.RootPolicy = config.RootPolicy(strings.ToLower(r.flags.rootPolicy))
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, issue.NewErrorContext().
			WithOperation("apply command line flags").
			WithSuggestion("Use --capabilities auto|declared|inferred and --root-policy first|all").
			Wrap(err).
			BuildError()
	}
	return cfg, environ, nil
}

// generate performs one complete run.
func (r *runner) generate(ctx context.Context) error {
	baseDir, err := r.baseDir()
	if err != nil {
		return err
	}
	cfg, environ, err := r.loadConfig(ctx, baseDir)
	if err != nil {
		return err
	}

	buildFlags, err := config.LoadBuildFlags(resolve(baseDir, cfg.TSConfig))
	if err != nil {
		return err
	}

	gen, err := synth.New(synth.Options{
		BaseDir:    baseDir,
		Config:     cfg,
		Environ:    environ,
		BuildFlags: buildFlags,
		Logger:     r.logger,
	})
	if err != nil {
		return err
	}

	if r.flags.dryRun {
		sink := artifact.NewMemorySink()
		result, err := gen.Run(ctx, sink)
		if err != nil {
			return err
		}
		if _, err := r.stdout.Write(sink.Get(result.Files[0].Path)); err != nil {
			return fmt.Errorf("print template: %w", err)
		}
		r.logger.Debug("dry run, nothing written", "functions", result.Functions)
		return nil
	}

	result, err := gen.Run(ctx, artifact.NewFilesystemSink(baseDir))
	if err != nil {
		return err
	}
	fmt.Fprintln(r.stderr, summary(result))
	return nil
}

// summary renders the one-line report printed after a successful run.
func summary(result *synth.Result) string {
	paths := make([]string, len(result.Files))
	for i, f := range result.Files {
		paths[i] = PathStyle.Render(f.Path)
	}
	line := SuccessStyle.Render("✓") + " generated " + strings.Join(paths, ", ") + " " +
		SubtitleStyle.Render(fmt.Sprintf("(%s, %s, %s)",
			plural(result.Functions, "function"),
			plural(result.Routes, "route"),
			plural(result.EntryPoints, "entry point")))
	if n := len(result.Diagnostics); n > 0 {
		line += " " + WarningStyle.Render(plural(n, "warning"))
	}
	return line
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// resolve joins a relative project path onto baseDir. Empty stays empty.
func resolve(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
