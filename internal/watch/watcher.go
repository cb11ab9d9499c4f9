// SPDX-License-Identifier: MPL-2.0

// Package watch regenerates the artifacts when project sources change.
//
// A Watcher registers every non-ignored directory under the project root with
// fsnotify and coalesces the events that arrive within the debounce window
// into one OnChange call carrying the changed paths.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/backapirest/samsynth/internal/config"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is unset.
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrAlreadyStarted is returned by a second call to Run.
	ErrAlreadyStarted = errors.New("watch: Run called more than once")

	// defaultPatterns select resource sources, controllers and every input
	// that feeds generation.
	defaultPatterns = []string{
		"**/*.js",
		"**/*.mjs",
		"**/*.cjs",
		"**/*.ts",
		"**/samsynth.cue",
		"**/samsynth.toml",
		"**/.env",
		"**/.env.*",
		"**/tsconfig.json",
	}

	defaultIgnores = []string{
		"**/.git/**",
		"**/node_modules/**",
		"**/.aws-sam/**",
		"**/.samsynth-*.tmp",
		"**/*.swp",
		"**/*~",
		"**/.DS_Store",
	}
)

type (
	// Options configures a Watcher.
	Options struct {
		// BaseDir is the project root; empty means the working directory.
		BaseDir string
		// Patterns are doublestar globs relative to BaseDir. Empty selects
		// DefaultPatterns.
		Patterns []string
		// Ignore extends the built-in ignores.
		Ignore []string
		// Debounce falls back to DefaultDebounce when not positive.
		Debounce time.Duration
		// OnChange receives the sorted slash-separated paths that changed.
		OnChange func(ctx context.Context, changed []string) error
		Logger   *log.Logger
	}

	// Watcher monitors a project tree. Run may be called once.
	Watcher struct {
		opts    Options
		fsw     *fsnotify.Watcher
		base    string
		ignores []string
		logger  *log.Logger
		started atomic.Bool
	}
)

// DefaultPatterns returns a copy of the built-in watch patterns.
func DefaultPatterns() []string {
	return append([]string(nil), defaultPatterns...)
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return append([]string(nil), defaultIgnores...)
}

// OutputIgnores returns patterns covering the generated artifacts so that
// writing them never triggers another run.
func OutputIgnores(out config.OutputConfig) []string {
	var ignores []string
	for _, name := range []string{out.Template, out.Bundler} {
		if name == "" {
			continue
		}
		ignores = append(ignores, path.Clean(filepath.ToSlash(name)))
	}
	if out.BundleDir != "" {
		ignores = append(ignores, path.Clean(filepath.ToSlash(out.BundleDir))+"/**")
	}
	return ignores
}

// New validates opts and registers the directory tree with fsnotify.
func New(opts Options) (*Watcher, error) {
	base := opts.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		base = wd
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	if len(opts.Patterns) == 0 {
		opts.Patterns = DefaultPatterns()
	}
	if err := validatePatterns("watch", opts.Patterns); err != nil {
		return nil, err
	}
	if err := validatePatterns("ignore", opts.Ignore); err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		opts:    opts,
		fsw:     fsw,
		base:    abs,
		ignores: append(DefaultIgnores(), opts.Ignore...),
		logger:  logger,
	}
	if err := w.addTree(abs); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close watcher after init failure", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is canceled, which returns nil. A fatal
// fsnotify error (resource exhaustion) is returned wrapped.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	d := newDebouncer(ctx, w.opts.Debounce, w.dispatch)
	defer func() {
		d.stop()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "err", err)
		}
	}()

	w.logger.Info("watching for changes", "dir", w.base)
	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed unexpectedly")
			}
			w.handle(evt, d)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) handle(evt fsnotify.Event, d *debouncer) {
	rel := w.relative(evt.Name)
	if w.ignored(rel) {
		return
	}
	// New directories are registered before pattern filtering since the
	// directory itself rarely matches a file pattern.
	if evt.Has(fsnotify.Create) {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if err := w.addTree(evt.Name); err != nil {
				w.logger.Warn("watch new directory", "path", rel, "err", err)
			}
			return
		}
	}
	if !w.matches(rel) {
		return
	}
	w.logger.Debug("change", "path", rel, "op", evt.Op.String())
	d.add(rel)
}

func (w *Watcher) dispatch(ctx context.Context, changed []string) {
	if w.opts.OnChange == nil {
		return
	}
	if err := w.opts.OnChange(ctx, changed); err != nil {
		w.logger.Error("regeneration failed", "err", err)
	}
}

// addTree registers root and every non-ignored directory below it.
// Unreadable directories are skipped with a warning.
func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("skipping inaccessible path", "path", p, "err", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel := w.relative(p)
		if rel != "." && (w.ignored(rel) || w.ignored(rel+"/")) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", p, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk directory tree: %w", err)
	}
	return nil
}

func (w *Watcher) relative(p string) string {
	rel, err := filepath.Rel(w.base, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) matches(rel string) bool {
	return matchAny(w.opts.Patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func validatePatterns(label string, patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}
