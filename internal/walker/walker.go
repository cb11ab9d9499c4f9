// SPDX-License-Identifier: MPL-2.0

package walker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/backapirest/samsynth/internal/config"

	"github.com/charmbracelet/log"
)

const (
	// SeverityWarning marks a recoverable walk problem.
	SeverityWarning Severity = "warning"

	// CodeRootMissing is reported for a candidate root without the API root.
	CodeRootMissing = "root_missing"
	// CodeDirVanished is reported for a subdirectory that could not be listed
	// because it no longer exists.
	CodeDirVanished = "dir_vanished"
	// CodeNoAPIRoot is reported when no candidate root had the API root.
	CodeNoAPIRoot = "no_api_root"
)

type (
	// Severity is a diagnostic level.
	Severity string

	// Diagnostic describes a soft failure met during the walk.
	Diagnostic struct {
		Severity Severity
		// Code is a machine-readable identifier such as "root_missing".
		Code    string
		Message string
		Path    string
		Cause   error
	}

	// ResourceDir is one directory with qualifying source files.
	ResourceDir struct {
		// Root is the candidate root the directory was found under.
		Root string
		// Segments are the path segments below the API root. Empty for the API
		// root itself.
		Segments []string
		// Dir is the slash-separated directory path, prefixed with Root.
		Dir string
		// Files are the qualifying file names in listing order. Files[0] is
		// the primary file.
		Files []string
	}

	// Result is the outcome of a walk.
	Result struct {
		APIRoot     string
		Dirs        []ResourceDir
		Diagnostics []Diagnostic
		// RootsScanned lists the candidate roots whose API root was listed.
		RootsScanned []string
	}

	// Options configures a Walker.
	Options struct {
		// BaseDir anchors relative roots. Empty means the working directory.
		BaseDir string
		APIRoot string
		Roots   []string
		Policy  config.RootPolicy
		Include []string
		Exclude []string
		Logger  *log.Logger
	}

	// Walker lists resource directories.
	Walker struct {
		baseDir string
		apiRoot string
		roots   []string
		policy  config.RootPolicy
		matcher *Matcher
		logger  *log.Logger
	}

	// dirScan is what one directory listing contributes: every resource
	// directory at or below it, in emission order.
	dirScan struct {
		dirs  []ResourceDir
		diags []Diagnostic
	}
)

// New creates a Walker.
func New(opts Options) (*Walker, error) {
	if opts.APIRoot == "" {
		return nil, errors.New("api root must not be empty")
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, err
	}
	matcher, err := NewMatcher(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Walker{
		baseDir: opts.BaseDir,
		apiRoot: strings.Trim(filepath.ToSlash(opts.APIRoot), "/"),
		roots:   append([]string(nil), opts.Roots...),
		policy:  opts.Policy,
		matcher: matcher,
		logger:  logger,
	}, nil
}

// NewFromConfig creates a Walker from the loaded configuration.
func NewFromConfig(cfg *config.Config, baseDir string, logger *log.Logger) (*Walker, error) {
	return New(Options{
		BaseDir: baseDir,
		APIRoot: cfg.APIRoot,
		Roots:   cfg.Roots,
		Policy:  cfg.RootPolicy,
		Include: cfg.Sources.Include,
		Exclude: cfg.Sources.Exclude,
		Logger:  logger,
	})
}

// Primary returns the primary file name.
func (d ResourceDir) Primary() string {
	if len(d.Files) == 0 {
		return ""
	}
	return d.Files[0]
}

// Secondary reports whether the directory has more than one qualifying file.
func (d ResourceDir) Secondary() bool {
	return len(d.Files) > 1
}

// Walk scans the candidate roots in order. With the "first" policy it stops
// after the first root that contributed at least one resource directory.
func (w *Walker) Walk(ctx context.Context) (*Result, error) {
	result := &Result{APIRoot: w.apiRoot}

	for _, root := range w.roots {
		apiDir := joinSlash(root, w.apiRoot)

		scan, listed, err := w.walkDir(ctx, root, nil)
		if err != nil {
			return nil, err
		}
		result.Dirs = append(result.Dirs, scan.dirs...)
		result.Diagnostics = append(result.Diagnostics, scan.diags...)

		if !listed {
			w.logger.Debug("candidate root skipped", "dir", apiDir)
			continue
		}
		result.RootsScanned = append(result.RootsScanned, root)
		if len(scan.dirs) == 0 {
			// e.g. ./source/api holding only excluded .ts files while the
			// compiled tree lives under ./dist/source/api
			w.logger.Debug("candidate root has no resources", "dir", apiDir)
			continue
		}
		if w.policy == config.RootPolicyFirst {
			break
		}
	}

	if len(result.RootsScanned) == 0 {
		diag := Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeNoAPIRoot,
			Message:  fmt.Sprintf("no %q directory found under any candidate root", w.apiRoot),
			Path:     w.apiRoot,
		}
		w.logger.Warn(diag.Message, "roots", len(w.roots))
		result.Diagnostics = append(result.Diagnostics, diag)
	}

	return result, nil
}

// walkDir lists <root>/<apiRoot>/<segments...>. listed is false when the
// directory was missing.
func (w *Walker) walkDir(ctx context.Context, root string, segments []string) (dirScan, bool, error) {
	var scan dirScan

	if err := ctx.Err(); err != nil {
		return scan, false, err
	}

	dir := joinSlash(root, w.apiRoot, strings.Join(segments, "/"))
	entries, err := os.ReadDir(w.fsPath(dir))
	if err != nil {
		if !isSoft(err) {
			return scan, false, fmt.Errorf("list %s: %w", dir, err)
		}
		code, msg := CodeDirVanished, "directory could not be listed"
		if len(segments) == 0 {
			code, msg = CodeRootMissing, "candidate root has no API directory"
		} else {
			w.logger.Warn(msg, "dir", dir, "err", err)
		}
		scan.diags = append(scan.diags, Diagnostic{
			Severity: SeverityWarning,
			Code:     code,
			Message:  fmt.Sprintf("%s: %s", msg, dir),
			Path:     dir,
			Cause:    err,
		})
		return scan, false, nil
	}

	// index of this directory in scan.dirs, once its primary file is seen
	self := -1
	for _, entry := range entries {
		name := entry.Name()

		isDir, err := w.isDir(dir, entry)
		if err != nil {
			return scan, true, err
		}

		if isDir {
			child, _, err := w.walkDir(ctx, root, append(append([]string(nil), segments...), name))
			if err != nil {
				return scan, true, err
			}
			scan.dirs = append(scan.dirs, child.dirs...)
			scan.diags = append(scan.diags, child.diags...)
			continue
		}

		if !w.matcher.Match(name) {
			continue
		}

		if self < 0 {
			self = len(scan.dirs)
			scan.dirs = append(scan.dirs, ResourceDir{
				Root:     root,
				Segments: append([]string(nil), segments...),
				Dir:      dir,
				Files:    []string{name},
			})
			w.logger.Debug("resource found", "dir", dir, "file", name)
			continue
		}
		scan.dirs[self].Files = append(scan.dirs[self].Files, name)
		w.logger.Debug("secondary file", "dir", dir, "file", name)
	}

	return scan, true, nil
}

// isDir resolves symlinks so linked directories are walked like real ones.
func (w *Walker) isDir(dir string, entry fs.DirEntry) (bool, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir(), nil
	}
	info, err := os.Stat(w.fsPath(joinSlash(dir, entry.Name())))
	if err != nil {
		if isSoft(err) {
			// dangling link
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", joinSlash(dir, entry.Name()), err)
	}
	return info.IsDir(), nil
}

func (w *Walker) fsPath(slashPath string) string {
	p := filepath.FromSlash(slashPath)
	if w.baseDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(w.baseDir, p)
}

// isSoft reports whether err means "nothing there" rather than a real failure.
func isSoft(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// joinSlash joins non-empty parts with "/", keeping a leading "./" on the
// first part so code locations read like the roots they came from.
func joinSlash(parts ...string) string {
	var b strings.Builder
	for i, p := range parts {
		p = filepath.ToSlash(p)
		if i == 0 && strings.HasPrefix(p, "/") {
			p = "/" + strings.Trim(p, "/")
		} else {
			p = strings.Trim(p, "/")
		}
		if p == "" || p == "/" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(p)
	}
	return b.String()
}
