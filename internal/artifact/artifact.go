// SPDX-License-Identifier: MPL-2.0

// Package artifact writes generated files.
//
// FilesystemSink stages every file of a batch in a temporary file next to
// its target and renames them into place only once all of them were written,
// so a failure leaves the previous artifacts untouched. MemorySink keeps the
// batch in memory for dry runs and tests.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

const defaultMode os.FileMode = 0o644

type (
	// File is one generated artifact. Path is slash-separated and relative
	// to the sink root.
	File struct {
		Path    string
		Content []byte
	}

	// Sink receives a batch of generated files.
	Sink interface {
		WriteAll(ctx context.Context, files []File) error
	}

	// FilesystemSink writes below Root.
	FilesystemSink struct {
		Root string
		// Mode is the permission of written files (default 0644).
		Mode os.FileMode
	}

	// MemorySink stores batches in memory. It is safe for concurrent use.
	MemorySink struct {
		mu    sync.RWMutex
		files map[string][]byte
	}

	staged struct {
		temp   string
		target string
	}
)

// NewFilesystemSink returns a sink rooted at root.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: defaultMode}
}

// WriteAll writes every file or, on error, none of them.
func (s *FilesystemSink) WriteAll(ctx context.Context, files []File) (err error) {
	mode := s.Mode
	if mode == 0 {
		mode = defaultMode
	}

	var pending []staged
	defer func() {
		if err != nil {
			for _, p := range pending {
				_ = os.Remove(p.temp) // best effort
			}
		}
	}()

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := s.resolve(f.Path)
		if err != nil {
			return err
		}
		temp, err := stage(target, f.Content, mode)
		if err != nil {
			return fmt.Errorf("write %s: %w", f.Path, err)
		}
		pending = append(pending, staged{temp: temp, target: target})
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	for i, p := range pending {
		if err := os.Rename(p.temp, p.target); err != nil {
			// Files already renamed stay in place; only unrenamed temps are removed.
			pending = pending[i:]
			return fmt.Errorf("replace %s: %w", p.target, err)
		}
	}
	return nil
}

func (s *FilesystemSink) resolve(path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	return filepath.Join(s.Root, filepath.FromSlash(path)), nil
}

// stage writes content to a temp file in target's directory.
func stage(target string, content []byte, mode os.FileMode) (string, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".samsynth-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()

	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	if err := os.Chmod(name, mode); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("set file mode: %w", err)
	}
	return name, nil
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteAll stores copies of files.
func (s *MemorySink) WriteAll(ctx context.Context, files []File) error {
	for _, f := range files {
		if err := ValidatePath(f.Path); err != nil {
			return fmt.Errorf("invalid path %q: %w", f.Path, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range files {
		s.files[f.Path] = slices.Clone(f.Content)
	}
	return nil
}

// Get returns a copy of the file at path, or nil.
func (s *MemorySink) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[path]
	if !ok {
		return nil
	}
	return slices.Clone(content)
}

// Paths returns the stored paths, sorted.
func (s *MemorySink) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// ValidatePath accepts clean, relative, slash-separated paths that stay
// inside the sink root.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return errors.New("absolute paths not allowed")
	}
	if len(path) >= 2 && path[1] == ':' {
		return errors.New("absolute paths not allowed")
	}
	if strings.Contains(path, `\`) {
		return errors.New("use / as the path separator")
	}
	for _, part := range strings.Split(path, "/") {
		switch part {
		case "..":
			return errors.New("path traversal not allowed")
		case "", ".":
			return errors.New("path is not clean")
		}
	}
	return nil
}
