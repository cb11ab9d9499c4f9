// SPDX-License-Identifier: MPL-2.0

package capability

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

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

type (
	// IntrospectorOptions configures controller lookup.
	IntrospectorOptions struct {
		// BaseDir anchors relative roots. Empty means the working directory.
		BaseDir string
		// Roots × Dirs are the directories searched, in that order.
		Roots []string
		Dirs  []string
		// Exclude are doublestar patterns matched against lower-cased names.
		Exclude []string
		// RequireSuffix only accepts files whose stem ends with Suffix.
		RequireSuffix bool
		Suffix        string
		Logger        *log.Logger
	}

	// Introspector infers capabilities from controller files.
	Introspector struct {
		opts   IntrospectorOptions
		logger *log.Logger
	}
)

// NewIntrospector validates opts and returns an Introspector.
func NewIntrospector(opts IntrospectorOptions) (*Introspector, error) {
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(strings.ToLower(p)) {
			return nil, fmt.Errorf("invalid controller exclude pattern %q", p)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Introspector{opts: opts, logger: logger}, nil
}

// NewIntrospectorFromConfig builds an Introspector from the controller
// section of cfg.
func NewIntrospectorFromConfig(cfg *config.Config, baseDir string, logger *log.Logger) (*Introspector, error) {
	return NewIntrospector(IntrospectorOptions{
		BaseDir:       baseDir,
		Roots:         cfg.Controllers.Roots,
		Dirs:          cfg.Controllers.Dirs,
		Exclude:       cfg.Controllers.Exclude,
		RequireSuffix: cfg.Controllers.RequireSuffix,
		Suffix:        cfg.Controllers.Suffix,
		Logger:        logger,
	})
}

// Capabilities returns the tokens of every controller file whose name
// contains functionName, case-insensitively. Tokens of several matching files
// are concatenated in lookup order. No match yields no tokens.
func (in *Introspector) Capabilities(ctx context.Context, functionName string) ([]Token, error) {
	if functionName == "" {
		return nil, nil
	}
	needle := strings.ToLower(functionName)

	var tokens []Token
	for _, root := range in.opts.Roots {
		for _, sub := range in.opts.Dirs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			dir := filepath.Join(filepath.FromSlash(root), filepath.FromSlash(sub))
			if in.opts.BaseDir != "" && !filepath.IsAbs(dir) {
				dir = filepath.Join(in.opts.BaseDir, dir)
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
					in.logger.Debug("controller directory missing", "dir", dir)
					continue
				}
				return nil, fmt.Errorf("list controllers in %s: %w", dir, err)
			}

			for _, entry := range entries {
				if entry.IsDir() || !in.matches(entry.Name(), needle) {
					continue
				}
				path := filepath.Join(dir, entry.Name())
				found, err := readTokens(path)
				if err != nil {
					return nil, err
				}
				in.logger.Debug("controller matched", "function", functionName, "file", path, "tokens", len(found))
				tokens = append(tokens, found...)
			}
		}
	}
	return tokens, nil
}

func (in *Introspector) matches(name, needle string) bool {
	lower := strings.ToLower(name)
	if !strings.Contains(lower, needle) {
		return false
	}
	for _, p := range in.opts.Exclude {
		if ok, _ := doublestar.Match(strings.ToLower(p), lower); ok {
			return false
		}
	}
	if in.opts.RequireSuffix {
		stem := lower
		if i := strings.IndexByte(stem, '.'); i > 0 {
			stem = stem[:i]
		}
		return strings.HasSuffix(stem, strings.ToLower(in.opts.Suffix))
	}
	return true
}

func readTokens(path string) ([]Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read controller %s: %w", path, err)
	}
	tokens, err := ExtractTokens(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tokens, nil
}
