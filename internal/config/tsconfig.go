// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/backapirest/samsynth/internal/issue"
	"github.com/backapirest/samsynth/pkg/cueutil"

	"github.com/tailscale/hujson"
)

const (
	// DefaultBuildTarget is used when tsconfig.json names no target.
	DefaultBuildTarget = "es2020"
	// DefaultSourceMap is used when tsconfig.json does not set sourceMap.
	DefaultSourceMap = true
)

//go:embed tsconfig_schema.cue
var tsconfigSchema []byte

type (
	// BuildFlags are the compiler options copied into build metadata.
	BuildFlags struct {
		Target    string
		SourceMap bool
	}

	tsconfigDoc struct {
		CompilerOptions *struct {
			Target    *string `json:"target"`
			SourceMap *bool   `json:"sourceMap"`
		} `json:"compilerOptions"`
	}
)

// DefaultBuildFlags returns the flags used without a tsconfig.json.
func DefaultBuildFlags() BuildFlags {
	return BuildFlags{Target: DefaultBuildTarget, SourceMap: DefaultSourceMap}
}

// LoadBuildFlags reads compilerOptions.target and compilerOptions.sourceMap
// from path. A missing file yields the defaults; a file that does not parse
// is an error. Comments and trailing commas are accepted.
func LoadBuildFlags(path string) (BuildFlags, error) {
	flags := DefaultBuildFlags()
	if path == "" {
		return flags, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return flags, nil
		}
		return flags, fmt.Errorf("read tsconfig: %w", err)
	}

	// tsc --init writes block comments and tolerates trailing commas.
	standard, err := hujson.Standardize(data)
	if err != nil {
		return flags, tsconfigError(fmt.Errorf("%s: %w", path, err))
	}

	result, err := cueutil.ParseAndDecode[tsconfigDoc](tsconfigSchema, standard, "#TSConfig",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return flags, tsconfigError(err)
	}

	if opts := result.Value.CompilerOptions; opts != nil {
		if opts.Target != nil && *opts.Target != "" {
			flags.Target = strings.ToLower(*opts.Target)
		}
		if opts.SourceMap != nil {
			flags.SourceMap = *opts.SourceMap
		}
	}
	return flags, nil
}

// tsconfigError wraps a parse failure. The cause already names the file.
func tsconfigError(err error) error {
	return issue.NewErrorContext().
		WithOperation("read compiler options").
		WithSuggestion("Fix the JSON syntax of the file, or point 'tsconfig' at another file").
		Wrap(err).
		BuildError()
}
