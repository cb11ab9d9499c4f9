// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

// ReadDotenv parses each existing file without touching the process
// environment. A name defined in several files keeps its value from the
// earliest one. Missing files and directories are skipped; a file that cannot
// be parsed is an error. It also returns the files that were read.
func ReadDotenv(paths ...string) (map[string]string, []string, error) {
	vars := make(map[string]string)
	loaded := make([]string, 0, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, loaded, fmt.Errorf("stat env file %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		fileVars, err := godotenv.Read(path)
		if err != nil {
			return nil, loaded, fmt.Errorf("read env file %s: %w", path, err)
		}
		for name, value := range fileVars {
			if _, seen := vars[name]; !seen {
				vars[name] = value
			}
		}
		loaded = append(loaded, path)
	}
	return vars, loaded, nil
}

// Overlay returns environ followed by the entries of vars whose names environ
// does not define, sorted by name. Ambient values always win, as they do when
// a shell exports a variable that a dotenv file also sets.
func Overlay(environ []string, vars map[string]string) []string {
	defined := make(map[string]struct{}, len(environ))
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		defined[name] = struct{}{}
	}

	out := slices.Clone(environ)
	names := make([]string, 0, len(vars))
	for name := range vars {
		if _, ok := defined[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		out = append(out, name+"="+vars[name])
	}
	return out
}
