// SPDX-License-Identifier: MPL-2.0

package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadBuildFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    BuildFlags
		wantErr bool
	}{
		{
			name: "target and source map",
			content: `{
	// emitted for lambda
	"compilerOptions": {
		"target": "ES2019",
		"sourceMap": false,
		"strict": true
	},
	"include": ["src"]
}`,
			want: BuildFlags{Target: "es2019", SourceMap: false},
		},
		{
			name: "tsc --init block comments",
			content: `{
  "compilerOptions": {
    /* Visit https://aka.ms/tsconfig to read more about this file */

    /* Language and Environment */
    "target": "es2016",                                  /* Set the JavaScript language version for emitted JavaScript and include compatible library declarations. */
    // "lib": [],                                        /* Specify a set of bundled library declaration files that describe the target runtime environment. */

    /* Emit */
    "sourceMap": false,                                  /* Create source map files for emitted JavaScript files. */
    "outDir": "./dist",                                  /* Specify an output folder for all emitted files. */
    "strict": true,                                      /* Enable all strict type-checking options. */
    "skipLibCheck": true,                                /* Skip type checking all .d.ts files. */
  }
}`,
			want: BuildFlags{Target: "es2016", SourceMap: false},
		},
		{
			name:    "no compiler options",
			content: `{"include": ["src"]}`,
			want:    DefaultBuildFlags(),
		},
		{
			name:    "only target",
			content: `{"compilerOptions": {"target": "es2022"}}`,
			want:    BuildFlags{Target: "es2022", SourceMap: true},
		},
		{
			name:    "malformed",
			content: `{"compilerOptions": {`,
			wantErr: true,
		},
		{
			name:    "wrong type",
			content: `{"compilerOptions": {"sourceMap": "yes"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "tsconfig.json")
			writeFile(t, path, tt.content)

			got, err := LoadBuildFlags(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadBuildFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("LoadBuildFlags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadBuildFlags_MissingFile(t *testing.T) {
	t.Parallel()

	got, err := LoadBuildFlags(filepath.Join(t.TempDir(), "tsconfig.json"))
	if err != nil {
		t.Fatalf("LoadBuildFlags() error = %v", err)
	}
	if got != DefaultBuildFlags() {
		t.Errorf("LoadBuildFlags() = %+v, want defaults", got)
	}
}

func TestLoadBuildFlags_ErrorNamesFileOnce(t *testing.T) {
	t.Parallel()

	for _, content := range []string{
		`{"compilerOptions": {`,
		`{"compilerOptions": {"target": 2016}}`,
	} {
		path := filepath.Join(t.TempDir(), "tsconfig.json")
		writeFile(t, path, content)

		_, err := LoadBuildFlags(path)
		if err == nil {
			t.Fatalf("LoadBuildFlags(%q) succeeded, want error", content)
		}
		if n := strings.Count(err.Error(), path); n != 1 {
			t.Errorf("error names %s %d times, want once: %v", path, n, err)
		}
	}
}
