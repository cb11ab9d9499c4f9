// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/backapirest/samsynth/internal/issue"
	"github.com/backapirest/samsynth/internal/testutil"
)

// clearSettingsEnv unsets every AWS_* setting for the duration of t.
func clearSettingsEnv(t *testing.T) {
	t.Helper()
	for _, name := range SettingsEnvVars() {
		t.Cleanup(testutil.MustUnsetenv(t, name))
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearSettingsEnv(t)

	cfg, err := Load(context.Background(), LoadOptions{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := DefaultConfig()
	if cfg.APIRoot != want.APIRoot {
		t.Errorf("APIRoot = %q, want %q", cfg.APIRoot, want.APIRoot)
	}
	if !slices.Equal(cfg.Roots, want.Roots) {
		t.Errorf("Roots = %v, want %v", cfg.Roots, want.Roots)
	}
	if cfg.RootPolicy != RootPolicyFirst {
		t.Errorf("RootPolicy = %q, want %q", cfg.RootPolicy, RootPolicyFirst)
	}
	if cfg.Function.Timeout != 3 || cfg.Function.MemorySize != 128 {
		t.Errorf("Function = %+v, want timeout 3 and memory 128", cfg.Function)
	}
	if cfg.Function.Tracing != "Active" || !cfg.Function.APITracing {
		t.Errorf("tracing defaults wrong: %+v", cfg.Function)
	}
	if cfg.Function.Runtime != "nodejs16.x" {
		t.Errorf("Runtime = %q, want nodejs16.x", cfg.Function.Runtime)
	}
	if !slices.Equal(cfg.Function.Architectures, []string{"x86_64"}) {
		t.Errorf("Architectures = %v, want [x86_64]", cfg.Function.Architectures)
	}
	if !cfg.Function.Minify || cfg.Function.UseCommonLayer {
		t.Errorf("Minify/UseCommonLayer = %v/%v, want true/false", cfg.Function.Minify, cfg.Function.UseCommonLayer)
	}
	if cfg.Output.Template != "template.yaml" || cfg.Output.Bundler != "esbuild.config.json" {
		t.Errorf("Output = %+v", cfg.Output)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearSettingsEnv(t)
	t.Cleanup(testutil.MustSetenv(t, EnvFunctionTimeout, "30"))
	t.Cleanup(testutil.MustSetenv(t, EnvFunctionTracing, "PassThrough"))
	t.Cleanup(testutil.MustSetenv(t, EnvAPITracingEnabled, "false"))
	t.Cleanup(testutil.MustSetenv(t, EnvFunctionRuntime, "nodejs18.x"))
	t.Cleanup(testutil.MustSetenv(t, EnvFunctionArchitectures, `["arm64"]`))
	t.Cleanup(testutil.MustSetenv(t, EnvFunctionMinify, "false"))
	t.Cleanup(testutil.MustSetenv(t, EnvUseCommonLayer, "true"))

	cfg, err := Load(context.Background(), LoadOptions{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	fn := cfg.Function
	if fn.Timeout != 30 {
		t.Errorf("Timeout = %d, want 30", fn.Timeout)
	}
	if fn.Tracing != "PassThrough" || fn.APITracing {
		t.Errorf("tracing = %q/%v, want PassThrough/false", fn.Tracing, fn.APITracing)
	}
	if fn.Runtime != "nodejs18.x" {
		t.Errorf("Runtime = %q", fn.Runtime)
	}
	if !slices.Equal(fn.Architectures, []string{"arm64"}) {
		t.Errorf("Architectures = %v, want [arm64]", fn.Architectures)
	}
	if fn.Minify || !fn.UseCommonLayer {
		t.Errorf("Minify/UseCommonLayer = %v/%v, want false/true", fn.Minify, fn.UseCommonLayer)
	}
}

func TestLoad_MalformedArchitectures(t *testing.T) {
	clearSettingsEnv(t)
	t.Cleanup(testutil.MustSetenv(t, EnvFunctionArchitectures, "x86_64"))

	_, err := Load(context.Background(), LoadOptions{BaseDir: t.TempDir()})
	if err == nil {
		t.Fatal("Load() expected error for non-JSON architectures")
	}
	if !errors.Is(err, ErrInvalidArchitectures) {
		t.Errorf("error should wrap ErrInvalidArchitectures, got %v", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Errorf("error should be an ActionableError, got %T", err)
	}
}

func TestLoad_CUEFile(t *testing.T) {
	clearSettingsEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "samsynth.cue"), `
api_root: "routes"
root_policy: "all"
capabilities: {
	mode: "declared"
	declared: widgets: ["Read", "Create"]
}
routes: dedupe: "verb"
function: {
	timeout: 10
	architectures: ["arm64"]
}
`)

	cfg, err := Load(context.Background(), LoadOptions{BaseDir: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIRoot != "routes" {
		t.Errorf("APIRoot = %q, want routes", cfg.APIRoot)
	}
	if cfg.RootPolicy != RootPolicyAll {
		t.Errorf("RootPolicy = %q, want all", cfg.RootPolicy)
	}
	if cfg.Capabilities.Mode != CapabilityModeDeclared {
		t.Errorf("Capabilities.Mode = %q", cfg.Capabilities.Mode)
	}
	if got := cfg.Capabilities.Declared["widgets"]; !slices.Equal(got, []string{"Read", "Create"}) {
		t.Errorf("Declared[widgets] = %v", got)
	}
	if cfg.Routes.Dedupe != DedupeVerb {
		t.Errorf("Routes.Dedupe = %q", cfg.Routes.Dedupe)
	}
	if cfg.Function.Timeout != 10 {
		t.Errorf("Timeout = %d, want 10", cfg.Function.Timeout)
	}
	if !slices.Equal(cfg.Function.Architectures, []string{"arm64"}) {
		t.Errorf("Architectures = %v", cfg.Function.Architectures)
	}
	// Untouched keys keep their defaults.
	if cfg.Function.MemorySize != 128 {
		t.Errorf("MemorySize = %d, want default 128", cfg.Function.MemorySize)
	}
}

func TestLoad_EnvironmentBeatsFile(t *testing.T) {
	clearSettingsEnv(t)
	t.Cleanup(testutil.MustSetenv(t, EnvFunctionTimeout, "42"))
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "samsynth.cue"), `function: timeout: 10`)

	cfg, err := Load(context.Background(), LoadOptions{BaseDir: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Function.Timeout != 42 {
		t.Errorf("Timeout = %d, want 42 from environment", cfg.Function.Timeout)
	}
}

func TestLoad_ExplicitEnviron(t *testing.T) {
	clearSettingsEnv(t)
	t.Cleanup(testutil.MustSetenv(t, EnvFunctionMemorySize, "2048"))
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "samsynth.cue"), `function: timeout: 10`)

	cfg, err := Load(context.Background(), LoadOptions{
		BaseDir: dir,
		Environ: []string{
			EnvFunctionTimeout + "=42",
			EnvFunctionArchitectures + `=["arm64"]`,
			EnvFunctionRuntime + "=",
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Function.Timeout != 42 {
		t.Errorf("Timeout = %d, want 42 from Environ", cfg.Function.Timeout)
	}
	if cfg.Function.MemorySize != 128 {
		t.Errorf("MemorySize = %d, want default 128: the process environment must be ignored", cfg.Function.MemorySize)
	}
	if len(cfg.Function.Architectures) != 1 || cfg.Function.Architectures[0] != "arm64" {
		t.Errorf("Architectures = %v, want [arm64]", cfg.Function.Architectures)
	}
	if cfg.Function.Runtime != "nodejs16.x" {
		t.Errorf("Runtime = %q, empty value should keep the default", cfg.Function.Runtime)
	}
}

func TestLoad_ExplicitEnvironMalformedArchitectures(t *testing.T) {
	clearSettingsEnv(t)

	_, err := Load(context.Background(), LoadOptions{
		BaseDir: t.TempDir(),
		Environ: []string{EnvFunctionArchitectures + "=x86_64"},
	})
	if !errors.Is(err, ErrInvalidArchitectures) {
		t.Fatalf("Load() error = %v, want ErrInvalidArchitectures", err)
	}
}

func TestLoad_CUESchemaViolation(t *testing.T) {
	clearSettingsEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "samsynth.cue")
	writeFile(t, path, `root_policy: "sometimes"`)

	_, err := Load(context.Background(), LoadOptions{BaseDir: dir})
	if err == nil {
		t.Fatal("Load() expected schema error")
	}
	if !strings.Contains(err.Error(), "root_policy") {
		t.Errorf("error should name the field, got %v", err)
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error should be an ActionableError, got %T", err)
	}
	if ae.Resource != path {
		t.Errorf("Resource = %q, want %q", ae.Resource, path)
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	clearSettingsEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "samsynth.toml"), `
api_root = "endpoints"

[metadata]
always = true

[function]
memory_size = 256
architectures = ["arm64", "x86_64"]
`)

	cfg, err := Load(context.Background(), LoadOptions{BaseDir: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIRoot != "endpoints" {
		t.Errorf("APIRoot = %q, want endpoints", cfg.APIRoot)
	}
	if !cfg.Metadata.Always {
		t.Error("Metadata.Always = false, want true")
	}
	if cfg.Function.MemorySize != 256 {
		t.Errorf("MemorySize = %d, want 256", cfg.Function.MemorySize)
	}
	if !slices.Equal(cfg.Function.Architectures, []string{"arm64", "x86_64"}) {
		t.Errorf("Architectures = %v", cfg.Function.Architectures)
	}
}

func TestLoad_TOMLInvalidEnum(t *testing.T) {
	clearSettingsEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "samsynth.toml"), `[routes]
dedupe = "path"
`)

	_, err := Load(context.Background(), LoadOptions{BaseDir: dir})
	if !errors.Is(err, ErrInvalidDedupePolicy) {
		t.Errorf("Load() error = %v, want ErrInvalidDedupePolicy", err)
	}
}

func TestLoad_CUEPreferredOverTOML(t *testing.T) {
	clearSettingsEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "samsynth.cue"), `api_root: "from-cue"`)
	writeFile(t, filepath.Join(dir, "samsynth.toml"), `api_root = "from-toml"`)

	cfg, err := Load(context.Background(), LoadOptions{BaseDir: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIRoot != "from-cue" {
		t.Errorf("APIRoot = %q, want from-cue", cfg.APIRoot)
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	clearSettingsEnv(t)

	_, err := Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	if err == nil {
		t.Fatal("Load() expected error for a missing explicit config file")
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, LoadOptions{BaseDir: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestDecodeArchitectures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     any
		want    []string
		wantErr bool
	}{
		{"json string", `["x86_64","arm64"]`, []string{"x86_64", "arm64"}, false},
		{"empty json array", `[]`, []string{}, false},
		{"bare word", "x86_64", nil, true},
		{"json object", `{"a":1}`, nil, true},
		{"string slice", []string{"arm64"}, []string{"arm64"}, false},
		{"any slice", []any{"arm64"}, []string{"arm64"}, false},
		{"any slice with number", []any{"arm64", 1}, nil, true},
		{"nil", nil, nil, true},
		{"int", 5, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := decodeArchitectures(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeArchitectures(%v) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArchitectures) {
					t.Errorf("error should wrap ErrInvalidArchitectures, got %v", err)
				}
				return
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("decodeArchitectures(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}

	cfg.RootPolicy = "sometimes"
	cfg.Capabilities.Mode = "guess"
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidRootPolicy) || !errors.Is(err, ErrInvalidCapabilityMode) {
		t.Errorf("Validate() = %v, want both root policy and capability mode errors", err)
	}
	if errors.Is(err, ErrInvalidDedupePolicy) {
		t.Errorf("Validate() should not report dedupe policy, got %v", err)
	}
}

func TestSettingsEnvVars(t *testing.T) {
	t.Parallel()

	names := SettingsEnvVars()
	for _, want := range []string{EnvFunctionTimeout, EnvFunctionArchitectures, EnvUseCommonLayer} {
		if !slices.Contains(names, want) {
			t.Errorf("SettingsEnvVars() missing %s", want)
		}
	}
}
