// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/backapirest/samsynth/internal/issue"
	"github.com/backapirest/samsynth/pkg/cueutil"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the project config file name without extension.
	ConfigFileName = "samsynth"
	// ConfigFileExtCUE is the schema-validated config format.
	ConfigFileExtCUE = "cue"
	// ConfigFileExtTOML is the alternative config format.
	ConfigFileExtTOML = "toml"
)

//go:embed config_schema.cue
var configSchema string

// loadWithOptions loads defaults, the project file and the environment, in
// that order of increasing precedence. It returns the resolved file path ("" if
// no file was found).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	if err := bindSettings(v, opts.Environ); err != nil {
		return nil, "", err
	}

	resolvedPath := opts.ConfigFilePath
	if resolvedPath != "" {
		if !fileExists(resolvedPath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load project configuration").
				WithResource(resolvedPath).
				WithSuggestion("Verify the --config path is correct").
				Wrap(fmt.Errorf("config file not found: %s", resolvedPath)).
				BuildError()
		}
	} else {
		resolvedPath = findConfigFile(opts.BaseDir)
	}

	if resolvedPath != "" {
		if err := loadFileIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load project configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file syntax is valid").
				WithSuggestion("Verify the values match the samsynth configuration schema").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	archs, err := decodeArchitectures(v.Get("function.architectures"))
	if err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("read function settings").
			WithResource(EnvFunctionArchitectures).
			WithSuggestion(`Use a JSON array of strings, e.g. ["x86_64"] or ["arm64"]`).
			Wrap(err).
			BuildError()
	}
	cfg.Function.Architectures = archs

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("api_root", d.APIRoot)
	v.SetDefault("roots", d.Roots)
	v.SetDefault("root_policy", string(d.RootPolicy))
	v.SetDefault("sources.include", d.Sources.Include)
	v.SetDefault("sources.exclude", d.Sources.Exclude)
	v.SetDefault("controllers.roots", d.Controllers.Roots)
	v.SetDefault("controllers.dirs", d.Controllers.Dirs)
	v.SetDefault("controllers.exclude", d.Controllers.Exclude)
	v.SetDefault("controllers.require_suffix", d.Controllers.RequireSuffix)
	v.SetDefault("controllers.suffix", d.Controllers.Suffix)
	v.SetDefault("capabilities.mode", string(d.Capabilities.Mode))
	v.SetDefault("routes.dedupe", string(d.Routes.Dedupe))
	v.SetDefault("metadata.always", d.Metadata.Always)
	v.SetDefault("environment.deny", d.Environment.Deny)
	v.SetDefault("environment.dotenv", d.Environment.Dotenv)
	v.SetDefault("output.template", d.Output.Template)
	v.SetDefault("output.bundler", d.Output.Bundler)
	v.SetDefault("output.bundle_dir", d.Output.BundleDir)
	v.SetDefault("layer.name", d.Layer.Name)
	v.SetDefault("layer.content_uri", d.Layer.ContentURI)
	v.SetDefault("tsconfig", d.TSConfig)
	v.SetDefault("function.timeout", d.Function.Timeout)
	v.SetDefault("function.memory_size", d.Function.MemorySize)
	v.SetDefault("function.tracing", d.Function.Tracing)
	v.SetDefault("function.api_tracing", d.Function.APITracing)
	v.SetDefault("function.runtime", d.Function.Runtime)
	v.SetDefault("function.architectures", defaultArchitectures)
	v.SetDefault("function.minify", d.Function.Minify)
	v.SetDefault("function.use_common_layer", d.Function.UseCommonLayer)
}

// bindSettings wires the AWS_* overrides. Without an explicit environment
// Viper reads the process; otherwise the non-empty values found in environ
// are set directly, which ranks them above the project file the same way.
func bindSettings(v *viper.Viper, environ []string) error {
	if environ == nil {
		for _, b := range envBindings {
			if err := v.BindEnv(b.key, b.env); err != nil {
				return fmt.Errorf("bind %s: %w", b.env, err)
			}
		}
		return nil
	}

	values := make(map[string]string, len(environ))
	for _, kv := range environ {
		if name, value, ok := strings.Cut(kv, "="); ok {
			values[name] = value
		}
	}
	for _, b := range envBindings {
		if value := values[b.env]; value != "" {
			v.Set(b.key, value)
		}
	}
	return nil
}

// findConfigFile looks for samsynth.cue, then samsynth.toml, in dir.
func findConfigFile(dir string) string {
	for _, ext := range []string{ConfigFileExtCUE, ConfigFileExtTOML} {
		candidate := filepath.Join(dir, ConfigFileName+"."+ext)
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func loadFileIntoViper(v *viper.Viper, path string) error {
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case ConfigFileExtTOML:
		return loadTOMLIntoViper(v, path)
	default:
		return loadCUEIntoViper(v, path)
	}
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into v.
// It decodes to a map rather than going through cueutil.ParseAndDecode because
// Viper merges maps and every field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	unified := schemaValue.LookupPath(cue.ParsePath("#Config")).Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// loadTOMLIntoViper merges a TOML file into v. TOML files get no schema
// check beyond Config.Validate.
func loadTOMLIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	var configMap map[string]any
	if err := toml.Unmarshal(data, &configMap); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// decodeArchitectures accepts the JSON array string used by the environment
// and defaults, or the list form used by project files.
func decodeArchitectures(raw any) ([]string, error) {
	switch val := raw.(type) {
	case nil:
		return nil, fmt.Errorf("%w: no value", ErrInvalidArchitectures)
	case string:
		var archs []string
		if err := json.Unmarshal([]byte(val), &archs); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidArchitectures, val, err)
		}
		return archs, nil
	case []string:
		return append([]string(nil), val...), nil
	case []any:
		archs := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T, not a string", ErrInvalidArchitectures, i, item)
			}
			archs = append(archs, s)
		}
		return archs, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidArchitectures, raw)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
