// SPDX-License-Identifier: MPL-2.0

package config

// Environment variables overriding FunctionSettings.
const (
	EnvFunctionTimeout       = "AWS_FUNCTION_TIMEOUT"
	EnvFunctionMemorySize    = "AWS_FUNCTION_MEMORY_SIZE"
	EnvFunctionTracing       = "AWS_FUNCTION_TRACING"
	EnvAPITracingEnabled     = "AWS_API_TRACING_ENABLED"
	EnvFunctionRuntime       = "AWS_FUNCTION_RUNTIME"
	EnvFunctionArchitectures = "AWS_FUNCTION_ARCHITECTURES"
	EnvFunctionMinify        = "AWS_FUNCTION_MINIFY"
	EnvUseCommonLayer        = "AWS_USE_COMMON_LAYER"
)

// envBindings maps Viper keys to their environment variable.
var envBindings = []struct {
	key string
	env string
}{
	{"function.timeout", EnvFunctionTimeout},
	{"function.memory_size", EnvFunctionMemorySize},
	{"function.tracing", EnvFunctionTracing},
	{"function.api_tracing", EnvAPITracingEnabled},
	{"function.runtime", EnvFunctionRuntime},
	{"function.architectures", EnvFunctionArchitectures},
	{"function.minify", EnvFunctionMinify},
	{"function.use_common_layer", EnvUseCommonLayer},
}

// defaultArchitectures is the literal default of AWS_FUNCTION_ARCHITECTURES.
const defaultArchitectures = `["x86_64"]`

// SettingsEnvVars returns the environment variables read as settings. They
// configure the generator itself and are kept out of function environments.
func SettingsEnvVars() []string {
	names := make([]string, 0, len(envBindings))
	for _, b := range envBindings {
		names = append(names, b.env)
	}
	return names
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		APIRoot: "api",
		Roots: []string{
			".",
			"./src",
			"./source",
			"./src/pages",
			"./source/pages",
			"./dist",
			"./dist/src",
			"./dist/source",
			"./dist/src/pages",
			"./dist/source/pages",
		},
		RootPolicy: RootPolicyFirst,
		Sources: SourcesConfig{
			Include: []string{"*.js", "*.mjs", "*.cjs"},
			Exclude: []string{"*.map", "*handler*"},
		},
		Controllers: ControllersConfig{
			Roots:   []string{"./src", "./source", "./dist/src", "./dist/source"},
			Dirs:    []string{"controller", "controllers"},
			Exclude: []string{"*.ts", "*.map"},
			Suffix:  "controller",
		},
		Capabilities: CapabilitiesConfig{
			Mode:     CapabilityModeAuto,
			Declared: map[string][]string{},
		},
		Routes:   RoutesConfig{Dedupe: DedupeNone},
		Metadata: MetadataConfig{},
		Environment: EnvironmentConfig{
			Dotenv: []string{".env"},
		},
		Output: OutputConfig{
			Template:  "template.yaml",
			Bundler:   "esbuild.config.json",
			BundleDir: ".aws-sam/esbuild",
		},
		Layer: LayerConfig{
			Name:       "CommonLayer",
			ContentURI: "./layer",
		},
		TSConfig: "tsconfig.json",
		Function: FunctionSettings{
			Timeout:       3,
			MemorySize:    128,
			Tracing:       "Active",
			APITracing:    true,
			Runtime:       "nodejs16.x",
			Minify:        true,
			Architectures: []string{"x86_64"},
		},
	}
}
