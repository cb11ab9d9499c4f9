// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
)

const (
	// RootPolicyFirst stops at the first candidate root containing the API root.
	RootPolicyFirst RootPolicy = "first"
	// RootPolicyAll scans every candidate root, so one relative path may
	// produce several functions.
	RootPolicyAll RootPolicy = "all"

	// CapabilityModeAuto uses declared capabilities when a function has any
	// and falls back to controller inference otherwise.
	CapabilityModeAuto CapabilityMode = "auto"
	// CapabilityModeDeclared only uses capabilities listed in the project file.
	CapabilityModeDeclared CapabilityMode = "declared"
	// CapabilityModeInferred only scans controller files.
	CapabilityModeInferred CapabilityMode = "inferred"

	// DedupeNone keeps every route registration, duplicates included.
	DedupeNone DedupePolicy = "none"
	// DedupeVerb keeps the first registration of each verb and path pair.
	DedupeVerb DedupePolicy = "verb"
)

var (
	// ErrInvalidRootPolicy is returned for an unknown RootPolicy.
	ErrInvalidRootPolicy = errors.New("invalid root policy")
	// ErrInvalidCapabilityMode is returned for an unknown CapabilityMode.
	ErrInvalidCapabilityMode = errors.New("invalid capability mode")
	// ErrInvalidDedupePolicy is returned for an unknown DedupePolicy.
	ErrInvalidDedupePolicy = errors.New("invalid dedupe policy")
	// ErrInvalidArchitectures is returned when the architecture list is not a
	// JSON array of strings.
	ErrInvalidArchitectures = errors.New("invalid architectures")
)

type (
	// RootPolicy decides how candidate roots sharing a relative path are handled.
	RootPolicy string

	// CapabilityMode selects where route capabilities come from.
	CapabilityMode string

	// DedupePolicy selects how repeated route registrations are handled.
	DedupePolicy string

	// Config is the complete generator configuration.
	Config struct {
		// APIRoot is the resource tree directory name under each root.
		APIRoot string `mapstructure:"api_root"`
		// Roots are the candidate prefixes searched for APIRoot, in order.
		Roots []string `mapstructure:"roots"`
		// RootPolicy decides whether later roots are scanned once one matched.
		RootPolicy RootPolicy `mapstructure:"root_policy"`

		Sources      SourcesConfig      `mapstructure:"sources"`
		Controllers  ControllersConfig  `mapstructure:"controllers"`
		Capabilities CapabilitiesConfig `mapstructure:"capabilities"`
		Routes       RoutesConfig       `mapstructure:"routes"`
		Metadata     MetadataConfig     `mapstructure:"metadata"`
		Environment  EnvironmentConfig  `mapstructure:"environment"`
		Output       OutputConfig       `mapstructure:"output"`
		Layer        LayerConfig        `mapstructure:"layer"`

		// TSConfig is the tsconfig.json consulted for build metadata.
		TSConfig string `mapstructure:"tsconfig"`

		// Function holds the settings overridable by AWS_* variables.
		Function FunctionSettings `mapstructure:"function"`
	}

	// SourcesConfig classifies resource files. Patterns are doublestar globs
	// matched against lower-cased file names.
	SourcesConfig struct {
		Include []string `mapstructure:"include"`
		Exclude []string `mapstructure:"exclude"`
	}

	// ControllersConfig locates controller files.
	ControllersConfig struct {
		// Roots × Dirs are the directories listed for controller files.
		Roots []string `mapstructure:"roots"`
		Dirs  []string `mapstructure:"dirs"`
		// Exclude are doublestar globs for names that never match.
		Exclude []string `mapstructure:"exclude"`
		// RequireSuffix only accepts names whose stem ends with Suffix.
		RequireSuffix bool   `mapstructure:"require_suffix"`
		Suffix        string `mapstructure:"suffix"`
	}

	// CapabilitiesConfig selects the capability source. Declared keys are
	// function names, matched case-insensitively.
	CapabilitiesConfig struct {
		Mode     CapabilityMode      `mapstructure:"mode"`
		Declared map[string][]string `mapstructure:"declared"`
	}

	// RoutesConfig controls route registration.
	RoutesConfig struct {
		Dedupe DedupePolicy `mapstructure:"dedupe"`
	}

	// MetadataConfig controls build-metadata blocks.
	MetadataConfig struct {
		// Always emits a metadata block for single-file directories too.
		Always bool `mapstructure:"always"`
	}

	// EnvironmentConfig controls the variables projected into functions.
	EnvironmentConfig struct {
		// Deny adds names to the built-in denylist.
		Deny []string `mapstructure:"deny"`
		// Dotenv files are loaded before projection; missing files are skipped.
		Dotenv []string `mapstructure:"dotenv"`
	}

	// OutputConfig names the generated artifacts.
	OutputConfig struct {
		Template  string `mapstructure:"template"`
		Bundler   string `mapstructure:"bundler"`
		BundleDir string `mapstructure:"bundle_dir"`
	}

	// LayerConfig describes the shared layer used when UseCommonLayer is set.
	LayerConfig struct {
		Name       string `mapstructure:"name"`
		ContentURI string `mapstructure:"content_uri"`
	}

	// FunctionSettings are the named settings, each with a literal default and
	// a same-named AWS_* environment override.
	FunctionSettings struct {
		Timeout        int    `mapstructure:"timeout"`
		MemorySize     int    `mapstructure:"memory_size"`
		Tracing        string `mapstructure:"tracing"`
		APITracing     bool   `mapstructure:"api_tracing"`
		Runtime        string `mapstructure:"runtime"`
		Minify         bool   `mapstructure:"minify"`
		UseCommonLayer bool   `mapstructure:"use_common_layer"`
		// Architectures is decoded separately: the environment carries a JSON
		// array while the project file carries a list.
		Architectures []string `mapstructure:"-"`
	}
)

// Validate reports whether p is a known policy.
func (p RootPolicy) Validate() error {
	switch p {
	case RootPolicyFirst, RootPolicyAll:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidRootPolicy, p, RootPolicyFirst, RootPolicyAll)
	}
}

// Validate reports whether m is a known mode.
func (m CapabilityMode) Validate() error {
	switch m {
	case CapabilityModeAuto, CapabilityModeDeclared, CapabilityModeInferred:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCapabilityMode, m)
	}
}

// Validate reports whether d is a known policy.
func (d DedupePolicy) Validate() error {
	switch d {
	case DedupeNone, DedupeVerb:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDedupePolicy, d)
	}
}

// Validate checks the enumerated fields. Flags may override them after
// loading, so the CLI calls this again before generating.
func (c *Config) Validate() error {
	return errors.Join(
		c.RootPolicy.Validate(),
		c.Capabilities.Mode.Validate(),
		c.Routes.Dedupe.Validate(),
	)
}
