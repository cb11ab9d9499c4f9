// SPDX-License-Identifier: MPL-2.0

// Package config loads samsynth's project configuration and the named
// function settings.
//
// Values are layered with Viper: literal defaults, then the optional project
// file (samsynth.cue validated against an embedded CUE schema, or
// samsynth.toml), then environment variables such as AWS_FUNCTION_TIMEOUT.
// The tsconfig.json reader supplies the esbuild target and source-map flags.
package config
