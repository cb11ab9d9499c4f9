// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the samsynth command line.
//
// The root command loads the project configuration, generates template.yaml
// and esbuild.config.json, and optionally keeps regenerating them while the
// project sources change.
package cmd
