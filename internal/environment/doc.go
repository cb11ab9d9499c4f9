// SPDX-License-Identifier: MPL-2.0

// Package environment projects the ambient process environment into the
// variables map of every generated function.
//
// Host, shell and tooling variables are dropped by a fixed denylist, as are
// AWS credentials, names reserved by the Lambda runtime and samsynth's own
// settings. Everything else passes through with embedded newlines escaped.
package environment
