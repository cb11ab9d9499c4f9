// SPDX-License-Identifier: MPL-2.0

// Package synth runs a complete generation: it walks the resource tree,
// resolves routes and capabilities, builds the SAM template and the esbuild
// configuration, and hands both to an artifact sink in one batch.
package synth
