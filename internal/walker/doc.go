// SPDX-License-Identifier: MPL-2.0

// Package walker finds resource directories under the API root of each
// candidate source root.
//
// A resource directory is any directory holding at least one qualifying
// source file. The first qualifying file in a directory is its primary file;
// later ones are secondary. Missing roots and directories that vanish during
// the walk are reported as warning diagnostics instead of errors.
package walker
