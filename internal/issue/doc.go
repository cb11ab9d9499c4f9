// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors for the samsynth CLI.
//
// An ActionableError records which generation step failed, the file or
// directory involved, and hints the user can act on. The CLI boundary renders
// it with Format; everything below the boundary only wraps.
package issue
