// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test on setup errors
// instead of returning them: environment changes (MustSetenv, MustUnsetenv),
// working-directory changes (MustChdir) and fixture trees (WriteTree).
package testutil
