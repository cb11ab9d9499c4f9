// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/backapirest/samsynth/internal/issue"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// displayError renders actionable errors with their suggestions when printed.
type displayError struct {
	err     error
	verbose bool
}

func (e displayError) Error() string { return formatErrorForDisplay(e.err, e.verbose) }

func (e displayError) Unwrap() error { return e.err }

// formatErrorForDisplay uses ActionableError.Format when available and
// falls back to the plain message.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
