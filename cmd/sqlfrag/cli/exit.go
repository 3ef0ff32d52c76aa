// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError requests a non-zero exit without an error message. The
// command has already written its own report, as "sqlfrag check" does
// when it finds problems.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode is checked by main to tell a reported outcome from an error
// that still needs printing.
func (e *ExitError) ExitCode() int {
	return e.Code
}
