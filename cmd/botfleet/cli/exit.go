// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError requests a non-zero exit without an extra error message;
// the command has already written its own output. process.Fatal
// honours the code through the ExitCode method.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return ""
}

// ExitCode returns the requested exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// String describes the exit for logs.
func (e *ExitError) String() string {
	return fmt.Sprintf("exit code %d", e.Code)
}
