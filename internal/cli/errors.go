package cli

import (
	"errors"
	"fmt"
)

// ExitError carries the process exit code of a failed command. A command
// that returns one has already reported the failure to the user.
type ExitError struct {
	// Code is one of ExitCodeOK, ExitCodeError or ExitCodeRejected.
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError returns an [ExitError] for code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// IsExitError reports the exit code held by err, looking through wrapped
// errors. It returns false when err carries none.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
