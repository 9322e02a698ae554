// pkg/argus_err/errors.go

package argus_err

import (
	"errors"
)

// UserError marks an error as expected: the user (or the environment they
// pointed us at) caused it, the program did not misbehave. Expected errors
// are reported as warnings and exit 0 so batch scripting stays usable.
type UserError struct {
	cause error
}

func (e *UserError) Error() string {
	return e.cause.Error()
}

func (e *UserError) Unwrap() error {
	return e.cause
}

// NewExpectedError wraps an error for softer UX handling.
func NewExpectedError(err error) error {
	if err == nil {
		return nil
	}
	return &UserError{cause: err}
}

// IsExpectedUserError checks if the error is marked as expected.
func IsExpectedUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}
