// pkg/argus_err/classification.go
//
// Error classification with exit codes. Remote-query tools touch a lot of
// machines that are allowed to be broken; the category decides whether a
// failure aborts the run or is reported and skipped.

package argus_err

import (
	"errors"
	"fmt"
)

// Category classifies errors for handling and exit codes.
type Category int

const (
	// CategoryInternal - bugs in argus itself (exit 3)
	CategoryInternal Category = iota
	// CategoryValidation - bad or missing input, fails before any remote call (exit 2)
	CategoryValidation
	// CategoryConnectivity - remote host or directory service unreachable (exit 1)
	CategoryConnectivity
	// CategoryNotFound - named group, user, or object absent (exit 1)
	CategoryNotFound
	// CategoryExpansion - a nested lookup during indirect traversal failed (exit 1)
	CategoryExpansion
	// CategoryMutation - add/remove rejected by the remote service (exit 1)
	CategoryMutation
	// CategoryUser - user cancelled or interrupted (exit 130)
	CategoryUser
)

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryConnectivity:
		return "connectivity"
	case CategoryNotFound:
		return "not_found"
	case CategoryExpansion:
		return "expansion"
	case CategoryMutation:
		return "mutation"
	case CategoryUser:
		return "user"
	default:
		return "internal"
	}
}

// ClassifiedError wraps an error with its category.
type ClassifiedError struct {
	Category Category
	Message  string
	Cause    error
}

func (e *ClassifiedError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the process exit code for this category.
func (e *ClassifiedError) ExitCode() int {
	switch e.Category {
	case CategoryUser:
		return 130 // standard for SIGINT
	case CategoryValidation:
		return 2
	case CategoryInternal:
		return 3
	default:
		return 1
	}
}

// GetExitCode extracts an exit code from any error: 0 for nil and expected
// user errors, the classified code when present, 1 otherwise.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	if IsExpectedUserError(err) {
		return 0
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ExitCode()
	}
	return 1
}

// IsCategory reports whether err carries the given category.
func IsCategory(err error, c Category) bool {
	var classified *ClassifiedError
	return errors.As(err, &classified) && classified.Category == c
}

func NewValidationError(format string, args ...interface{}) error {
	return &ClassifiedError{Category: CategoryValidation, Message: fmt.Sprintf(format, args...)}
}

func NewConnectivityError(message string, cause error) error {
	return &ClassifiedError{Category: CategoryConnectivity, Message: message, Cause: cause}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &ClassifiedError{Category: CategoryNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewExpansionError(message string, cause error) error {
	return &ClassifiedError{Category: CategoryExpansion, Message: message, Cause: cause}
}

func NewMutationError(message string, cause error) error {
	return &ClassifiedError{Category: CategoryMutation, Message: message, Cause: cause}
}

func NewInterruptError(message string, cause error) error {
	return &ClassifiedError{Category: CategoryUser, Message: message, Cause: cause}
}

func NewInternalError(message string, cause error) error {
	return &ClassifiedError{Category: CategoryInternal, Message: message, Cause: cause}
}
