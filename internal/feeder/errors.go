package feeder

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes feeder failures.
type ErrorCode string

const (
	// ErrCodeNoOutput indicates Work was called before an output was attached.
	ErrCodeNoOutput ErrorCode = "NO_OUTPUT"

	// ErrCodeBuildFailed indicates a plan could not be generated.
	ErrCodeBuildFailed ErrorCode = "BUILD_FAILED"

	// ErrCodeClosed indicates a plan was submitted after Close.
	ErrCodeClosed ErrorCode = "CLOSED"
)

// Error is a feeder failure with a machine-readable code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so errors.Is(err, ErrNoOutput)
// works on wrapped values.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// ErrNoOutput is returned by Work when no output is attached.
var ErrNoOutput = &Error{Code: ErrCodeNoOutput, Message: "no output attached"}

// IsNoOutput reports whether err is ErrNoOutput.
func IsNoOutput(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Code == ErrCodeNoOutput
}

// ErrClosed is returned by FeedTestPlan and BuildPlan after Close.
var ErrClosed = &Error{Code: ErrCodeClosed, Message: "feeder closed"}

// IsClosed reports whether err is ErrClosed.
func IsClosed(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Code == ErrCodeClosed
}

// IsBuildError reports whether err is a plan generation failure.
func IsBuildError(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Code == ErrCodeBuildFailed
}
