package plan

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes plan resolution failures.
type ErrorCode string

const (
	// ErrCodeParseFailed indicates the document is not a key/value mapping.
	ErrCodeParseFailed ErrorCode = "PARSE_FAILED"

	// ErrCodeSchemaViolation indicates an option has the wrong type.
	ErrCodeSchemaViolation ErrorCode = "SCHEMA_VIOLATION"
)

// Error is returned when a plan document cannot be resolved.
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

// IsParseError reports whether err is a plan parse failure.
func IsParseError(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Code == ErrCodeParseFailed
}

// IsSchemaError reports whether err is a plan schema violation.
func IsSchemaError(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Code == ErrCodeSchemaViolation
}
