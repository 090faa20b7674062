package agrolib

import (
	"errors"
	"fmt"
)

var (
	ErrRunNotFound      = errors.New("run you are looking for is not found")
	ErrFlushRunNotFound = errors.New("run you are trying to flush is not found")
	ErrFlushRunActive   = errors.New("run you are trying to flush is still active")

	ErrRunNotStoppable = errors.New("run is not running or scheduled")
)

// ValidationError reports a structural problem in an agromanagement
// definition: non-chronological campaigns, window violations, duplicate
// event entries, unknown signal names or an empty definition. It is
// raised while loading or initializing and is never retried.
type ValidationError struct {
	msg string
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.msg
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
