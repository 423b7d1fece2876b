package core

import "github.com/pkg/errors"

// FieldError pins a validation message to the offending field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a rejected input. Fields, when present, carries the
// per-field breakdown; Err alone means a single flat message.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown is an unrecoverable state; whoever catches it should stop the
// process rather than carry on serving.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown reports whether err, or its cause, asks for a shutdown.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
