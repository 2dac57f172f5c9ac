// Package errors provides the structured error type shared by the command
// dispatcher, the world store and the persistence layer.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with code, message, and metadata
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code.
func (e *Error) Is(target error) bool {
	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// WithMeta adds metadata to the error
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error, preserving its code if it's an Error.
// Foreign errors become CodeInternal.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: message, Cause: err, Meta: existing.Meta}
	}
	return &Error{Code: CodeInternal, Message: message, Cause: err}
}

func Wrapf(err error, format string, args ...any) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps err under an explicit code.
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

func Validation(message string) *Error { return New(CodeValidation, message) }

func Validationf(format string, args ...any) *Error { return Newf(CodeValidation, format, args...) }

func NotFound(message string) *Error { return New(CodeNotFound, message) }

func NotFoundf(format string, args ...any) *Error { return Newf(CodeNotFound, format, args...) }

func Conflict(message string) *Error { return New(CodeConflict, message) }

func Conflictf(format string, args ...any) *Error { return Newf(CodeConflict, format, args...) }

func Internal(message string) *Error { return New(CodeInternal, message) }

// Persistence wraps a storage failure.
func Persistence(err error, message string) *Error {
	return WrapWithCode(err, CodePersistence, message)
}

func Persistencef(err error, format string, args ...any) *Error {
	return WrapWithCode(err, CodePersistence, fmt.Sprintf(format, args...))
}

// GetCode returns the code of the outermost *Error in err's chain, or
// CodeInternal for anything else.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Message returns the player-facing message of err: the outermost *Error's
// message, or err.Error() for foreign errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func IsValidation(err error) bool  { return err != nil && GetCode(err) == CodeValidation }
func IsNotFound(err error) bool    { return err != nil && GetCode(err) == CodeNotFound }
func IsConflict(err error) bool    { return err != nil && GetCode(err) == CodeConflict }
func IsPersistence(err error) bool { return err != nil && GetCode(err) == CodePersistence }

// As is re-exported so callers importing this package under the name
// "errors" keep the stdlib helpers at hand.
func As(err error, target any) bool { return errors.As(err, target) }

func Is(err, target error) bool { return errors.Is(err, target) }
