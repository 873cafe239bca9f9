package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Code is a sentinel error used for classification with errors.Is.
type Code string

func (c Code) Error() string { return string(c) }

// Error pairs a Code with an underlying error carrying the stack and
// message from pkg/errors.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, someCode) work even when wrapped.
func (e *Error) Is(target error) bool {
	t, ok := target.(Code)
	if !ok {
		return false
	}
	return e.Code == t
}

func New(code Code, message string) error {
	return &Error{
		Code: code,
		Err:  errors.New(message),
	}
}

func Newf(code Code, format string, args ...any) error {
	return &Error{
		Code: code,
		Err:  errors.Errorf(format, args...),
	}
}

// Wrap wraps an existing error with message and stack.
// If err is nil, returns nil (Go convention).
func Wrap(code Code, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code: code,
		Err:  errors.Wrap(err, message),
	}
}

// Wrapf is Wrap with a format string.
func Wrapf(code Code, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code: code,
		Err:  errors.Wrapf(err, format, args...),
	}
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As[T error](err error) (*T, bool) {
	var target T
	if errors.As(err, &target) {
		return &target, true
	}
	return nil, false
}
