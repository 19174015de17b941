package errors

import (
	"errors"
	"fmt"
)

// ErrorWrapper tags errors from one module operation, e.g. NewWrapper("api", "bind_signup").
type ErrorWrapper struct {
	module string
	op     string
}

// NewWrapper returns a wrapper for op in module.
func NewWrapper(module, op string) *ErrorWrapper {
	return &ErrorWrapper{module: module, op: op}
}

// Wrap attaches the operation and a message safe to show to the caller.
// A nil err stays nil.
func (w *ErrorWrapper) Wrap(err error, userMessage string) error {
	if err == nil {
		return nil
	}
	return &WrappedError{Module: w.module, Operation: w.op, Cause: err, UserMessage: userMessage}
}

// Wrapf is Wrap with a formatted user message.
func (w *ErrorWrapper) Wrapf(err error, format string, args ...any) error {
	return w.Wrap(err, fmt.Sprintf(format, args...))
}

// WrappedError keeps the internal cause for logs next to the user-facing message.
type WrappedError struct {
	Module      string // e.g. "api"
	Operation   string // e.g. "bind_semester_check"
	Cause       error
	UserMessage string
}

func (e *WrappedError) Error() string {
	return fmt.Sprintf("[%s:%s] %s: %v", e.Module, e.Operation, e.UserMessage, e.Cause)
}

func (e *WrappedError) Unwrap() error {
	return e.Cause
}

// GetUserMessage returns the first user-facing message found in err's chain:
// a WrappedError's UserMessage or a ValidationError's Message.
// Other errors fall back to Error().
func GetUserMessage(err error) string {
	if err == nil {
		return ""
	}
	var wrapped *WrappedError
	if errors.As(err, &wrapped) {
		return wrapped.UserMessage
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
