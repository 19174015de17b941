// Package errors provides domain-specific error types and sentinel errors
// for the signup verification checks.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per validation failure kind.
// Use errors.Is() to check these errors in your code.
var (
	// ErrRequired indicates a required value was empty.
	ErrRequired = errors.New("value is required")

	// ErrWrongDomain indicates an email outside the institutional domain.
	ErrWrongDomain = errors.New("wrong email domain")

	// ErrMalformedEmail indicates the local part does not follow the naming convention.
	ErrMalformedEmail = errors.New("malformed institutional email")

	// ErrUnknownBranch indicates a branch code outside the configured set.
	ErrUnknownBranch = errors.New("unknown branch code")

	// ErrYearOutOfWindow indicates an enrollment year outside the accepted window.
	ErrYearOutOfWindow = errors.New("year outside accepted window")

	// ErrSemesterExceedsCeiling indicates a declared semester above the computed ceiling.
	ErrSemesterExceedsCeiling = errors.New("semester exceeds ceiling")

	// ErrYearMismatch indicates the email year disagrees with the declared year.
	ErrYearMismatch = errors.New("enrollment year mismatch")

	// ErrInvalidInput indicates a malformed request or field value.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
	Kind    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap returns the sentinel kind so errors.Is matches it.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// NewValidationError creates a new validation error.
// A nil kind defaults to ErrInvalidInput.
func NewValidationError(field, message string, kind error) *ValidationError {
	if kind == nil {
		kind = ErrInvalidInput
	}
	return &ValidationError{
		Field:   field,
		Message: message,
		Kind:    kind,
	}
}

// IsRequired reports whether err is (or wraps) ErrRequired.
func IsRequired(err error) bool {
	return errors.Is(err, ErrRequired)
}

// IsInvalidInput reports whether err is (or wraps) ErrInvalidInput.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsEmailError reports whether err comes from institutional email validation.
func IsEmailError(err error) bool {
	return errors.Is(err, ErrWrongDomain) ||
		errors.Is(err, ErrMalformedEmail) ||
		errors.Is(err, ErrUnknownBranch) ||
		errors.Is(err, ErrYearOutOfWindow)
}

// IsEligibilityError reports whether err comes from a cross-field eligibility check.
func IsEligibilityError(err error) bool {
	return errors.Is(err, ErrSemesterExceedsCeiling) || errors.Is(err, ErrYearMismatch)
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
// Validation errors describe bad input, not server faults.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
