package eligibility

import (
	"fmt"
	"strconv"

	domerrors "github.com/rvceconnect/rvce-connect-go/internal/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Reason identifies why a validation failed.
type Reason string

// Failure reasons.
const (
	ReasonRequired               Reason = "required"
	ReasonWrongDomain            Reason = "wrong_domain"
	ReasonMalformed              Reason = "malformed"
	ReasonUnknownBranch          Reason = "unknown_branch"
	ReasonYearOutOfWindow        Reason = "year_out_of_window"
	ReasonSemesterExceedsCeiling Reason = "semester_exceeds_ceiling"
	ReasonYearMismatch           Reason = "year_mismatch"
)

var reasonKinds = map[Reason]error{
	ReasonRequired:               domerrors.ErrRequired,
	ReasonWrongDomain:            domerrors.ErrWrongDomain,
	ReasonMalformed:              domerrors.ErrMalformedEmail,
	ReasonUnknownBranch:          domerrors.ErrUnknownBranch,
	ReasonYearOutOfWindow:        domerrors.ErrYearOutOfWindow,
	ReasonSemesterExceedsCeiling: domerrors.ErrSemesterExceedsCeiling,
	ReasonYearMismatch:           domerrors.ErrYearMismatch,
}

// Form field each reason is reported against.
var reasonFields = map[Reason]string{
	ReasonSemesterExceedsCeiling: "currentSemester",
	ReasonYearMismatch:           "yearOfJoining",
}

// Failure is a validation failure with a human-readable message.
type Failure struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

func newFailure(reason Reason, format string, args ...any) *Failure {
	return &Failure{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Err converts the failure into a *errors.ValidationError whose Kind matches
// the reason's sentinel error.
func (f *Failure) Err() error {
	if f == nil {
		return nil
	}
	field, ok := reasonFields[f.Reason]
	if !ok {
		field = "email"
	}
	return domerrors.NewValidationError(field, f.Message, reasonKinds[f.Reason])
}

// Identity holds the fields extracted from a valid institutional email.
type Identity struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Branch    Branch `json:"branch"`
	Year      string `json:"year"` // two digits, as written in the address
}

// EnrollmentYear expands the two-digit year to four digits ("24" -> 2024).
func (id Identity) EnrollmentYear() int {
	n, err := strconv.Atoi(id.Year)
	if err != nil {
		return 0
	}
	return 2000 + n
}

// DisplayName returns the name title-cased for display ("john", "doe" -> "John Doe").
func (id Identity) DisplayName() string {
	caser := cases.Title(language.English)
	return caser.String(id.FirstName + " " + id.LastName)
}

// EmailOutcome is the result of validating an email.
// Exactly one of Identity (when Failure is nil) or Failure is meaningful.
type EmailOutcome struct {
	Identity Identity
	Failure  *Failure
}

// Valid reports whether the email passed every check.
func (o EmailOutcome) Valid() bool {
	return o.Failure == nil
}

func invalidEmail(f *Failure) EmailOutcome {
	return EmailOutcome{Failure: f}
}

// SemesterOutcome is the result of checking a declared semester against the ceiling.
type SemesterOutcome struct {
	Valid      bool
	MaxAllowed int
	Failure    *Failure
}
