// Package signup validates the student signup form. It correlates the
// institutional email, the declared joining date and the declared semester
// and reports one message per field.
package signup

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rvceconnect/rvce-connect-go/internal/eligibility"
	domerrors "github.com/rvceconnect/rvce-connect-go/internal/errors"
	"github.com/rvceconnect/rvce-connect-go/internal/stringutil"
)

// Form field names, as submitted by the signup page.
const (
	FieldFullName        = "fullName"
	FieldEmail           = "email"
	FieldYearOfJoining   = "yearOfJoining"
	FieldMonthOfJoining  = "monthOfJoining"
	FieldCurrentSemester = "currentSemester"
	FieldSection         = "section"
)

var fieldOrder = []string{
	FieldFullName, FieldEmail, FieldYearOfJoining, FieldMonthOfJoining, FieldCurrentSemester, FieldSection,
}

// DefaultSections are the class sections a student can pick.
var DefaultSections = []string{"A", "B", "C", "D"}

// Form is the raw signup submission. Select widgets submit strings.
type Form struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email" binding:"max=254"`
	YearOfJoining   string `json:"yearOfJoining"`
	MonthOfJoining  string `json:"monthOfJoining"`
	CurrentSemester string `json:"currentSemester"`
	Section         string `json:"section"`
	Anonymous       bool   `json:"anonymous"`
}

// Result holds per-field messages and, when available, the derived values.
type Result struct {
	Errors             map[string]string
	Identity           *eligibility.Identity
	MaxAllowedSemester int // 0 when the joining date was missing or malformed
}

// Valid reports whether the form had no errors.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err joins the field errors in form order, or returns nil.
func (r Result) Err() error {
	var errs []error
	for _, field := range fieldOrder {
		if msg, ok := r.Errors[field]; ok {
			errs = append(errs, domerrors.NewValidationError(field, msg, nil))
		}
	}
	return errors.Join(errs...)
}

// Validator checks signup forms for one institution.
type Validator struct {
	parser   *eligibility.EmailParser
	calc     *eligibility.Calculator
	sections []string
}

// NewValidator creates a Validator for inst.
func NewValidator(inst eligibility.Institution) *Validator {
	return &Validator{
		parser:   eligibility.NewEmailParser(inst),
		calc:     eligibility.NewCalculator(inst),
		sections: DefaultSections,
	}
}

// Validate checks every field of f as of now.
func (v *Validator) Validate(f Form, now time.Time) Result {
	res := Result{Errors: make(map[string]string)}

	emailOutcome := v.parser.Validate(f.Email, now)
	if emailOutcome.Valid() {
		id := emailOutcome.Identity
		res.Identity = &id
	} else {
		res.Errors[FieldEmail] = emailOutcome.Failure.Message
	}

	year, yearOK := v.checkYear(f.YearOfJoining, &res)
	month, monthOK := v.checkMonth(f.MonthOfJoining, &res)

	if yearOK && res.Identity != nil {
		if failure := eligibility.CheckEnrollmentYear(*res.Identity, year); failure != nil {
			res.Errors[FieldYearOfJoining] = failure.Message
		}
	}

	if yearOK && monthOK {
		enroll := eligibility.EnrollmentDate{Year: year, Month: month}
		if v.calc.IsFutureEnrollment(enroll, now) {
			res.Errors[FieldMonthOfJoining] = "Joining date cannot be in the future"
		}
		// A future date still has a ceiling of 1, so the semester field is checked too.
		res.MaxAllowedSemester = v.calc.AllowedSemester(enroll, now)
	}

	v.checkSemester(f.CurrentSemester, &res)

	if stringutil.IsBlank(f.FullName) {
		res.Errors[FieldFullName] = "Full name is required"
	}

	v.checkSection(f.Section, &res)

	return res
}

func (v *Validator) checkYear(raw string, res *Result) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		res.Errors[FieldYearOfJoining] = "Year of joining is required"
		return 0, false
	}
	// IsNumeric rejects signs ("+3", "-1") that Atoi accepts; Atoi still
	// fails on values too large for an int.
	year, err := strconv.Atoi(raw)
	if !stringutil.IsNumeric(raw) || err != nil || year <= 0 {
		res.Errors[FieldYearOfJoining] = "Year of joining must be a number"
		return 0, false
	}
	return year, true
}

func (v *Validator) checkMonth(raw string, res *Result) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		res.Errors[FieldMonthOfJoining] = "Month of joining is required"
		return 0, false
	}
	month, err := strconv.Atoi(raw)
	if !stringutil.IsNumeric(raw) || err != nil || month < 1 || month > 12 {
		res.Errors[FieldMonthOfJoining] = "Month of joining must be between 1 and 12"
		return 0, false
	}
	return month, true
}

func (v *Validator) checkSemester(raw string, res *Result) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		res.Errors[FieldCurrentSemester] = "Current semester is required"
		return
	}
	maxSemester := v.calc.MaxSemester()
	semester, err := strconv.Atoi(raw)
	if !stringutil.IsNumeric(raw) || err != nil || semester < 1 || semester > maxSemester {
		res.Errors[FieldCurrentSemester] = fmt.Sprintf("Current semester must be between 1 and %d", maxSemester)
		return
	}
	if res.MaxAllowedSemester > 0 && semester > res.MaxAllowedSemester {
		res.Errors[FieldCurrentSemester] = fmt.Sprintf("Maximum allowed semester is %d", res.MaxAllowedSemester)
	}
}

func (v *Validator) checkSection(raw string, res *Result) {
	section := strings.ToUpper(strings.TrimSpace(raw))
	if section == "" {
		res.Errors[FieldSection] = "Section is required"
		return
	}
	if !slices.Contains(v.sections, section) {
		res.Errors[FieldSection] = "Section must be one of " + strings.Join(v.sections, ", ")
	}
}
