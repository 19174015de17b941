package eligibility

import (
	"errors"
	"fmt"
	"time"

	domerrors "github.com/rvceconnect/rvce-connect-go/internal/errors"
)

// MaxEnrollmentYear is the largest year EnrollmentDate.Validate accepts.
const MaxEnrollmentYear = 9999

// EnrollmentDate is the year and month a student began the programme.
type EnrollmentDate struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1-12
}

// Validate checks the month range and that the year is in 1..MaxEnrollmentYear.
func (d EnrollmentDate) Validate() error {
	var errs []error
	if d.Year <= 0 || d.Year > MaxEnrollmentYear {
		errs = append(errs, domerrors.NewValidationError("year", fmt.Sprintf("invalid enrollment year %d", d.Year), nil))
	}
	if d.Month < 1 || d.Month > 12 {
		errs = append(errs, domerrors.NewValidationError("month", fmt.Sprintf("enrollment month must be between 1 and 12, got %d", d.Month), nil))
	}
	return errors.Join(errs...)
}

// Calculator derives the semester ceiling from an enrollment date.
type Calculator struct {
	maxSemester       int
	monthsPerSemester int
}

// NewCalculator creates a calculator using inst's programme shape.
func NewCalculator(inst Institution) *Calculator {
	return &Calculator{
		maxSemester:       inst.MaxSemester,
		monthsPerSemester: inst.MonthsPerSemester,
	}
}

// MaxSemester returns the programme length in semesters.
func (c *Calculator) MaxSemester() int {
	return c.maxSemester
}

// ElapsedMonths returns whole calendar months from the enrollment month to now's month.
// It is negative for enrollments after now. Years far outside Validate's range overflow.
func (c *Calculator) ElapsedMonths(enroll EnrollmentDate, now time.Time) int {
	return (now.Year()-enroll.Year)*12 + (int(now.Month()) - enroll.Month)
}

// IsFutureEnrollment reports whether the enrollment month lies after now's month.
// AllowedSemester does not reject such dates; callers that care must check this.
func (c *Calculator) IsFutureEnrollment(enroll EnrollmentDate, now time.Time) bool {
	if enroll.Year != now.Year() {
		return enroll.Year > now.Year()
	}
	return enroll.Month > int(now.Month())
}

// AllowedSemester returns the highest semester a student enrolled at enroll can be
// in at now. The enrollment month starts semester 1 and every MonthsPerSemester
// months adds one, capped at MaxSemester. Future enrollments yield 1.
//
// Examples with 6-month semesters:
//   - enrolled 2022-08, now 2024-03 -> 19 months -> semester 4
//   - enrolled 2018-01, now 2024-03 -> semester 8 (capped)
func (c *Calculator) AllowedSemester(enroll EnrollmentDate, now time.Time) int {
	if c.IsFutureEnrollment(enroll, now) {
		return 1
	}
	// Enrollments older than the whole programme cap without month arithmetic.
	if programmeYears := c.maxSemester*c.monthsPerSemester/12 + 1; enroll.Year < now.Year()-programmeYears {
		return c.maxSemester
	}
	semester := floorDiv(c.ElapsedMonths(enroll, now), c.monthsPerSemester) + 1
	return min(max(semester, 1), c.maxSemester)
}

// CheckEligibility flags a declared semester above the ceiling for enroll.
func (c *Calculator) CheckEligibility(declared int, enroll EnrollmentDate, now time.Time) SemesterOutcome {
	maxAllowed := c.AllowedSemester(enroll, now)
	if declared > maxAllowed {
		return SemesterOutcome{
			Valid:      false,
			MaxAllowed: maxAllowed,
			Failure: newFailure(ReasonSemesterExceedsCeiling,
				"You can only be in semester %d or lower based on your joining date", maxAllowed),
		}
	}
	return SemesterOutcome{Valid: true, MaxAllowed: maxAllowed}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
