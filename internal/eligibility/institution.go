package eligibility

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Program defaults for the four-year undergraduate programme.
const (
	DefaultMaxSemester       = 8
	DefaultMonthsPerSemester = 6
	DefaultYearsBack         = 5
	DefaultYearsAhead        = 2
)

// DefaultBranchCodes lists the RVCE branch codes accepted in institutional emails.
var DefaultBranchCodes = []string{"me", "cse", "ece", "eee", "cv", "ch", "bt", "ie", "ise", "te", "ai", "cs"}

var branchCodeRegexp = regexp.MustCompile(`^` + branchPattern + `$`)

// Institution describes the naming convention and programme shape of one college.
// It is plain configuration: adding a branch or a new college only touches this value.
type Institution struct {
	Name         string
	DomainSuffix string   // e.g. "@rvce.edu.in", including the "@"
	BranchCodes  []string // lowercase, 2-3 letters

	// Accepted two-digit enrollment years relative to the current year.
	YearsBack  int
	YearsAhead int

	MaxSemester       int
	MonthsPerSemester int
}

// DefaultInstitution returns the RVCE configuration.
func DefaultInstitution() Institution {
	return Institution{
		Name:              "RV College of Engineering",
		DomainSuffix:      "@rvce.edu.in",
		BranchCodes:       slices.Clone(DefaultBranchCodes),
		YearsBack:         DefaultYearsBack,
		YearsAhead:        DefaultYearsAhead,
		MaxSemester:       DefaultMaxSemester,
		MonthsPerSemester: DefaultMonthsPerSemester,
	}
}

// Validate checks the institution is usable by EmailParser and Calculator.
// All problems are reported together.
func (i Institution) Validate() error {
	var errs []error

	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, errors.New("institution name is required"))
	}
	if !strings.HasPrefix(i.DomainSuffix, "@") || len(i.DomainSuffix) < 2 {
		errs = append(errs, fmt.Errorf("domain suffix must start with '@', got %q", i.DomainSuffix))
	}
	if len(i.BranchCodes) == 0 {
		errs = append(errs, errors.New("at least one branch code is required"))
	}
	seen := make(map[string]bool, len(i.BranchCodes))
	for _, code := range i.BranchCodes {
		if !branchCodeRegexp.MatchString(code) || code != strings.ToLower(code) {
			errs = append(errs, fmt.Errorf("branch code %q must be 2-3 lowercase letters", code))
		}
		if seen[code] {
			errs = append(errs, fmt.Errorf("duplicate branch code %q", code))
		}
		seen[code] = true
	}
	if i.YearsBack < 0 || i.YearsAhead < 0 {
		errs = append(errs, fmt.Errorf("year window cannot be negative, got -%d/+%d", i.YearsBack, i.YearsAhead))
	}
	if i.MaxSemester < 1 {
		errs = append(errs, fmt.Errorf("max semester must be at least 1, got %d", i.MaxSemester))
	}
	if i.MonthsPerSemester < 1 {
		errs = append(errs, fmt.Errorf("months per semester must be at least 1, got %d", i.MonthsPerSemester))
	}

	return errors.Join(errs...)
}

// LookupBranch resolves a branch code, case-insensitively, against the closed set.
func (i Institution) LookupBranch(code string) (Branch, bool) {
	code = strings.ToLower(code)
	if !slices.Contains(i.BranchCodes, code) {
		return Branch{}, false
	}
	return Branch{code: code}, true
}

// clone returns a copy that shares no slices with i.
func (i Institution) clone() Institution {
	i.BranchCodes = slices.Clone(i.BranchCodes)
	return i
}
