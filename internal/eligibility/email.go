package eligibility

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Local-part grammar fragments: firstname[+.]lastname.branchYY
const (
	namePattern   = `[a-z]+`
	branchPattern = `[a-z]{2,3}`
	yearPattern   = `\d{2}`
)

var localPartRegexp = regexp.MustCompile(
	`(?i)^(` + namePattern + `)[+.](` + namePattern + `)\.(` + branchPattern + `)(` + yearPattern + `)$`,
)

// EmailParser validates institutional email addresses.
type EmailParser struct {
	inst       Institution
	branchList string
}

// NewEmailParser creates a parser for inst. inst is copied, so later changes
// to the caller's value have no effect. It should pass Institution.Validate.
func NewEmailParser(inst Institution) *EmailParser {
	inst = inst.clone()
	return &EmailParser{
		inst:       inst,
		branchList: strings.Join(inst.BranchCodes, ", "),
	}
}

// Validate checks email against the institution's naming convention.
// now decides the accepted enrollment-year window.
func (p *EmailParser) Validate(email string, now time.Time) EmailOutcome {
	if email == "" {
		return invalidEmail(newFailure(ReasonRequired, "Email is required"))
	}

	if !strings.HasSuffix(email, p.inst.DomainSuffix) {
		return invalidEmail(newFailure(ReasonWrongDomain, "Email must be from %s domain", p.inst.DomainSuffix))
	}

	// Everything before the suffix, so a stray '@' in the local part is malformed
	// rather than silently cut off at the first '@'.
	localPart := strings.TrimSuffix(email, p.inst.DomainSuffix)
	match := localPartRegexp.FindStringSubmatch(localPart)
	if match == nil {
		return invalidEmail(newFailure(ReasonMalformed,
			"Invalid email format. Expected: firstname+lastname.branchYY%s", p.inst.DomainSuffix))
	}
	firstName, lastName, branchCode, year := match[1], match[2], match[3], match[4]

	branch, ok := p.inst.LookupBranch(branchCode)
	if !ok {
		return invalidEmail(newFailure(ReasonUnknownBranch,
			"Invalid branch code: %s. Valid branches: %s", branchCode, p.branchList))
	}

	if !p.yearInWindow(year, now) {
		return invalidEmail(newFailure(ReasonYearOutOfWindow, "Invalid year: 20%s", year))
	}

	return EmailOutcome{
		Identity: Identity{
			FirstName: strings.ToLower(firstName),
			LastName:  strings.ToLower(lastName),
			Branch:    branch,
			Year:      year,
		},
	}
}

// Parse returns the identity for a valid email, or the failure as an error.
func (p *EmailParser) Parse(email string, now time.Time) (Identity, error) {
	outcome := p.Validate(email, now)
	if !outcome.Valid() {
		return Identity{}, outcome.Failure.Err()
	}
	return outcome.Identity, nil
}

// YearWindow returns the accepted two-digit years, inclusive, for now.
func (p *EmailParser) YearWindow(now time.Time) (low, high int) {
	current := now.Year() % 100
	return current - p.inst.YearsBack, current + p.inst.YearsAhead
}

func (p *EmailParser) yearInWindow(year string, now time.Time) bool {
	n, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	low, high := p.YearWindow(now)
	return n >= low && n <= high
}
