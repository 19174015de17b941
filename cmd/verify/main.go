// Package main checks that the configured institution rules are consistent
// and, optionally, validates email addresses given as arguments.
//
//	go run ./cmd/verify john+doe.cse22@rvce.edu.in
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rvceconnect/rvce-connect-go/internal/config"
	"github.com/rvceconnect/rvce-connect-go/internal/eligibility"
)

// Verification results
type verifyResult struct {
	name    string
	passed  bool
	message string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Invalid timezone: %v\n", err)
		os.Exit(1)
	}

	if failed := run(os.Stdout, cfg.Institution(), time.Now().In(loc), os.Args[1:]); failed > 0 {
		os.Exit(1)
	}
}

// run prints every check and returns the number of failures.
func run(w io.Writer, inst eligibility.Institution, now time.Time, emails []string) int {
	_, _ = fmt.Fprintf(w, "Institution rules verification: %s\n", inst.Name)
	_, _ = fmt.Fprintln(w, strings.Repeat("=", 40))

	var results []verifyResult
	results = append(results, verifyInstitution(inst))
	results = append(results, verifyBranchEmails(inst, now)...)
	results = append(results, verifyYearWindow(inst, now))
	results = append(results, verifySemesterCeiling(inst, now))
	results = append(results, verifyEmails(inst, now, emails)...)

	passed, failed := 0, 0
	for _, r := range results {
		status := "FAIL"
		if r.passed {
			status = "ok"
			passed++
		} else {
			failed++
		}
		_, _ = fmt.Fprintf(w, "[%s] %s: %s\n", status, r.name, r.message)
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d failed\n", passed, failed)
	return failed
}

// verifyInstitution runs the structural checks: lowercase unique branch
// codes, '@' suffix, non-negative window, positive semester shape.
func verifyInstitution(inst eligibility.Institution) verifyResult {
	err := inst.Validate()
	if err == nil {
		return verifyResult{"Institution Rules", true, fmt.Sprintf("%d branches, suffix %s", len(inst.BranchCodes), inst.DomainSuffix)}
	}
	var msgs []string
	for _, e := range unjoin(err) {
		msgs = append(msgs, e.Error())
	}
	return verifyResult{"Institution Rules", false, strings.Join(msgs, "; ")}
}

// verifyBranchEmails checks that a well-formed address exists for every branch,
// i.e. that the branch set and the email grammar agree.
func verifyBranchEmails(inst eligibility.Institution, now time.Time) []verifyResult {
	parser := eligibility.NewEmailParser(inst)
	year := fmt.Sprintf("%02d", now.Year()%100)

	var failed []string
	for _, code := range inst.BranchCodes {
		email := "test+student." + code + year + inst.DomainSuffix
		id, err := parser.Parse(email, now)
		if err != nil || id.Branch.Code() != code {
			failed = append(failed, code)
		}
	}
	if len(failed) > 0 {
		return []verifyResult{{"Branch Emails", false, fmt.Sprintf("No valid address for: %v", failed)}}
	}
	return []verifyResult{{"Branch Emails", true, fmt.Sprintf("All %d branches accept a current-year address", len(inst.BranchCodes))}}
}

func verifyYearWindow(inst eligibility.Institution, now time.Time) verifyResult {
	low, high := eligibility.NewEmailParser(inst).YearWindow(now)
	current := now.Year() % 100
	msg := fmt.Sprintf("Accepting 20%02d-20%02d", low, high)
	if low < 0 || high > 99 {
		return verifyResult{"Year Window", false, msg + " crosses a century boundary"}
	}
	return verifyResult{"Year Window", low <= current && current <= high, msg}
}

// verifySemesterCeiling checks that a fresh enrollment starts at semester 1
// and that a student in the final semester is still inside the year window.
func verifySemesterCeiling(inst eligibility.Institution, now time.Time) verifyResult {
	calc := eligibility.NewCalculator(inst)
	fresh := calc.AllowedSemester(eligibility.EnrollmentDate{Year: now.Year(), Month: int(now.Month())}, now)
	if fresh != 1 {
		return verifyResult{"Semester Ceiling", false, fmt.Sprintf("Enrollment this month allows semester %d, want 1", fresh)}
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	finalCohort := monthStart.AddDate(0, -(calc.MaxSemester()-1)*inst.MonthsPerSemester, 0)
	yearsAgo := now.Year() - finalCohort.Year()
	msg := fmt.Sprintf("Final semester %d reached by the %d cohort (%d years back, window %d)",
		calc.MaxSemester(), finalCohort.Year(), yearsAgo, inst.YearsBack)
	return verifyResult{"Semester Ceiling", yearsAgo <= inst.YearsBack, msg}
}

func verifyEmails(inst eligibility.Institution, now time.Time, emails []string) []verifyResult {
	parser := eligibility.NewEmailParser(inst)
	results := make([]verifyResult, 0, len(emails))
	for _, email := range emails {
		outcome := parser.Validate(email, now)
		if !outcome.Valid() {
			results = append(results, verifyResult{email, false, outcome.Failure.Message})
			continue
		}
		id := outcome.Identity
		results = append(results, verifyResult{email, true,
			fmt.Sprintf("%s, branch %s, enrolled %d", id.DisplayName(), id.Branch, id.EnrollmentYear())})
	}
	return results
}

// unjoin flattens an errors.Join result.
func unjoin(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
