package eligibility

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	domerrors "github.com/rvceconnect/rvce-connect-go/internal/errors"
)

// March 2024: accepted two-digit years are 19..26.
var refDate = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func newTestParser() *EmailParser {
	return NewEmailParser(DefaultInstitution())
}

func TestEmailParser_Validate(t *testing.T) {
	t.Parallel()
	parser := newTestParser()

	tests := []struct {
		name       string
		email      string
		wantReason Reason // empty = valid
		wantMsg    string
		wantID     Identity
	}{
		{
			name:   "plus separator",
			email:  "john+doe.cse24@rvce.edu.in",
			wantID: Identity{FirstName: "john", LastName: "doe", Branch: Branch{code: "cse"}, Year: "24"},
		},
		{
			name:   "dot separator",
			email:  "jane.smith.ise22@rvce.edu.in",
			wantID: Identity{FirstName: "jane", LastName: "smith", Branch: Branch{code: "ise"}, Year: "22"},
		},
		{
			name:   "mixed case is lowered",
			email:  "John.DOE.Cse23@rvce.edu.in",
			wantID: Identity{FirstName: "john", LastName: "doe", Branch: Branch{code: "cse"}, Year: "23"},
		},
		{
			name:   "two letter branch",
			email:  "asha+rao.ai25@rvce.edu.in",
			wantID: Identity{FirstName: "asha", LastName: "rao", Branch: Branch{code: "ai"}, Year: "25"},
		},
		{
			name:       "empty",
			email:      "",
			wantReason: ReasonRequired,
			wantMsg:    "Email is required",
		},
		{
			name:       "other domain",
			email:      "notanemail@gmail.com",
			wantReason: ReasonWrongDomain,
			wantMsg:    "Email must be from @rvce.edu.in domain",
		},
		{
			name:       "domain suffix is case sensitive",
			email:      "john.doe.cse24@RVCE.EDU.IN",
			wantReason: ReasonWrongDomain,
		},
		{
			name:       "subdomain lookalike",
			email:      "john.doe.cse24@rvce.edu.in.example.com",
			wantReason: ReasonWrongDomain,
		},
		{
			name:       "no name separator",
			email:      "johndoe.cse24@rvce.edu.in",
			wantReason: ReasonMalformed,
			wantMsg:    "Invalid email format. Expected: firstname+lastname.branchYY@rvce.edu.in",
		},
		{
			name:       "four digit year",
			email:      "john.doe.cse2024@rvce.edu.in",
			wantReason: ReasonMalformed,
		},
		{
			name:       "one letter branch",
			email:      "john.doe.c24@rvce.edu.in",
			wantReason: ReasonMalformed,
		},
		{
			name:       "digits in name",
			email:      "john1.doe.cse24@rvce.edu.in",
			wantReason: ReasonMalformed,
		},
		{
			name:       "extra at sign in local part",
			email:      "john.doe.cse24@x@rvce.edu.in",
			wantReason: ReasonMalformed,
		},
		{
			name:       "unknown branch",
			email:      "john.doe.xyz24@rvce.edu.in",
			wantReason: ReasonUnknownBranch,
			wantMsg:    "Invalid branch code: xyz. Valid branches: me, cse, ece, eee, cv, ch, bt, ie, ise, te, ai, cs",
		},
		{
			name:       "year too old",
			email:      "john.doe.cse18@rvce.edu.in",
			wantReason: ReasonYearOutOfWindow,
			wantMsg:    "Invalid year: 2018",
		},
		{
			name:       "year too far ahead",
			email:      "john.doe.cse27@rvce.edu.in",
			wantReason: ReasonYearOutOfWindow,
			wantMsg:    "Invalid year: 2027",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parser.Validate(tt.email, refDate)

			if tt.wantReason == "" {
				if !got.Valid() {
					t.Fatalf("Validate(%q) failed: %+v", tt.email, got.Failure)
				}
				if got.Identity != tt.wantID {
					t.Errorf("Validate(%q) identity = %+v, want %+v", tt.email, got.Identity, tt.wantID)
				}
				return
			}

			if got.Valid() {
				t.Fatalf("Validate(%q) = valid, want %s", tt.email, tt.wantReason)
			}
			if got.Identity != (Identity{}) {
				t.Errorf("invalid outcome carries identity %+v", got.Identity)
			}
			if got.Failure.Reason != tt.wantReason {
				t.Errorf("Validate(%q) reason = %s, want %s", tt.email, got.Failure.Reason, tt.wantReason)
			}
			if tt.wantMsg != "" && got.Failure.Message != tt.wantMsg {
				t.Errorf("Validate(%q) message = %q, want %q", tt.email, got.Failure.Message, tt.wantMsg)
			}
		})
	}
}

func TestEmailParser_WrongDomainForAnyOtherSuffix(t *testing.T) {
	t.Parallel()
	parser := newTestParser()

	inputs := []string{
		"a", "@", "rvce.edu.in", "john.doe.cse24@rvce.edu", "john.doe.cse24@gmail.com",
		"john.doe.cse24@rvce.edu.in ", " @rvce.edu.inx", "john.doe.cse24@rvce-edu.in",
	}
	for _, email := range inputs {
		got := parser.Validate(email, refDate)
		if got.Valid() || got.Failure.Reason != ReasonWrongDomain {
			t.Errorf("Validate(%q) = %+v, want %s", email, got.Failure, ReasonWrongDomain)
		}
	}
}

func TestEmailParser_YearWindowBoundaries(t *testing.T) {
	t.Parallel()
	parser := newTestParser()
	now := time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC)

	low, high := parser.YearWindow(now)
	if low != 21 || high != 28 {
		t.Fatalf("YearWindow() = [%d, %d], want [21, 28]", low, high)
	}

	tests := []struct {
		year  int
		valid bool
	}{
		{20, false},
		{21, true},
		{26, true},
		{28, true},
		{29, false},
	}
	for _, tt := range tests {
		email := fmt.Sprintf("john.doe.cse%02d@rvce.edu.in", tt.year)
		if got := parser.Validate(email, now).Valid(); got != tt.valid {
			t.Errorf("year %02d: valid = %v, want %v", tt.year, got, tt.valid)
		}
	}
}

func TestEmailParser_Idempotent(t *testing.T) {
	t.Parallel()
	parser := newTestParser()

	for _, email := range []string{"john+doe.cse24@rvce.edu.in", "john.doe.xyz24@rvce.edu.in", ""} {
		first := parser.Validate(email, refDate)
		second := parser.Validate(email, refDate)
		if first.Valid() != second.Valid() || first.Identity != second.Identity {
			t.Errorf("Validate(%q) not repeatable: %+v vs %+v", email, first, second)
		}
		if !first.Valid() && *first.Failure != *second.Failure {
			t.Errorf("Validate(%q) failures differ: %+v vs %+v", email, first.Failure, second.Failure)
		}
	}
}

func TestEmailParser_CustomInstitution(t *testing.T) {
	t.Parallel()
	inst := Institution{
		Name:              "Example Institute",
		DomainSuffix:      "@example.ac.in",
		BranchCodes:       []string{"mat", "phy"},
		YearsBack:         1,
		YearsAhead:        0,
		MaxSemester:       6,
		MonthsPerSemester: 6,
	}
	parser := NewEmailParser(inst)
	inst.BranchCodes[0] = "zzz" // parser keeps its own copy

	got := parser.Validate("ravi.k.mat23@example.ac.in", refDate)
	if !got.Valid() {
		t.Fatalf("expected valid, got %+v", got.Failure)
	}
	if got.Identity.Branch.Code() != "mat" {
		t.Errorf("branch = %q, want mat", got.Identity.Branch.Code())
	}

	got = parser.Validate("ravi.k.cse23@example.ac.in", refDate)
	if got.Valid() || got.Failure.Reason != ReasonUnknownBranch {
		t.Errorf("expected unknown branch, got %+v", got)
	}
	if !strings.HasSuffix(got.Failure.Message, "Valid branches: mat, phy") {
		t.Errorf("message = %q", got.Failure.Message)
	}

	got = parser.Validate("ravi.k.mat25@example.ac.in", refDate)
	if got.Valid() || got.Failure.Reason != ReasonYearOutOfWindow {
		t.Errorf("expected year out of window, got %+v", got)
	}
}

func TestEmailParser_Parse(t *testing.T) {
	t.Parallel()
	parser := newTestParser()

	id, err := parser.Parse("john+doe.cse24@rvce.edu.in", refDate)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if id.EnrollmentYear() != 2024 {
		t.Errorf("EnrollmentYear() = %d, want 2024", id.EnrollmentYear())
	}
	if id.DisplayName() != "John Doe" {
		t.Errorf("DisplayName() = %q, want %q", id.DisplayName(), "John Doe")
	}

	_, err = parser.Parse("john.doe.xyz24@rvce.edu.in", refDate)
	if !errors.Is(err, domerrors.ErrUnknownBranch) {
		t.Errorf("Parse() error = %v, want ErrUnknownBranch", err)
	}
	if domerrors.GetUserMessage(err) == "" {
		t.Error("expected user message on parse error")
	}

	_, err = parser.Parse("", refDate)
	if !domerrors.IsRequired(err) {
		t.Errorf("Parse(\"\") error = %v, want ErrRequired", err)
	}
}

func TestIdentity_JSON(t *testing.T) {
	t.Parallel()
	id := Identity{FirstName: "john", LastName: "doe", Branch: Branch{code: "cse"}, Year: "24"}

	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"firstName":"john","lastName":"doe","branch":"cse","year":"24"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
