package eligibility

// Branch is an academic department code from an Institution's closed set.
// The zero value means "no branch"; the only way to obtain a non-zero Branch
// is Institution.LookupBranch.
type Branch struct {
	code string
}

// Code returns the lowercase branch code.
func (b Branch) Code() string { return b.code }

func (b Branch) String() string { return b.code }

// IsZero reports whether b holds no branch.
func (b Branch) IsZero() bool { return b.code == "" }

// MarshalText encodes the branch as its code.
func (b Branch) MarshalText() ([]byte, error) {
	return []byte(b.code), nil
}
