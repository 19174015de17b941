package eligibility

// CheckEnrollmentYear compares the year encoded in a parsed email with the
// year the student declared. It returns nil when they agree.
func CheckEnrollmentYear(id Identity, declaredYear int) *Failure {
	emailYear := id.EnrollmentYear()
	if emailYear != declaredYear {
		return newFailure(ReasonYearMismatch, "Email indicates %d, but you entered %d", emailYear, declaredYear)
	}
	return nil
}
