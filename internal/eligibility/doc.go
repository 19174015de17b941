// Package eligibility validates institutional signup data.
//
// It has two cooperating parts:
//
//   - EmailParser checks that an address belongs to the institution and follows
//     the firstname+lastname.branchYY naming convention, extracting an Identity.
//   - Calculator derives the highest semester a student can be in from the
//     enrollment year and month.
//
// Everything here is pure. The reference time is always passed in by the caller,
// so results are deterministic for a given "now" and every type is safe for
// concurrent use. Results depend on the calendar year of "now" through the
// accepted enrollment-year window, so outcomes should not be cached across years.
//
// Failures are returned as data (Failure) with a Reason from a fixed set, never
// as panics. Callers show Failure.Message to the end user directly.
package eligibility
