// Package timeutil provides the campus clock used for all date-based checks.
package timeutil

import (
	"time"
)

// DefaultTimezone is the campus timezone (Bengaluru).
const DefaultTimezone = "Asia/Kolkata"

// istOffset is used when the system has no tzdata.
const istOffset = 5*60*60 + 30*60

// LoadLocation loads the named timezone. Asia/Kolkata falls back to a fixed
// UTC+5:30 zone when tzdata is unavailable; other names return the load error.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if name == DefaultTimezone {
			return time.FixedZone(DefaultTimezone, istOffset), nil
		}
		return nil, err
	}
	return loc, nil
}

// Clock returns the current time. Inject a fixed Clock in tests.
type Clock func() time.Time

// NewClock returns a Clock reporting wall-clock time in loc.
func NewClock(loc *time.Location) Clock {
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock {
	return func() time.Time {
		return t
	}
}
