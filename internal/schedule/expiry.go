// internal/schedule/expiry.go
package schedule

import (
	"fmt"
	"time"
)

// Race days are bounded in a fixed UTC-8 offset, a no-DST approximation of
// Pacific time. The announcement stays up through the whole Pacific calendar
// day of the race and expires at the following local midnight.
const pacificOffset = 8 * time.Hour

var inputLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ExpiryBoundary returns the UTC instant at which a race scheduled for the
// given instant is considered over: the next Pacific-local midnight after
// the race's Pacific calendar date.
func ExpiryBoundary(scheduled time.Time) time.Time {
	local := scheduled.UTC().Add(-pacificOffset)
	midnight := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, time.UTC)
	return midnight.Add(pacificOffset)
}

// IsExpired reports whether the scheduled race is over as of now. A nil
// schedule never expires. The boundary itself counts as expired.
func IsExpired(scheduled *time.Time, now time.Time) bool {
	if scheduled == nil {
		return false
	}
	return !now.Before(ExpiryBoundary(*scheduled))
}

// PacificToUTC reinterprets a naive wall-clock reading as Pacific local time
// and returns the corresponding UTC instant.
func PacificToUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC).
		Add(pacificOffset)
}

// ParsePacificInput parses a naive datetime string as submitted by the admin
// form, treats it as Pacific local time and returns the UTC instant.
func ParsePacificInput(s string) (time.Time, error) {
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return PacificToUTC(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized race date %q, want YYYY-MM-DDTHH:MM", s)
}
