package validation

import (
	"fmt"
	"time"
)

const (
	MsgDateRequired = "Date is required"
	MsgDateInFuture = "Date cannot be in the future"
	MsgDateInvalid  = "Please provide a valid date"

	DateLayout = "2006-01-02"
)

func StartOfDayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateDate rejects dates after today. Both sides are compared as UTC days.
func ValidateDate(value, today time.Time) Verdict {
	if value.IsZero() {
		return Reject(MsgDateRequired)
	}
	if StartOfDayUTC(value).After(StartOfDayUTC(today)) {
		return Reject(MsgDateInFuture)
	}
	return Accept()
}

// ValidateDateString validates a YYYY-MM-DD date as submitted by a form.
func ValidateDateString(value string, today time.Time) Verdict {
	t, err := ParseDate(value)
	if err != nil {
		return Reject(MsgDateInvalid)
	}
	return ValidateDate(t, today)
}

// ParseDate reads a YYYY-MM-DD date as the start of that day in UTC. An empty string
// yields the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", value, err)
	}
	return t, nil
}

// DefaultDate is the date preselected for a new expense: yesterday.
func DefaultDate(now time.Time) time.Time {
	return StartOfDayUTC(now).AddDate(0, 0, -1)
}
