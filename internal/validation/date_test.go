package validation

import (
	"testing"
	"time"
)

func TestValidateDate(t *testing.T) {
	today := time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name            string
		value           time.Time
		expectedVerdict Verdict
	}{
		{name: "zero", value: time.Time{}, expectedVerdict: Reject(MsgDateRequired)},
		{name: "yesterday", value: today.AddDate(0, 0, -1), expectedVerdict: Accept()},
		{name: "today", value: today, expectedVerdict: Accept()},
		{name: "later_today", value: time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC), expectedVerdict: Accept()},
		{name: "tomorrow", value: today.AddDate(0, 0, 1), expectedVerdict: Reject(MsgDateInFuture)},
		{name: "tomorrow_midnight", value: time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), expectedVerdict: Reject(MsgDateInFuture)},
		{
			name:            "offset_zone_same_utc_day",
			value:           time.Date(2024, time.March, 11, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*60*60)),
			expectedVerdict: Accept(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := ValidateDate(tt.value, today)
			if verdict != tt.expectedVerdict {
				t.Errorf("expected verdict %+v, but got %+v", tt.expectedVerdict, verdict)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2024-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.Equal(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected start of 2024-03-10 UTC, but got %s", parsed)
	}

	empty, err := ParseDate("")
	if err != nil || !empty.IsZero() {
		t.Errorf("expected zero time without error, but got %s, %v", empty, err)
	}

	if _, err := ParseDate("10/03/2024"); err == nil {
		t.Error("expected error for malformed date, but got nil")
	}
}

func TestDefaultDate(t *testing.T) {
	now := time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)
	expected := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)

	if got := DefaultDate(now); !got.Equal(expected) {
		t.Errorf("expected %s, but got %s", expected, got)
	}
	if verdict := ValidateDate(DefaultDate(now), now); !verdict.Accepted {
		t.Errorf("expected default date to be accepted, got %+v", verdict)
	}
}

func TestValidateDateString(t *testing.T) {
	today := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		value           string
		expectedVerdict Verdict
	}{
		{name: "empty", value: "", expectedVerdict: Reject(MsgDateRequired)},
		{name: "malformed", value: "March 10", expectedVerdict: Reject(MsgDateInvalid)},
		{name: "today", value: "2024-03-10", expectedVerdict: Accept()},
		{name: "tomorrow", value: "2024-03-11", expectedVerdict: Reject(MsgDateInFuture)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if verdict := ValidateDateString(tt.value, today); verdict != tt.expectedVerdict {
				t.Errorf("expected verdict %+v, but got %+v", tt.expectedVerdict, verdict)
			}
		})
	}
}
