package models

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the wire format for all timestamps: UTC, second precision.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp wraps time.Time so batch and job payloads serialize as
// "YYYY-MM-DD HH:MM:SS" in UTC instead of RFC 3339.
type Timestamp struct {
	time.Time
}

// Now returns the current time as a Timestamp, truncated to seconds.
func Now() Timestamp {
	return Timestamp{time.Now().UTC().Truncate(time.Second)}
}

// NewTimestamp converts a time.Time to a Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC().Truncate(time.Second)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.UTC().Format(TimestampLayout))), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(TimestampLayout, raw, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

// String returns the wire representation.
func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses the wire format back into a Timestamp.
func ParseTimestamp(s string) (Timestamp, error) {
	parsed, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return Timestamp{parsed}, nil
}
