package application

import (
	"encoding/json"
	"fmt"
	"time"
)

// LocalDateTimeLayout is the wire format for booking times: no zone, interpreted as UTC.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

// Timestamp is a time that reads LocalDateTimeLayout or RFC 3339 and writes LocalDateTimeLayout.
type Timestamp time.Time

// NewTimestamp converts t to UTC and wraps it.
func NewTimestamp(t time.Time) Timestamp { return Timestamp(t.UTC()) }

// Time returns the wrapped time.
func (t Timestamp) Time() time.Time { return time.Time(t) }

// IsZero reports whether the timestamp is unset.
func (t Timestamp) IsZero() bool { return time.Time(t).IsZero() }

// ParseTimestamp accepts LocalDateTimeLayout (as UTC) or RFC 3339. Fractional
// seconds are dropped so a parsed value round-trips through MarshalJSON unchanged.
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.ParseInLocation(LocalDateTimeLayout, s, time.UTC); err == nil {
		return Timestamp(t.Truncate(time.Second)), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: want %s or RFC 3339", s, LocalDateTimeLayout)
	}
	return Timestamp(t.UTC().Truncate(time.Second)), nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(LocalDateTimeLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time { return time.Now().UTC() }
