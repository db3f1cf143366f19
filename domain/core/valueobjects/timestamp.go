package valueobjects

import (
	"errors"
	"time"
)

// timestampLayout is the persisted wire shape of a timestamp: RFC 3339 in
// UTC with millisecond precision. Documents written by earlier tooling used
// this exact form, so encode must keep producing it byte for byte.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp is a value object for entity modification times. It exists so
// that the JSON round trip through the board document is stable: marshaling
// what was just unmarshaled yields the identical text.
type Timestamp struct {
	t time.Time
}

// NewTimestamp creates a Timestamp from a time.Time, truncated to the
// precision the wire format can carry.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t.UTC().Truncate(time.Millisecond)}
}

// ParseTimestamp parses the persisted textual form
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Timestamp{}, err
	}
	return NewTimestamp(t), nil
}

// Time returns the underlying time.Time
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// IsZero checks if the Timestamp is the zero value
func (ts Timestamp) IsZero() bool {
	return ts.t.IsZero()
}

// Equals checks if two Timestamps denote the same instant
func (ts Timestamp) Equals(other Timestamp) bool {
	return ts.t.Equal(other.t)
}

// String returns the persisted textual form
func (ts Timestamp) String() string {
	return ts.t.Format(timestampLayout)
}

// MarshalJSON implements json.Marshaler
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ts.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("Timestamp must be a string")
	}
	parsed, err := ParseTimestamp(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}
