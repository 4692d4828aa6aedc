package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a time.Time that serializes to an ISO-8601 string and
// accepts the zone-less isoformat strings found in data files written
// by the previous version of the hub (e.g. "2023-05-01T09:30:00.123456").
// The zero value serializes to "".
type Timestamp struct {
	time.Time
}

// Layouts accepted on decode, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Now returns the current time as a Timestamp, truncated to seconds in
// UTC so encoded values stay stable across a save/load cycle.
func Now() Timestamp {
	return Timestamp{time.Now().UTC().Truncate(time.Second)}
}

// At wraps an existing time.
func At(t time.Time) Timestamp { return Timestamp{t} }

// ParseTimestamp decodes an ISO-8601 string using the accepted layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	if s == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

// MarshalJSON encodes as RFC 3339, or "" for the zero value.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(ts.Format(time.RFC3339))
}

// UnmarshalJSON decodes an ISO-8601 string; "" and null decode to the
// zero value.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || *raw == "" {
		*ts = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(*raw)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}
