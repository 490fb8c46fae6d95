package model

import (
	"encoding/json"
	"time"
)

// Timestamp is a JSON time that tolerates values stored by older writers.
// Decoded strings keep their raw text; ones that are not RFC 3339 get a zero
// Time. Non-string values decode to an empty Timestamp.
type Timestamp struct {
	Time time.Time
	Raw  string
}

func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	*ts = Timestamp{}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	ts.Raw = s
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		ts.Time = t
	}
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if s := ts.String(); s != "" {
		return json.Marshal(s)
	}
	return []byte("null"), nil
}

// String is the text as it was decoded, otherwise Time in RFC 3339, or ""
// when unset.
func (ts Timestamp) String() string {
	if ts.Raw != "" {
		return ts.Raw
	}
	if ts.Time.IsZero() {
		return ""
	}
	return ts.Time.Format(time.RFC3339Nano)
}

func (ts Timestamp) After(other Timestamp) bool { return ts.Time.After(other.Time) }
