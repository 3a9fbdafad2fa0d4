package media

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var jsonNull = []byte("null")

// ID is an opaque entity identifier. The backend mixes numeric AniList/MAL ids
// with MangaDex UUIDs, so both JSON numbers and strings are accepted.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*id = ""
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		*id = ""
		return nil
	}
	*id = ID(strings.TrimSpace(s))
	return nil
}

// String returns the identifier as a string.
func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool { return id == "" }

// Rating is a score that may arrive as a number, a numeric string, null or
// not at all. Anything that does not parse as a finite number is treated as
// absent.
type Rating struct {
	value float64
	valid bool
}

// NewRating returns a present rating.
func NewRating(v float64) Rating {
	return Rating{value: v, valid: true}
}

// Value returns the rating and whether it is present.
func (r Rating) Value() (float64, bool) {
	return r.value, r.valid
}

// Valid reports whether a numeric rating is present.
func (r Rating) Valid() bool { return r.valid }

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rating) UnmarshalJSON(data []byte) error {
	*r = Rating{}
	if bytes.Equal(data, jsonNull) {
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		r.set(v)
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		if f, err := cast.ToFloat64E(v); err == nil {
			r.set(f)
		}
	}
	return nil
}

func (r *Rating) set(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	r.value = v
	r.valid = true
}

// MarshalJSON implements json.Marshaler.
func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.valid {
		return jsonNull, nil
	}
	return json.Marshal(r.value)
}

// Count is a lenient integer (follower counts arrive as strings or numbers).
type Count struct {
	value int64
	valid bool
}

// NewCount returns a present count.
func NewCount(v int64) Count {
	return Count{value: v, valid: true}
}

// Value returns the count and whether it is present.
func (c Count) Value() (int64, bool) {
	return c.value, c.valid
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	*c = Count{}
	if bytes.Equal(data, jsonNull) {
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	if _, ok := raw.(bool); ok {
		return nil
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	c.value = int64(math.Round(f))
	c.valid = true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.valid {
		return jsonNull, nil
	}
	return json.Marshal(c.value)
}

// Timestamp is a point in time that may be encoded as an RFC 3339 string, a
// date-only string, or a unix time in seconds or milliseconds.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// Valid reports whether the timestamp is set.
func (t Timestamp) Valid() bool { return !t.IsZero() }

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	if bytes.Equal(data, jsonNull) {
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		t.Time = fromUnix(v)
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, v); err == nil {
				t.Time = parsed
				return nil
			}
		}
		if f, err := cast.ToFloat64E(v); err == nil {
			t.Time = fromUnix(f)
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return jsonNull, nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// unix values above this are taken to be milliseconds.
const millisThreshold = 1e11

func fromUnix(v float64) time.Time {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}
	}
	if v >= millisThreshold {
		return time.UnixMilli(int64(v)).UTC()
	}
	return time.Unix(int64(v), 0).UTC()
}
