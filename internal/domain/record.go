package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Record is one persisted entity of any dataset. Records are kept as generic
// JSON objects so fields the service does not model survive a round trip.
type Record map[string]any

const (
	FieldID        = "id"
	FieldUpdatedAt = "updatedAt"
)

// EpochZero is the effective time of a record without a usable updatedAt.
// It sorts before every real timestamp.
var EpochZero = time.Unix(0, 0).UTC()

// TimestampLayout is the ISO-8601 form written into updatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t the way updatedAt values are stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses an ISO-8601 timestamp. Empty or unparseable input
// yields EpochZero and false.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return EpochZero, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return EpochZero, false
}

// String returns the field as a string, or "" when it is absent or not a string.
func (r Record) String(field string) string {
	if s, ok := r[field].(string); ok {
		return s
	}
	return ""
}

// Key renders a scalar identity field as a string. Numbers use their
// shortest decimal form and bools "true"/"false"; absent, null and
// non-scalar values read as "".
func (r Record) Key(field string) string {
	switch v := r[field].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// ID returns the record id, stringified when stored as a number.
func (r Record) ID() string {
	return r.Key(FieldID)
}

// UpdatedAt returns the effective modification time, EpochZero when missing.
func (r Record) UpdatedAt() time.Time {
	t, _ := ParseTimestamp(r.String(FieldUpdatedAt))
	return t
}

// HasUpdatedAt reports whether the record carries a non-empty updatedAt.
func (r Record) HasUpdatedAt() bool {
	return r.String(FieldUpdatedAt) != ""
}

// Touch stamps updatedAt with t.
func (r Record) Touch(t time.Time) {
	r[FieldUpdatedAt] = FormatTimestamp(t)
}

// Object returns a nested object field, nil when absent.
func (r Record) Object(field string) Record {
	switch v := r[field].(type) {
	case map[string]any:
		return Record(v)
	case Record:
		return v
	}
	return nil
}

// Clone returns a shallow copy so callers can edit top-level fields.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// DecodeRecord converts a record into a typed struct through its JSON form.
func DecodeRecord(r Record, v any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}

// EncodeRecord converts a typed struct into a generic record.
func EncodeRecord(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return r, nil
}
