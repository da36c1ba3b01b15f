package models

import "time"

// TimestampLayout matches the ISO 8601 form used by the stored records.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t in UTC with millisecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts TimestampLayout and any RFC 3339 value.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
