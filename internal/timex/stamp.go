package timex

import "time"

// StampLayout is the fixed-width UTC layout used for persisted timestamps.
// Fixed width keeps lexical order equal to chronological order in SQL.
const StampLayout = "2006-01-02T15:04:05.000000000Z"

// FormatStamp renders t in UTC using StampLayout.
func FormatStamp(t time.Time) string {
	return t.UTC().Format(StampLayout)
}

// ParseStamp parses a value written by FormatStamp. RFC 3339 input is
// accepted too.
func ParseStamp(s string) (time.Time, error) {
	t, err := time.Parse(StampLayout, s)
	if err == nil {
		return t, nil
	}
	t, err2 := time.Parse(time.RFC3339Nano, s)
	if err2 != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
