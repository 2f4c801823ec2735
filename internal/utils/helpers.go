package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	layoutYMD  = "2006-01-02"
	layoutFile = "2006_01_02"
)

// rawDateLayouts are tried in order when reading dates out of source files.
var rawDateLayouts = []string{
	layoutYMD,
	"2006/01/02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func ParseYMD(s string) (time.Time, error) {
	t, err := time.ParseInLocation(layoutYMD, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// ParseRawDate accepts the layouts seen in raw exports and strips the time.
func ParseRawDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range rawDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// DateOnly strips time to midnight UTC to match DATE semantics.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func FormatYMD(t time.Time) string {
	return t.Format(layoutYMD)
}

// FormatFileDate renders a date for export file names (YYYY_MM_DD).
func FormatFileDate(t time.Time) string {
	return t.Format(layoutFile)
}

// DaysBetween counts calendar days from a to b, inclusive of both ends.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours()/24) + 1
}

// DateValue converts a scanned DATE column into a date. Postgres hands back
// time.Time, SQLite returns the stored text.
func DateValue(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return DateOnly(x.UTC()), nil
	case string:
		return ParseRawDate(x)
	case []byte:
		return ParseRawDate(string(x))
	case nil:
		return time.Time{}, fmt.Errorf("null date")
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}
