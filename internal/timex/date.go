package timex

import (
	"regexp"
	"strings"
	"time"
)

// Layout is the canonical flattened form of every date field: UTC with
// millisecond precision, e.g. "2024-03-01T09:30:00.000Z".
const Layout = "2006-01-02T15:04:05.000Z07:00"

// accepted lists the layouts ParseDate understands, most specific first.
var accepted = []string{
	Layout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

var isoDateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?$`)

// ParseDate parses s using the accepted layouts. Strings carrying a
// JavaScript style zone suffix ("GMT+0200 (Central European Time)") are
// trimmed to the part before the parenthesis.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, " ("); i > 0 {
		s = s[:i]
	}

	var err error
	for _, layout := range accepted {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// FormatDate renders t in the canonical Layout. The zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(Layout)
}

// NormalizeDate converts a date-like value into its canonical string form.
// It accepts time.Time, *time.Time, date strings in any accepted layout, and
// numbers interpreted as Unix milliseconds. The empty string and the zero time
// normalize to "". ok is false when v is not recognisably a date.
func NormalizeDate(v any) (string, bool) {
	switch value := v.(type) {
	case nil:
		return "", true
	case time.Time:
		return FormatDate(value), true
	case *time.Time:
		if value == nil {
			return "", true
		}
		return FormatDate(*value), true
	case string:
		if strings.TrimSpace(value) == "" {
			return "", true
		}
		t, err := ParseDate(value)
		if err != nil {
			return "", false
		}
		return FormatDate(t), true
	case int64:
		return FormatDate(time.UnixMilli(value)), true
	case int:
		return FormatDate(time.UnixMilli(int64(value))), true
	case float64:
		return FormatDate(time.UnixMilli(int64(value))), true
	}
	return "", false
}

// ToTime is NormalizeDate's typed counterpart: it returns the parsed time
// instead of its canonical string.
func ToTime(v any) (time.Time, bool) {
	s, ok := NormalizeDate(v)
	if !ok {
		return time.Time{}, false
	}
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(Layout, s)
	return t, err == nil
}

// LooksLikeDate reports whether s is an ISO-8601 date-time string.
func LooksLikeDate(s string) bool {
	return isoDateTime.MatchString(s)
}

// Revive walks a decoded JSON value and replaces every ISO-8601 date-time
// string, at any depth, with the corresponding time.Time.
func Revive(v any) any {
	switch value := v.(type) {
	case string:
		if LooksLikeDate(value) {
			if t, err := ParseDate(value); err == nil {
				return t
			}
		}
		return value
	case map[string]any:
		for k, item := range value {
			value[k] = Revive(item)
		}
		return value
	case []any:
		for i, item := range value {
			value[i] = Revive(item)
		}
		return value
	}
	return v
}

// FormatDates is the inverse of Revive. It returns a copy of v in which every
// time.Time, at any depth, is replaced by its canonical string. v itself is
// not modified.
func FormatDates(v any) any {
	switch value := v.(type) {
	case time.Time:
		return FormatDate(value)
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = FormatDates(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = FormatDates(item)
		}
		return out
	}
	return v
}
