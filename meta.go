package filepress

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Meta is the metadata header of a content file, decoded from YAML.
type Meta map[string]any

// metaTimeLayouts are tried in order when a timestamp is stored as a string.
var metaTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// TimeFormat is the layout used when timestamps are serialized.
const TimeFormat = "2006-01-02 15:04:05"

// String returns the value under key as a string.
func (m Meta) String(key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	default:
		return fmt.Sprint(val), true
	}
}

// Bool returns the value under key as a boolean, false if absent or unparsable.
func (m Meta) Bool(key string) bool {
	switch val := m[key].(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "y", "on", "1":
			return true
		}
		return false
	case int:
		return val != 0
	default:
		return false
	}
}

// Int returns the value under key as an int.
func (m Meta) Int(key string) (int, bool) {
	switch val := m[key].(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case uint64:
		return int(val), true
	case float64:
		return int(val), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// List returns the value under key coerced to a list of strings.
func (m Meta) List(key string) []string {
	return toList(m[key])
}

// Time returns the value under key as a timestamp. Naive values are
// interpreted in loc.
func (m Meta) Time(key string, loc *time.Location) (time.Time, bool) {
	return toTime(m[key], loc)
}

func toList(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case string:
		return []string{val}
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(val)}
	}
}

func toTime(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range metaTimeLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(TimeFormat)
}
