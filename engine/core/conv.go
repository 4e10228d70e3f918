package core

import (
	"fmt"
	"strings"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
)

var humanUnits = strings.NewReplacer(
	" seconds", "s", " second", "s",
	" minutes", "m", " minute", "m",
	" hours", "h", " hour", "h",
	" days", "d", " day", "d",
	" weeks", "w", " week", "w",
)

// ParseHumanDuration parses Go-style durations ("90s", "1h30m") as well as
// spelled-out forms ("30 minutes", "1 hour").
func ParseHumanDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	d, err := str2duration.ParseDuration(humanUnits.Replace(strings.ToLower(s)))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

// ParseAnyDuration interprets the duration forms a workflow document may
// carry: a bare number is seconds, a string goes through ParseHumanDuration.
// Returns false when the value is absent or not a supported form.
func ParseAnyDuration(v any) (time.Duration, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case string:
		d, err := ParseHumanDuration(t)
		if err != nil {
			return 0, false
		}
		return d, true
	case int:
		return time.Duration(t) * time.Second, true
	case int64:
		return time.Duration(t) * time.Second, true
	case uint64:
		return time.Duration(t) * time.Second, true
	case float64:
		return time.Duration(t * float64(time.Second)), true
	case time.Duration:
		return t, true
	default:
		return 0, false
	}
}
