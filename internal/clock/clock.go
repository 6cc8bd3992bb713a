// Package clock parses and formats the YYYYMMDDhhmmss timestamp literal
// that every external interface of the weigh and billing services uses, in
// the server's local time zone, for bit-for-bit compatibility with existing
// clients.
package clock

import (
	"fmt"
	"time"
)

// Layout is the reference-time layout string for YYYYMMDDhhmmss.
const Layout = "20060102150405"

// Parse reads a YYYYMMDDhhmmss string in local time.
func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t, nil
}

// Format renders t as YYYYMMDDhhmmss in local time.
func Format(t time.Time) string {
	return t.Local().Format(Layout)
}

// ParseOrDefault parses s if non-empty, else returns fallback.
func ParseOrDefault(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	return Parse(s)
}

// StartOfMonth returns the first instant of t's month, local time.
func StartOfMonth(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
}
