// Package timestamp converts the heterogeneous timestamp encodings found in
// vendor extraction reports into UTC ISO-8601 strings.
package timestamp

import (
	"strconv"
	"strings"
	"time"
)

const (
	millisThreshold  = 1_000_000_000_000
	secondsThreshold = 1_000_000_000
	// maxYear keeps output within four-digit ISO-8601 years.
	maxYear = 9999
)

// isoLayouts are tried in order. Layouts without a zone are read as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Normalize converts raw into UTC ISO-8601 with a trailing Z. All-digit values
// above 10^12 are epoch milliseconds and above 10^9 epoch seconds; anything
// else is parsed as ISO-8601. Unparseable input is returned unchanged, so
// callers must tolerate raw values flowing through to storage.
func Normalize(raw string) string {
	if raw == "" {
		return raw
	}
	t, ok := Parse(raw)
	if !ok {
		return raw
	}
	return Format(t)
}

// Parse interprets raw using the same rules as Normalize.
func Parse(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	if isDigits(value) {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		var t time.Time
		switch {
		case n > millisThreshold:
			t = time.UnixMilli(n).UTC()
		case n > secondsThreshold:
			t = time.Unix(n, 0).UTC()
		}
		if !t.IsZero() {
			if t.Year() > maxYear {
				return time.Time{}, false
			}
			return t, true
		}
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Format renders t as UTC ISO-8601, keeping fractional seconds only when present.
func Format(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
