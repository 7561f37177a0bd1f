package loan

import (
	"fmt"
	"strings"
	"time"
)

// Accepted deadline formats, in priority order. The non-padded layouts
// take one- and two-digit months and days, so "3/13/2026" and
// "03/13/2026" both parse. A two-digit year only matches the last
// format, so "3/4/26" always reads as MM/DD/YY.
var dateFormats = []string{"1/2/2006", "2006-1-2", "1/2/06"}

// ParseDate parses a deadline string. A blank string is "unset":
// (zero, false, nil). A string matching none of the accepted formats
// is an error. Otherwise the parsed date is returned with ok=true.
func ParseDate(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, nil
	}
	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid date format: %s. Use MM/DD/YYYY, YYYY-MM-DD, or MM/DD/YY", s)
}

// DaysUntil returns the whole days from today until the given date
// string, negative for past dates. Unset and malformed strings both
// report ok=false; display paths tolerate bad data rather than error.
func DaysUntil(s string) (int, bool) {
	return daysUntilOn(s, time.Now())
}

func daysUntilOn(s string, today time.Time) (int, bool) {
	d, ok, err := ParseDate(s)
	if err != nil || !ok {
		return 0, false
	}
	return daysBetween(d, today), true
}

func daysBetween(d, today time.Time) int {
	a := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// Severity buckets a deadline's remaining days for display.
type Severity string

const (
	SeverityNone     Severity = ""
	SeverityOverdue  Severity = "overdue"
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityNormal   Severity = "normal"
)

// Classify maps a DaysUntil result to a severity: overdue below zero,
// critical through day 3, warning through day 7, normal past that.
func Classify(days int, ok bool) Severity {
	switch {
	case !ok:
		return SeverityNone
	case days < 0:
		return SeverityOverdue
	case days <= 3:
		return SeverityCritical
	case days <= 7:
		return SeverityWarning
	default:
		return SeverityNormal
	}
}
