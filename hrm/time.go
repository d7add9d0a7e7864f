package hrm

import (
	"time"
)

// =============================================================================
// DATE HELPERS - Stored dates are plain YYYY-MM-DD strings
// =============================================================================

const (
	DateLayout     = "2006-01-02"
	MonthKeyLayout = "2006-01"
)

// ParseDate parses a stored YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a time as a stored date string.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// MonthKey renders the payroll-history month bucket for a time.
func MonthKey(t time.Time) string { return t.Format(MonthKeyLayout) }

// LocalDay renders the local calendar day of a timestamp. Attendance views
// compare these, not UTC days, so a late-evening login stays on its own day.
func LocalDay(t time.Time) string { return t.Local().Format(DateLayout) }

// SameLocalDay reports whether two timestamps fall on the same local day.
func SameLocalDay(a, b time.Time) bool { return LocalDay(a) == LocalDay(b) }

// MonthsBetween counts whole calendar months from 'from' to 'to' at month
// granularity: (yearsDiff * 12) + monthsDiff, with no day-of-month
// adjustment. Joining on the 30th counts a full month one day later.
func MonthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
