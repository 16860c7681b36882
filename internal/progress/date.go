package progress

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical persisted form of a calendar date
const DateLayout = "2006-01-02"

// legacyLayout is the human-readable form older clients wrote, e.g. "Tue Mar 05 2024"
const legacyLayout = "Mon Jan 02 2006"

// Date is a civil calendar date with no time of day or zone
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts DateLayout and the legacy layout
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, legacyLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", s)
}

// String formats d using DateLayout
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DaysUntil returns the number of calendar days from d to other; negative
// when other is earlier. Computed on UTC midnights so DST never skews it.
func (d Date) DaysUntil(other Date) int {
	a := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	b := time.Date(other.Year, other.Month, other.Day, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
