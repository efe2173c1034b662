package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date with no time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate reads a YYYY-MM-DD string field by field so no time zone can
// shift the day.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("parse date %q: want YYYY-MM-DD", s)
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	d, err := strconv.Atoi(parts[2])
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	if m < 1 || m > 12 || d < 1 || d > daysIn(time.Month(m), y) {
		return Date{}, fmt.Errorf("parse date %q: out of range", s)
	}
	return Date{Year: y, Month: time.Month(m), Day: d}, nil
}

// DateOf takes the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today is the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool {
	return o.Before(d)
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(d.midday().AddDate(0, 0, n))
}

// Weekday of the date.
func (d Date) Weekday() time.Weekday {
	return d.midday().Weekday()
}

// EndOfWeek is the Saturday closing the Sunday-started week containing d.
func (d Date) EndOfWeek() Date {
	start := d.AddDays(-int(d.Weekday()))
	return start.AddDays(6)
}

// EndOfMonth is the last day of d's month.
func (d Date) EndOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: daysIn(d.Month, d.Year)}
}

func (d Date) midday() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
