// Package calendar converts between Gregorian, Japanese era (nengō) and
// Republic of China (Minguo) years, measures the distance between two civil
// dates and finds the next public holiday from an annual template.
//
// Everything here is a pure function over immutable tables. Dates are civil
// dates (year, month, day) with no time-of-day and no time zone; a Date built
// from a time.Time takes the calendar date in that time's own location.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO-like layout used for parsing and printing dates.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

var (
	// ErrInvalidDate is returned when a string is not a well-formed YYYY-MM-DD date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidYear is returned when a string is not an integer year.
	ErrInvalidYear = errors.New("invalid year")
)

// Date is a Gregorian calendar date without a time of day.
// The zero value is not a valid date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the date for year, month and day, normalizing overflow the
// same way time.Date does (February 29 in a common year becomes March 1).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string. Components need not be zero padded
// ("2024-1-5" is accepted), but all three must be integers and must name a
// real day: "2024-13-40" and "2023-02-29" are rejected rather than rolled over.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := atoiUnsigned(p)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		nums[i] = n
	}

	year, month, day := nums[0], time.Month(nums[1]), nums[2]
	if year < 1 || year > 9999 {
		return Date{}, fmt.Errorf("%w: year out of range in %q", ErrInvalidDate, s)
	}
	if month < time.January || month > time.December {
		return Date{}, fmt.Errorf("%w: month out of range in %q", ErrInvalidDate, s)
	}
	if day < 1 || day > DaysInMonth(year, month) {
		return Date{}, fmt.Errorf("%w: day out of range in %q", ErrInvalidDate, s)
	}

	return Date{Year: year, Month: month, Day: day}, nil
}

// ParseYear parses a Gregorian, era-relative or Minguo year number.
// Only the syntax is checked; range checks belong to the converters. A minus
// sign is allowed so the converters can reject the value, a plus sign is not.
func ParseYear(s string) (int, error) {
	t := strings.TrimSpace(s)
	neg := strings.HasPrefix(t, "-")
	n, err := atoiUnsigned(strings.TrimPrefix(t, "-"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYear, s)
	}
	if neg {
		n = -n
	}
	return n, nil
}

// atoiUnsigned parses a run of decimal digits with no sign.
func atoiUnsigned(s string) (int, error) {
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s)
}

// DaysInMonth returns the number of days in the given month of year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// After reports whether d is later than o.
func (d Date) After(o Date) bool {
	return o.Before(d)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n))
}

// seconds between midnight UTC of d and midnight UTC of o.
// Unix seconds are used instead of time.Duration, which overflows after ~292 years.
func (d Date) secondsUntil(o Date) int64 {
	return o.Time(time.UTC).Unix() - d.Time(time.UTC).Unix()
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
