package calendar

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// NewYearsDayName is used for the year-rollover holiday when the template
// has no January 1 entry of its own.
const NewYearsDayName = "元日"

// ErrInvalidHoliday is returned for holiday template entries that cannot
// name a day of the year.
var ErrInvalidHoliday = errors.New("invalid holiday entry")

// TagDayInMonth is the validation tag reported for a day the month lacks.
const TagDayInMonth = "day_in_month"

// entryValidator checks HolidayEntry tags plus the month length.
var entryValidator = NewEntryValidator()

// NewEntryValidator returns a validator that knows HolidayEntry's rules,
// including that the day must exist in its month of a leap year.
func NewEntryValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(holidayEntryStructLevel, HolidayEntry{})
	return v
}

func holidayEntryStructLevel(sl validator.StructLevel) {
	e := sl.Current().Interface().(HolidayEntry)
	if e.Month < time.January || e.Month > time.December || e.Day < 1 {
		return
	}
	if e.Day > DaysInMonth(2000, e.Month) {
		sl.ReportError(e.Day, "Day", "Day", TagDayInMonth, strconv.Itoa(int(e.Month)))
	}
}

// HolidayEntry is a fixed-date holiday that repeats every year.
type HolidayEntry struct {
	Month time.Month `json:"month" validate:"min=1,max=12"`
	Day   int        `json:"day" validate:"min=1,max=31"`
	Name  string     `json:"name" validate:"required"`
}

// Holiday is a template entry placed on a concrete date.
type Holiday struct {
	Date Date   `json:"date"`
	Name string `json:"name"`
}

// DefaultHolidayTemplate returns the Japanese national holidays as observed
// in 2025, used as the template for every year. Substitute holidays and
// moving dates are not modelled.
func DefaultHolidayTemplate() []HolidayEntry {
	return []HolidayEntry{
		{Month: time.January, Day: 1, Name: "元日"},
		{Month: time.January, Day: 13, Name: "成人の日"},
		{Month: time.February, Day: 11, Name: "建国記念の日"},
		{Month: time.February, Day: 23, Name: "天皇誕生日"},
		{Month: time.March, Day: 20, Name: "春分の日"},
		{Month: time.April, Day: 29, Name: "昭和の日"},
		{Month: time.May, Day: 3, Name: "憲法記念日"},
		{Month: time.May, Day: 4, Name: "みどりの日"},
		{Month: time.May, Day: 5, Name: "こどもの日"},
		{Month: time.July, Day: 21, Name: "海の日"},
		{Month: time.August, Day: 11, Name: "山の日"},
		{Month: time.September, Day: 15, Name: "敬老の日"},
		{Month: time.September, Day: 23, Name: "秋分の日"},
		{Month: time.October, Day: 13, Name: "スポーツの日"},
		{Month: time.November, Day: 3, Name: "文化の日"},
		{Month: time.November, Day: 23, Name: "勤労感謝の日"},
	}
}

// HolidayCalendar answers holiday questions from an annual template.
// It owns a copy of the template and is safe for concurrent use.
type HolidayCalendar struct {
	entries     []HolidayEntry
	newYearName string
}

// NewHolidayCalendar validates entries and returns a calendar over a copy of them.
// February 29 is accepted; in common years it falls on March 1.
func NewHolidayCalendar(entries []HolidayEntry) (*HolidayCalendar, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: template is empty", ErrInvalidHoliday)
	}

	newYearName := NewYearsDayName
	for i, e := range entries {
		if err := ValidateHolidayEntry(e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if e.Month == time.January && e.Day == 1 {
			newYearName = e.Name
		}
	}

	owned := make([]HolidayEntry, len(entries))
	copy(owned, entries)
	return &HolidayCalendar{entries: owned, newYearName: newYearName}, nil
}

// NewDefaultHolidayCalendar returns a calendar over DefaultHolidayTemplate.
func NewDefaultHolidayCalendar() *HolidayCalendar {
	c, err := NewHolidayCalendar(DefaultHolidayTemplate())
	if err != nil {
		panic(err)
	}
	return c
}

// ValidateHolidayEntry checks that e names a day that exists in a leap year.
// Field failures are wrapped as validator.ValidationErrors.
func ValidateHolidayEntry(e HolidayEntry) error {
	if err := entryValidator.Struct(e); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidHoliday, e.Name, err)
	}
	return nil
}

// Entries returns a copy of the template in its original order.
func (c *HolidayCalendar) Entries() []HolidayEntry {
	out := make([]HolidayEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// HolidaysInYear places every template entry in year, sorted by date.
// Entries sharing a date keep their template order.
func (c *HolidayCalendar) HolidaysInYear(year int) []Holiday {
	out := make([]Holiday, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, Holiday{Date: NewDate(year, e.Month, e.Day), Name: e.Name})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// NextHoliday returns the first holiday on or after ref. A holiday falling on
// ref itself counts as next. When every holiday of ref's year has passed, the
// answer is New Year's Day of the following year, so a holiday is always found.
func (c *HolidayCalendar) NextHoliday(ref Date) Holiday {
	for _, h := range c.HolidaysInYear(ref.Year) {
		if !h.Date.Before(ref) {
			return h
		}
	}
	return Holiday{
		Date: Date{Year: ref.Year + 1, Month: time.January, Day: 1},
		Name: c.newYearName,
	}
}

// NextHolidayFrom is NextHoliday for today's local date according to clock.
func (c *HolidayCalendar) NextHolidayFrom(clock Clock) Holiday {
	return c.NextHoliday(Today(clock))
}

// DaysUntil returns the whole days from ref to h, rounded up.
// It is 0 only when h falls on ref.
func DaysUntil(ref Date, h Holiday) int {
	return int(math.Ceil(float64(ref.secondsUntil(h.Date)) / secondsPerDay))
}
