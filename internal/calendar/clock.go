package calendar

import "time"

// Clock abstracts time.Now so "today" can be fixed in tests.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock with the local wall clock.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

// Today returns the local calendar date according to clock.
func Today(clock Clock) Date {
	return DateOf(clock.Now())
}
