package calendar

import (
	"fmt"
	"math"
)

// DiffResult describes the distance between two dates.
// Start is never after End; Swapped records whether the inputs were reordered.
type DiffResult struct {
	Start        Date    `json:"start"`
	End          Date    `json:"end"`
	TotalDays    int     `json:"total_days"`
	ApproxWeeks  float64 `json:"approx_weeks"`  // TotalDays / 7, 2 decimals
	ApproxMonths float64 `json:"approx_months"` // TotalDays / 30, 2 decimals
	ApproxYears  float64 `json:"approx_years"`  // TotalDays / 365, 3 decimals
	Swapped      bool    `json:"swapped"`
}

// Diff parses two YYYY-MM-DD strings and measures the distance between them.
// If either string fails to parse the result is an error wrapping
// ErrInvalidDate and nothing is computed.
func Diff(start, end string) (DiffResult, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DiffResult{}, fmt.Errorf("start date: %w", err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return DiffResult{}, fmt.Errorf("end date: %w", err)
	}
	return DiffDates(s, e), nil
}

// DiffDates measures the distance between two dates, swapping them when end
// is before start.
//
// The day count is rounded, not truncated, so that an hour gained or lost to
// daylight saving in a local-time representation never changes the result.
func DiffDates(start, end Date) DiffResult {
	swapped := false
	if end.Before(start) {
		start, end = end, start
		swapped = true
	}

	days := int(math.Round(float64(start.secondsUntil(end)) / secondsPerDay))

	return DiffResult{
		Start:        start,
		End:          end,
		TotalDays:    days,
		ApproxWeeks:  roundTo(float64(days)/7, 2),
		ApproxMonths: roundTo(float64(days)/30, 2),
		ApproxYears:  roundTo(float64(days)/365, 3),
		Swapped:      swapped,
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
