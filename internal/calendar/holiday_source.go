package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/zapponejosh/wareki-api/internal/database"
)

// HolidaySource is where holiday templates are stored.
// *database.DB satisfies it.
type HolidaySource interface {
	GetHolidayEntries(ctx context.Context, template string) ([]database.HolidayEntry, error)
}

// LoadHolidayCalendar reads the named template from src and builds a calendar.
// The calendar keeps no reference to src; later changes to the store are not
// seen until the next load.
func LoadHolidayCalendar(ctx context.Context, src HolidaySource, template string) (*HolidayCalendar, error) {
	rows, err := src.GetHolidayEntries(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("load holiday template %q: %w", template, err)
	}

	entries := make([]HolidayEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, HolidayEntry{
			Month: time.Month(r.Month),
			Day:   r.Day,
			Name:  r.Name,
		})
	}

	cal, err := NewHolidayCalendar(entries)
	if err != nil {
		return nil, fmt.Errorf("holiday template %q: %w", template, err)
	}
	return cal, nil
}
