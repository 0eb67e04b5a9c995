// Package export renders holidays and reference tables in formats other
// programs open: iCalendar feeds and spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"github.com/zapponejosh/wareki-api/internal/calendar"
)

// iCalendar header values.
const (
	icsProdID   = "-//wareki-api//Holiday Feed//JA"
	icsDomain   = "wareki-api"
	icsCalScale = "GREGORIAN"
	icsMethod   = "PUBLISH"

	propCalName = "X-WR-CALNAME"
)

// HolidayFeed encodes holidays as an iCalendar feed of all-day events.
// now stamps every event; pass the request time so output is reproducible
// under a fixed clock.
func HolidayFeed(holidays []calendar.Holiday, name string, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProdID)
	cal.Props.SetText(ical.PropCalendarScale, icsCalScale)
	cal.Props.SetText(ical.PropMethod, icsMethod)

	// SetText would tag the extension property with VALUE=TEXT, which some
	// clients do not accept for X-WR-CALNAME.
	calName := ical.NewProp(propCalName)
	calName.Value = name
	cal.Props.Set(calName)

	stamp := now.UTC()
	for i, h := range holidays {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%d@%s", h.Date, i, icsDomain))
		event.Props.SetText(ical.PropSummary, h.Name)

		dtStamp := ical.NewProp(ical.PropDateTimeStamp)
		dtStamp.SetDateTime(stamp)
		event.Props.Set(dtStamp)

		// All-day event: DTEND is the exclusive next day.
		start := ical.NewProp(ical.PropDateTimeStart)
		start.SetDate(h.Date.Time(time.UTC))
		event.Props.Set(start)

		end := ical.NewProp(ical.PropDateTimeEnd)
		end.SetDate(h.Date.AddDays(1).Time(time.UTC))
		event.Props.Set(end)

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode holiday feed: %w", err)
	}
	return buf.Bytes(), nil
}
