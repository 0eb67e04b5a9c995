package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/zapponejosh/wareki-api/internal/calendar"
	"github.com/zapponejosh/wareki-api/internal/export"
)

func TestHolidayFeed(t *testing.T) {
	holidays := calendar.NewDefaultHolidayCalendar().HolidaysInYear(2025)
	now := time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC)

	data, err := export.HolidayFeed(holidays, "日本の祝日 2025", now)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "BEGIN:VCALENDAR")
	assert.Contains(t, text, "X-WR-CALNAME:日本の祝日 2025")
	assert.NotContains(t, text, "X-WR-CALNAME;")
	assert.Contains(t, text, "DTSTART;VALUE=DATE:20250101")
	assert.Contains(t, text, "DTEND;VALUE=DATE:20250102")

	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, len(holidays))

	uids := make(map[string]bool)
	for i, ev := range events {
		summary, err := ev.Props.Text(ical.PropSummary)
		require.NoError(t, err)
		assert.Equal(t, holidays[i].Name, summary)

		uid, err := ev.Props.Text(ical.PropUID)
		require.NoError(t, err)
		assert.False(t, uids[uid], "duplicate UID %s", uid)
		uids[uid] = true
	}
}

func TestHolidayFeed_SharedDates(t *testing.T) {
	holidays := []calendar.Holiday{
		{Date: calendar.NewDate(2025, time.May, 5), Name: "a"},
		{Date: calendar.NewDate(2025, time.May, 5), Name: "b"},
	}

	data, err := export.HolidayFeed(holidays, "test", time.Now())
	require.NoError(t, err)

	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)
	require.Len(t, cal.Events(), 2)

	first, _ := cal.Events()[0].Props.Text(ical.PropUID)
	second, _ := cal.Events()[1].Props.Text(ical.PropUID)
	assert.NotEqual(t, first, second)
}

func TestReferenceWorkbook(t *testing.T) {
	table := calendar.NewJapaneseEraTable()
	japanese := table.Rows(calendar.DefaultTableCeiling, 2025)
	minguo := calendar.MinguoRows(calendar.DefaultTableCeiling, 2025)

	buf, err := export.ReferenceWorkbook(japanese, minguo)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.SheetJapanese, export.SheetMinguo}, f.GetSheetList())

	jpRows, err := f.GetRows(export.SheetJapanese)
	require.NoError(t, err)
	require.Len(t, jpRows, len(japanese)+1)
	assert.Equal(t, []string{"西暦", "和暦", "年齢"}, jpRows[0])
	assert.Equal(t, []string{"1868", "明治元年", "157"}, jpRows[1])
	assert.Equal(t, []string{"2100", "令和82年", "—"}, jpRows[len(jpRows)-1])

	twRows, err := f.GetRows(export.SheetMinguo)
	require.NoError(t, err)
	require.Len(t, twRows, len(minguo)+1)
	assert.Equal(t, []string{"1912", "1", "113"}, twRows[1])
}

func TestReferenceWorkbook_Empty(t *testing.T) {
	buf, err := export.ReferenceWorkbook(nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetMinguo)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
