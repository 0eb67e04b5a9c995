package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/zapponejosh/wareki-api/internal/calendar"
	"github.com/zapponejosh/wareki-api/internal/database"
	"github.com/zapponejosh/wareki-api/internal/logger"
)

const sampleCSV = `国民の祝日・休日月日,国民の祝日・休日名称
2024/1/1,元日
2024/2/12,休日
2025/1/1,元日
2025/1/13,成人の日
2025/2/11,建国記念の日
2025/5/6,休日
`

func TestParseCSV(t *testing.T) {
	entries, err := parseCSV(strings.NewReader(sampleCSV), 2025)
	require.NoError(t, err)

	assert.Equal(t, []calendar.HolidayEntry{
		{Month: time.January, Day: 1, Name: "元日"},
		{Month: time.January, Day: 13, Name: "成人の日"},
		{Month: time.February, Day: 11, Name: "建国記念の日"},
		{Month: time.May, Day: 6, Name: "休日"},
	}, entries)
}

func TestParseCSV_AllYears(t *testing.T) {
	entries, err := parseCSV(strings.NewReader(sampleCSV), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 6)
}

func TestParseCSV_NoHeaderWithBOM(t *testing.T) {
	entries, err := parseCSV(strings.NewReader("\ufeff2025/1/1,元日\n"), 2025)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "元日", entries[0].Name)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		year  int
	}{
		{"bad date after header", "header,name\n2025/13/1,x\n", 0},
		{"single column", "2025/1/1\n", 0},
		{"year not present", sampleCSV, 2030},
		{"header only", "国民の祝日・休日月日,国民の祝日・休日名称\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCSV(strings.NewReader(tt.input), tt.year)
			assert.Error(t, err)
		})
	}
}

func TestReadEntries_ShiftJIS(t *testing.T) {
	var buf bytes.Buffer
	w := transform.NewWriter(&buf, japanese.ShiftJIS.NewEncoder())
	_, err := w.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	entries, err := readEntries(&buf, true, 2025)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "建国記念の日", entries[2].Name)
}

func TestValidateEntries(t *testing.T) {
	v := calendar.NewEntryValidator()

	assert.NoError(t, validateEntries(v, calendar.DefaultHolidayTemplate()))

	assert.Error(t, validateEntries(v, []calendar.HolidayEntry{{Month: 13, Day: 1, Name: "x"}}))
	assert.Error(t, validateEntries(v, []calendar.HolidayEntry{{Month: 1, Day: 1}}))

	// Passes the field tags; only the registered month-length rule rejects it.
	april31 := []calendar.HolidayEntry{{Month: time.April, Day: 31, Name: "x"}}
	assert.NoError(t, validateEntries(validator.New(), april31))

	err := validateEntries(v, april31)
	require.Error(t, err)
	assert.True(t, errors.Is(err, calendar.ErrInvalidHoliday))
	assert.Contains(t, err.Error(), calendar.TagDayInMonth)
}

func TestOptionsResolve(t *testing.T) {
	o := options{builtin: true, year: 2025}
	require.NoError(t, o.resolve())
	assert.Equal(t, "ja-2025", o.name)

	for _, bad := range []options{
		{},
		{builtin: true, csvPath: "x.csv", name: "a"},
		{builtin: true},
		{builtin: true, year: -1, name: "a"},
		{list: true, remove: "a"},
		{list: true, builtin: true},
	} {
		assert.Error(t, bad.resolve(), "%+v", bad)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "holidays.csv")
	dbPath := filepath.Join(dir, "wareki.db")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o644))

	ctx := context.Background()
	opts := options{csvPath: csvPath, dbPath: dbPath, year: 2025}

	var out bytes.Buffer
	require.NoError(t, run(ctx, opts, &out, logger.Discard()))
	assert.Contains(t, out.String(), "Template:            ja-2025")
	assert.Contains(t, out.String(), "Entries imported:    4")

	// Same name again fails without -replace.
	err := run(ctx, opts, &out, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-replace")

	opts.replace = true
	require.NoError(t, run(ctx, opts, &out, logger.Discard()))

	db, err := database.Open(database.DefaultConfig(dbPath), logger.Discard())
	require.NoError(t, err)
	defer db.Close()

	cal, err := calendar.LoadHolidayCalendar(ctx, db, "ja-2025")
	require.NoError(t, err)
	assert.Len(t, cal.Entries(), 4)
}

func TestRun_Builtin(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "wareki.db")

	var out bytes.Buffer
	err := run(context.Background(), options{builtin: true, dbPath: dbPath, name: "default"}, &out, logger.Discard())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Source:              builtin")
}

func TestRun_ListAndDelete(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "wareki.db")
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, options{list: true, dbPath: dbPath}, &out, logger.Discard()))
	assert.Contains(t, out.String(), "No templates stored")

	require.NoError(t, run(ctx, options{builtin: true, dbPath: dbPath, name: "ja-2025"}, &out, logger.Discard()))

	out.Reset()
	require.NoError(t, run(ctx, options{list: true, dbPath: dbPath}, &out, logger.Discard()))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"ja-2025", "16", "builtin"}, strings.Fields(lines[1])[:3])

	out.Reset()
	require.NoError(t, run(ctx, options{remove: "ja-2025", dbPath: dbPath}, &out, logger.Discard()))
	assert.Equal(t, "Deleted template ja-2025\n", out.String())

	err := run(ctx, options{remove: "ja-2025", dbPath: dbPath}, &out, logger.Discard())
	require.Error(t, err)
	assert.True(t, database.IsNotFound(err))
}
