package calendar_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zapponejosh/wareki-api/internal/calendar"
)

func TestToEraLabel(t *testing.T) {
	table := calendar.NewJapaneseEraTable()

	tests := []struct {
		year   int
		want   string
		wantOK bool
	}{
		{1867, "", false},
		{1868, "明治元年", true},
		{1869, "明治2年", true},
		{1911, "明治44年", true},
		{1912, "大正元年", true},
		{1925, "大正14年", true},
		{1926, "昭和元年", true},
		{1988, "昭和63年", true},
		{1989, "平成元年", true},
		{2018, "平成30年", true},
		{2019, "令和元年", true},
		{2024, "令和6年", true},
		{3000, "令和982年", true},
		{0, "", false},
		{-50, "", false},
	}

	for _, tt := range tests {
		got, ok := table.ToEraLabel(tt.year)
		assert.Equal(t, tt.wantOK, ok, "year %d", tt.year)
		assert.Equal(t, tt.want, got, "year %d", tt.year)
	}
}

func TestFromEraLabel(t *testing.T) {
	table := calendar.NewJapaneseEraTable()

	tests := []struct {
		name    string
		key     string
		eraYear int
		want    int
		wantOK  bool
	}{
		{"first year of reiwa", "reiwa", 1, 2019, true},
		{"open era has no ceiling", "reiwa", 500, 2518, true},
		{"heisei 31 overflows into reiwa", "heisei", 31, 0, false},
		{"heisei 30", "heisei", 30, 2018, true},
		{"showa 64 overflows into heisei", "showa", 64, 0, false},
		{"showa 63", "showa", 63, 1988, true},
		{"zero era year", "meiji", 0, 0, false},
		{"negative era year", "taisho", -1, 0, false},
		{"unknown key", "edo", 1, 0, false},
		{"overflowing era year", "reiwa", math.MaxInt, 0, false},
		{"largest era year", "reiwa", math.MaxInt - 2018, math.MaxInt, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.FromEraLabel(tt.key, tt.eraYear)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Zero(t, got)
			}
		})
	}
}

func TestEraRoundTrip(t *testing.T) {
	table := calendar.NewJapaneseEraTable()

	for y := 1868; y <= 2100; y++ {
		ey, ok := table.EraYearOf(y)
		require.True(t, ok, "year %d has no era", y)

		back, ok := table.FromEraLabel(ey.Era.Key, ey.Year)
		require.True(t, ok, "year %d: %s %d did not convert back", y, ey.Era.Key, ey.Year)
		assert.Equal(t, y, back)
		assert.Equal(t, y, ey.Gregorian())
	}
}

func TestLookup_BoundariesAreHalfOpen(t *testing.T) {
	table := calendar.NewJapaneseEraTable()

	for _, e := range table.Eras() {
		got, ok := table.Lookup(e.StartYear)
		require.True(t, ok)
		assert.Equal(t, e.Key, got.Key, "start year %d", e.StartYear)

		if !e.IsOpen() {
			last, ok := table.Lookup(e.EndYear - 1)
			require.True(t, ok)
			assert.Equal(t, e.Key, last.Key, "last year of %s", e.Key)

			next, ok := table.Lookup(e.EndYear)
			require.True(t, ok)
			assert.NotEqual(t, e.Key, next.Key, "end year of %s", e.Key)
		}
	}
}

func TestEras_ReturnsCopy(t *testing.T) {
	table := calendar.NewJapaneseEraTable()

	eras := table.Eras()
	eras[0].Name = "changed"

	got, ok := table.ByKey("meiji")
	require.True(t, ok)
	assert.Equal(t, "明治", got.Name)
}

func TestNewEraTable_Validation(t *testing.T) {
	tests := []struct {
		name string
		eras []calendar.Era
	}{
		{"empty", nil},
		{"missing key", []calendar.Era{{Name: "x", StartYear: 1}}},
		{"duplicate key", []calendar.Era{
			{Key: "a", Name: "A", StartYear: 1, EndYear: 5},
			{Key: "a", Name: "B", StartYear: 5},
		}},
		{"open era not last", []calendar.Era{
			{Key: "a", Name: "A", StartYear: 1},
			{Key: "b", Name: "B", StartYear: 5},
		}},
		{"ends before start", []calendar.Era{{Key: "a", Name: "A", StartYear: 10, EndYear: 5}}},
		{"gap", []calendar.Era{
			{Key: "a", Name: "A", StartYear: 1, EndYear: 5},
			{Key: "b", Name: "B", StartYear: 6},
		}},
		{"overlap", []calendar.Era{
			{Key: "a", Name: "A", StartYear: 1, EndYear: 5},
			{Key: "b", Name: "B", StartYear: 4},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calendar.NewEraTable(tt.eras)
			assert.True(t, errors.Is(err, calendar.ErrInvalidEraTable), "got %v", err)
		})
	}
}

func TestNewEraTable_CustomTable(t *testing.T) {
	eras := []calendar.Era{
		{Key: "old", Name: "旧", StartYear: 100, EndYear: 110},
		{Key: "new", Name: "新", StartYear: 110},
	}
	table, err := calendar.NewEraTable(eras)
	require.NoError(t, err)

	// The table owns its copy.
	eras[1].Name = "changed"

	label, ok := table.ToEraLabel(110)
	assert.True(t, ok)
	assert.Equal(t, "新元年", label)

	_, ok = table.ToEraLabel(99)
	assert.False(t, ok)
}

func TestCurrent(t *testing.T) {
	table := calendar.NewJapaneseEraTable()
	clock := calendar.FixedClock(time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC))

	ey, ok := table.Current(clock)
	require.True(t, ok)
	assert.Equal(t, "reiwa", ey.Era.Key)
	assert.Equal(t, 7, ey.Year)
	assert.Equal(t, "令和7年", ey.Label())
}

func TestFormatEraYear(t *testing.T) {
	assert.Equal(t, "令和元年", calendar.FormatEraYear("令和", 1))
	assert.Equal(t, "令和10年", calendar.FormatEraYear("令和", 10))
}
