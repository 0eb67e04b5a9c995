package calendar_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zapponejosh/wareki-api/internal/calendar"
)

func TestToMinguo(t *testing.T) {
	tests := []struct {
		year   int
		want   int
		wantOK bool
	}{
		{1911, 0, false},
		{1, 0, false},
		{1912, 1, true},
		{1949, 38, true},
		{2024, 113, true},
		{2500, 589, true},
	}

	for _, tt := range tests {
		got, ok := calendar.ToMinguo(tt.year)
		assert.Equal(t, tt.wantOK, ok, "year %d", tt.year)
		assert.Equal(t, tt.want, got, "year %d", tt.year)
	}
}

func TestFromMinguo(t *testing.T) {
	tests := []struct {
		minguo int
		want   int
		wantOK bool
	}{
		{0, 0, false},
		{-3, 0, false},
		{1, 1912, true},
		{113, 2024, true},
		// No ceiling in the converter itself.
		{500, 2411, true},
		{math.MaxInt, 0, false},
		{math.MaxInt - 1910, 0, false},
		{math.MaxInt - 1911, math.MaxInt, true},
	}

	for _, tt := range tests {
		got, ok := calendar.FromMinguo(tt.minguo)
		assert.Equal(t, tt.wantOK, ok, "minguo %d", tt.minguo)
		assert.Equal(t, tt.want, got, "minguo %d", tt.minguo)
	}
}

func TestMinguoRoundTrip(t *testing.T) {
	for y := 1912; y <= 2100; y++ {
		n, ok := calendar.ToMinguo(y)
		require.True(t, ok)

		back, ok := calendar.FromMinguo(n)
		require.True(t, ok)
		assert.Equal(t, y, back)
	}
}

func TestMinguoLabel(t *testing.T) {
	assert.Equal(t, "民國元年", calendar.MinguoLabel(1))
	assert.Equal(t, "民國113年", calendar.MinguoLabel(113))
}

func TestCurrentMinguoYear(t *testing.T) {
	clock := calendar.FixedClock(time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC))

	n, ok := calendar.CurrentMinguoYear(clock)
	require.True(t, ok)
	assert.Equal(t, 113, n)
}
