package calendar_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zapponejosh/wareki-api/internal/calendar"
	"github.com/zapponejosh/wareki-api/internal/database"
)

// MockHolidaySource stands in for the SQLite store.
type MockHolidaySource struct {
	mock.Mock
}

func (m *MockHolidaySource) GetHolidayEntries(ctx context.Context, template string) ([]database.HolidayEntry, error) {
	args := m.Called(ctx, template)
	if r := args.Get(0); r != nil {
		return r.([]database.HolidayEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestLoadHolidayCalendar(t *testing.T) {
	ctx := context.Background()
	src := new(MockHolidaySource)
	src.On("GetHolidayEntries", ctx, "custom").Return([]database.HolidayEntry{
		{Position: 1, Month: 1, Day: 1, Name: "New Year"},
		{Position: 2, Month: 12, Day: 25, Name: "Christmas"},
	}, nil)

	cal, err := calendar.LoadHolidayCalendar(ctx, src, "custom")
	require.NoError(t, err)
	src.AssertExpectations(t)

	h := cal.NextHoliday(calendar.NewDate(2024, time.December, 1))
	assert.Equal(t, "Christmas", h.Name)

	h = cal.NextHoliday(calendar.NewDate(2024, time.December, 26))
	assert.Equal(t, "New Year", h.Name)
	assert.Equal(t, calendar.NewDate(2025, time.January, 1), h.Date)
}

func TestLoadHolidayCalendar_SourceError(t *testing.T) {
	ctx := context.Background()
	src := new(MockHolidaySource)
	src.On("GetHolidayEntries", ctx, "missing").Return(nil, database.ErrNotFound)

	cal, err := calendar.LoadHolidayCalendar(ctx, src, "missing")
	assert.Nil(t, cal)
	assert.True(t, database.IsNotFound(err), "got %v", err)
}

func TestLoadHolidayCalendar_InvalidRows(t *testing.T) {
	ctx := context.Background()
	src := new(MockHolidaySource)
	src.On("GetHolidayEntries", ctx, "bad").Return([]database.HolidayEntry{
		{Month: 2, Day: 31, Name: "nope"},
	}, nil)

	_, err := calendar.LoadHolidayCalendar(ctx, src, "bad")
	assert.True(t, errors.Is(err, calendar.ErrInvalidHoliday), "got %v", err)
}

func TestLoadHolidayCalendar_EmptyTemplate(t *testing.T) {
	ctx := context.Background()
	src := new(MockHolidaySource)
	src.On("GetHolidayEntries", ctx, "empty").Return([]database.HolidayEntry{}, nil)

	_, err := calendar.LoadHolidayCalendar(ctx, src, "empty")
	assert.True(t, errors.Is(err, calendar.ErrInvalidHoliday), "got %v", err)
}
