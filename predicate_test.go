package tempo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthIs(t *testing.T) {
	p := MonthIs(time.January, time.July)
	assert.True(t, p.Matches(day(2024, 1, 31)))
	assert.True(t, p.Matches(day(2024, 7, 1)))
	assert.False(t, p.Matches(day(2024, 2, 1)))
	assert.False(t, MonthIs().Matches(day(2024, 1, 1)))
}

func TestWeekdayIs(t *testing.T) {
	weekend := WeekdayIs(time.Saturday, time.Sunday)
	assert.True(t, weekend.Matches(day(2024, 1, 6)))
	assert.True(t, weekend.Matches(day(2024, 1, 7)))
	assert.False(t, weekend.Matches(day(2024, 1, 8)))
}

func TestPeriodStart(t *testing.T) {
	tests := []struct {
		period Period
		at     time.Time
		want   bool
	}{
		{PeriodDay, day(2024, 5, 17), true},
		{PeriodWeek, day(2024, 1, 1), true},
		{PeriodWeek, day(2024, 1, 7), false},
		{PeriodMonth, day(2024, 5, 1), true},
		{PeriodMonth, day(2024, 5, 2), false},
		{PeriodYear, day(2024, 1, 1), true},
		{PeriodYear, day(2024, 2, 1), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PeriodStart(tt.period).Matches(tt.at), "%s %s", tt.period, FormatMoment(tt.at))
	}
}

func TestOnMark(t *testing.T) {
	assert.True(t, OnMark(EndOfYear).Matches(time.Date(2023, 12, 31, 18, 0, 0, 0, time.UTC)))
	assert.False(t, OnMark(EndOfYear).Matches(day(2023, 12, 30)))
	assert.True(t, OnMark(MonthStart).Matches(day(2024, 3, 1)))
	assert.False(t, OnMark(MonthStart).Matches(day(2024, 3, 2)))

	feb := OnMark(MomentMark(time.Date(2024, 2, 10, 15, 0, 0, 0, time.UTC)))
	assert.True(t, feb.Matches(day(2024, 2, 10)))
	assert.False(t, feb.Matches(day(2024, 2, 11)))
}

func TestPredicateFunc(t *testing.T) {
	odd := PredicateFunc(func(t time.Time) bool { return t.Day()%2 == 1 })
	assert.True(t, odd.Matches(day(2024, 1, 1)))
	assert.False(t, odd.Matches(day(2024, 1, 2)))
}

func TestMarkString(t *testing.T) {
	assert.Equal(t, "end-of-year", EndOfYear.String())
	assert.Equal(t, "month-start", MonthStart.String())
	assert.Equal(t, "2024-02-10T00:00:00", MomentMark(day(2024, 2, 10)).String())
}

func TestMarkResolve(t *testing.T) {
	g := NewGregorian(nil)
	ref := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)

	end, err := EndOfYear.resolve(g, ref)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31T23:59:59", FormatMoment(end))

	next, err := MonthStart.resolve(g, ref)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01T00:00:00", FormatMoment(next))

	_, err = MonthStart.resolve(g, day(9999, 12, 5))
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestParseWeekday(t *testing.T) {
	tests := map[string]time.Weekday{
		"monday": time.Monday,
		"Mon":    time.Monday,
		"SUNDAY": time.Sunday,
		"sat":    time.Saturday,
		"Thu":    time.Thursday,
	}
	for input, want := range tests {
		got, err := ParseWeekday(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseWeekday("mo")
	assert.Error(t, err)
	_, err = ParseWeekday("")
	assert.Error(t, err)
}

func TestParseMonth(t *testing.T) {
	tests := map[string]time.Month{
		"january": time.January,
		"Feb":     time.February,
		"DEC":     time.December,
		"sep":     time.September,
	}
	for input, want := range tests {
		got, err := ParseMonth(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseMonth("sept")
	assert.Error(t, err)
}
