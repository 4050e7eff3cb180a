package tempo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationString(t *testing.T) {
	tests := []struct {
		d    Duration
		want string
	}{
		{Duration{}, "0 seconds"},
		{Duration{{UnitDay, 1}}, "1 day"},
		{Duration{{UnitDay, 5}}, "5 days"},
		{Duration{{UnitDay, 0}}, "0 days"},
		{Duration{{UnitDay, 5}, {UnitHour, 2}, {UnitHour, -1}}, "5 days + 2 hours - 1 hour"},
		{Duration{{UnitMonth, 1}, {UnitDay, 30}}, "1 month + 30 days"},
		{Duration{{UnitDay, -3}, {UnitWeek, 2}}, "-3 days + 2 weeks"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.d.String())
	}
}

func TestDurationRoundTrip(t *testing.T) {
	inputs := []string{
		"5 days",
		"1 month + 30 days",
		"5 days + 2 hours - 1 hour",
		"daily - 12 hrs + 1 s",
		"2 yrs - 3 months + 1 w - 0 mins",
		"1 sec",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			v := evalString(t, input)
			require.Equal(t, ValueKindDuration, v.Kind)

			back := evalString(t, v.Duration.String())
			assert.Equal(t, v.Duration, back.Duration)
			assert.Equal(t, v.String(), back.String())
		})
	}
}

func TestFormatMoment(t *testing.T) {
	assert.Equal(t, "2024-01-02T03:04:05", FormatMoment(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Equal(t, "2024-01-02T03:04:05+0530",
		FormatMoment(time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("IST", 330*60))))
	assert.Equal(t, "2024-01-02T03:04:05-0800",
		FormatMoment(time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("PST", -8*3600))))
}

func TestExprString(t *testing.T) {
	inputs := []string{
		"2024",
		"2024-02",
		"2024-02-29 + 1 day",
		"2024-02-29T13:05:09+0200 - 2 hours + 1 month",
		"2024-02-29T13 + 1 hour",
		"1 day + 2 days - 3 days",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			expr, err := ParseTimeType(input)
			require.NoError(t, err)
			assert.Equal(t, input, expr.String())

			again, err := ParseTimeType(expr.String())
			require.NoError(t, err)
			assert.Equal(t, expr, again)
		})
	}

	// aliases render as their amount
	expr, err := ParseTimeType("2024-01-01 + weekly")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 + 1 week", expr.String())
}

func TestIteratorExprString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2024-01-01 weekly", "2024-01-01 weekly"},
		{"2024-01-01 2 days 3 times", "2024-01-01 every 2 days 3 times"},
		{"2024-01-01 every 2mins until 2024-01-02", "2024-01-01 every 2 minutes until 2024-01-02"},
		{"2024-01-01 + 1 month monthly until 2025", "2024-01-01 + 1 month monthly until 2025"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			it, err := ParseIterator(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, it.String())

			again, err := ParseIterator(it.String())
			require.NoError(t, err)
			assert.Equal(t, it.Until, again.Until)
			assert.Equal(t, it.Step, again.Step)
		})
	}
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "2024-01-01T00:00:00", MomentValue(day(2024, 1, 1)).String())
	assert.Equal(t, "2 weeks", DurationValue(DurationOf(Weeks(2))).String())
}

func TestFormatOffset(t *testing.T) {
	assert.Equal(t, "+0000", formatOffset(0))
	assert.Equal(t, "+0530", formatOffset(330))
	assert.Equal(t, "-0045", formatOffset(-45))
	assert.Equal(t, "+2359", formatOffset(23*60+59))
}
