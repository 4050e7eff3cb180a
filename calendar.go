package tempo

import (
	"fmt"
	"time"
)

// Clock abstracts the current time so parses of today, yesterday and
// tomorrow are deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock { return fixedClock{t: t} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// Period is a calendar period used by StartOf and EndOf.
type Period int

const (
	PeriodDay Period = iota
	PeriodWeek
	PeriodMonth
	PeriodYear
)

func (p Period) String() string {
	names := map[Period]string{
		PeriodDay:   "day",
		PeriodWeek:  "week",
		PeriodMonth: "month",
		PeriodYear:  "year",
	}
	return names[p]
}

// Calendar is the calendar primitive the evaluator and iterator engine
// delegate to. Implementations report results outside years 1-9999 as
// ErrOutOfRange.
type Calendar interface {
	// AddFixed adds n fixed-length units (seconds through weeks) as elapsed time.
	AddFixed(t time.Time, unit Unit, n int64) (time.Time, error)
	// AddCalendar adds n months or years, clamping the day of month down to
	// the last day of the target month.
	AddCalendar(t time.Time, unit Unit, n int64) (time.Time, error)
	StartOf(t time.Time, p Period) time.Time
	EndOf(t time.Time, p Period) time.Time
	WeekdayName(t time.Time) string
	Now() time.Time
}

const (
	minYear = 1
	maxYear = 9999

	// Wider than the whole representable range, in seconds and in months.
	maxSpanSeconds = int64(maxYear+1) * 366 * 86400
	maxSpanMonths  = int64(maxYear+1) * 12
)

// Gregorian is the proleptic Gregorian calendar over time.Time. Weeks start
// on Monday.
type Gregorian struct {
	Clock Clock
}

// NewGregorian creates a Gregorian calendar reading the current time from
// clock. A nil clock means the system clock.
func NewGregorian(clock Clock) *Gregorian {
	if clock == nil {
		clock = SystemClock()
	}
	return &Gregorian{Clock: clock}
}

// Now returns the clock's current time truncated to the second.
func (g *Gregorian) Now() time.Time {
	clock := g.Clock
	if clock == nil {
		clock = SystemClock()
	}
	return clock.Now().Truncate(time.Second)
}

// AddFixed implements Calendar.
func (g *Gregorian) AddFixed(t time.Time, unit Unit, n int64) (time.Time, error) {
	if unit.IsCalendar() {
		return g.AddCalendar(t, unit, n)
	}
	size := int64(unit.Fixed() / time.Second)
	if n > maxSpanSeconds/size || n < -maxSpanSeconds/size {
		return time.Time{}, outOfRange(unit, n)
	}
	result := time.Unix(t.Unix()+n*size, int64(t.Nanosecond())).In(t.Location())
	if !inRange(result) {
		return time.Time{}, outOfRange(unit, n)
	}
	return result, nil
}

// AddCalendar implements Calendar.
func (g *Gregorian) AddCalendar(t time.Time, unit Unit, n int64) (time.Time, error) {
	months := n
	switch unit {
	case UnitMonth:
	case UnitYear:
		if n > maxSpanMonths/12 || n < -maxSpanMonths/12 {
			return time.Time{}, outOfRange(unit, n)
		}
		months = n * 12
	default:
		return g.AddFixed(t, unit, n)
	}
	if months > maxSpanMonths || months < -maxSpanMonths {
		return time.Time{}, outOfRange(unit, n)
	}

	index := int64(t.Year())*12 + int64(t.Month()-1) + months
	year := int(floorDiv(index, 12))
	month := time.Month(index-int64(year)*12) + 1
	if year < minYear || year > maxYear {
		return time.Time{}, outOfRange(unit, n)
	}

	day := t.Day()
	if last := lastDayOfMonth(year, month).Day(); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()), nil
}

// StartOf returns the first second of the period containing t. A week that
// begins before year 1 is clamped to 0001-01-01T00:00:00.
func (g *Gregorian) StartOf(t time.Time, p Period) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch p {
	case PeriodWeek:
		return clampRange(day.AddDate(0, 0, -(isoWeekday(t) - 1)))
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case PeriodYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

// EndOf returns the last second (23:59:59) of the period containing t. A
// week that ends after year 9999 is clamped to 9999-12-31T23:59:59.
func (g *Gregorian) EndOf(t time.Time, p Period) time.Time {
	var last time.Time
	switch p {
	case PeriodWeek:
		last = g.StartOf(t, PeriodWeek).AddDate(0, 0, 6)
	case PeriodMonth:
		last = lastDayOfMonth(t.Year(), t.Month())
	case PeriodYear:
		last = time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		last = t
	}
	return clampRange(time.Date(last.Year(), last.Month(), last.Day(), 23, 59, 59, 0, t.Location()))
}

// WeekdayName returns the English name of t's weekday.
func (g *Gregorian) WeekdayName(t time.Time) string {
	return t.Weekday().String()
}

// lastDayOfMonth returns the last day of the given month.
func lastDayOfMonth(year int, month time.Month) time.Time {
	// Go to first day of next month, then subtract one day
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1)
}

// dateOnly returns a date with time set to midnight UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// isoWeekday returns the ISO weekday (Monday=1, Sunday=7).
func isoWeekday(t time.Time) int {
	dow := t.Weekday()
	return (int(dow)+6)%7 + 1
}

// clampRange pins t to the first or last second of the representable
// range, in t's location.
func clampRange(t time.Time) time.Time {
	switch {
	case t.Year() < minYear:
		return time.Date(minYear, time.January, 1, 0, 0, 0, 0, t.Location())
	case t.Year() > maxYear:
		return time.Date(maxYear, time.December, 31, 23, 59, 59, 0, t.Location())
	default:
		return t
	}
}

func inRange(t time.Time) bool {
	return t.Year() >= minYear && t.Year() <= maxYear
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func outOfRange(unit Unit, n int64) *Error {
	return EvalError(CodeOutOfRange,
		fmt.Sprintf("adding %d %s leaves the representable range (years %d-%d)", n, unit, minYear, maxYear))
}
