package tempo

import (
	"fmt"
	"strings"
	"time"
)

// Predicate decides whether the iterator skips a candidate moment.
type Predicate interface {
	Matches(t time.Time) bool
}

// PredicateFunc adapts an ordinary function to a Predicate.
type PredicateFunc func(t time.Time) bool

// Matches calls f(t).
func (f PredicateFunc) Matches(t time.Time) bool { return f(t) }

// MonthIs matches moments in any of the given months.
func MonthIs(months ...time.Month) Predicate {
	return monthPredicate(months)
}

type monthPredicate []time.Month

func (p monthPredicate) Matches(t time.Time) bool {
	for _, m := range p {
		if t.Month() == m {
			return true
		}
	}
	return false
}

// WeekdayIs matches moments on any of the given weekdays.
func WeekdayIs(days ...time.Weekday) Predicate {
	return weekdayPredicate(days)
}

type weekdayPredicate []time.Weekday

func (p weekdayPredicate) Matches(t time.Time) bool {
	for _, d := range p {
		if t.Weekday() == d {
			return true
		}
	}
	return false
}

// PeriodStart matches moments on the first day of their period: every day,
// Mondays, the 1st of the month, or January 1st.
func PeriodStart(p Period) Predicate {
	return periodStartPredicate(p)
}

type periodStartPredicate Period

func (p periodStartPredicate) Matches(t time.Time) bool {
	switch Period(p) {
	case PeriodWeek:
		return isoWeekday(t) == 1
	case PeriodMonth:
		return t.Day() == 1
	case PeriodYear:
		return t.Day() == 1 && t.Month() == time.January
	default:
		return true
	}
}

// --- Marks ---

// MarkKind represents the type of mark.
type MarkKind int

const (
	MarkKindEndOfYear MarkKind = iota
	MarkKindMonthStart
	MarkKindMoment
)

// Mark is a symbolic calendar boundary or a specific moment, used in skip
// predicates and until conditions.
type Mark struct {
	Kind   MarkKind
	Moment time.Time // Used for MarkKindMoment
}

var (
	// EndOfYear marks December 31st.
	EndOfYear = Mark{Kind: MarkKindEndOfYear}
	// MonthStart marks the 1st of a month.
	MonthStart = Mark{Kind: MarkKindMonthStart}
)

// MomentMark marks the day of t.
func MomentMark(t time.Time) Mark {
	return Mark{Kind: MarkKindMoment, Moment: t}
}

func (m Mark) String() string {
	switch m.Kind {
	case MarkKindEndOfYear:
		return "end-of-year"
	case MarkKindMonthStart:
		return "month-start"
	default:
		return FormatMoment(m.Moment)
	}
}

// OnMark matches moments that fall on the mark's day, evaluated against
// each candidate: EndOfYear matches December 31st of the candidate's year,
// MonthStart the 1st of its month.
func OnMark(m Mark) Predicate {
	return markPredicate(m)
}

type markPredicate Mark

func (p markPredicate) Matches(t time.Time) bool {
	switch p.Kind {
	case MarkKindEndOfYear:
		return t.Month() == time.December && t.Day() == 31
	case MarkKindMonthStart:
		return t.Day() == 1
	default:
		return dateOnly(t).Equal(dateOnly(p.Moment))
	}
}

// resolve turns the mark into a concrete moment relative to ref: the end
// of ref's year, the first day of the month after ref, or the mark's own
// moment.
func (m Mark) resolve(cal Calendar, ref time.Time) (time.Time, error) {
	switch m.Kind {
	case MarkKindEndOfYear:
		return cal.EndOf(ref, PeriodYear), nil
	case MarkKindMonthStart:
		return cal.AddCalendar(cal.StartOf(ref, PeriodMonth), UnitMonth, 1)
	default:
		return m.Moment, nil
	}
}

// ParseWeekday looks up a weekday by English name or three-letter
// abbreviation, ignoring case.
func ParseWeekday(name string) (time.Weekday, error) {
	lower := strings.ToLower(name)
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if lower == full || lower == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// ParseMonth looks up a month by English name or three-letter
// abbreviation, ignoring case.
func ParseMonth(name string) (time.Month, error) {
	lower := strings.ToLower(name)
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if lower == full || lower == full[:3] {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", name)
}
