package tempo

import (
	"fmt"
	"math/big"
	"time"
)

// ValueKind represents the type of an evaluated expression.
type ValueKind int

const (
	ValueKindMoment ValueKind = iota
	ValueKindDuration
)

func (k ValueKind) String() string {
	if k == ValueKindDuration {
		return "duration"
	}
	return "moment"
}

// Term is one signed component of a Duration.
type Term struct {
	Unit  Unit
	Count int64
}

// Duration is an ordered sum of signed terms. Terms are never merged, so
// "1 month + 30 days" keeps both and applies them in order.
type Duration []Term

// DurationOf builds a Duration from amounts, one term each.
func DurationOf(amounts ...Amount) Duration {
	d := make(Duration, 0, len(amounts))
	for _, a := range amounts {
		d = append(d, Term{Unit: a.Unit, Count: a.Count()})
	}
	return d
}

// Negate returns d with every term's sign flipped.
func (d Duration) Negate() Duration {
	n := make(Duration, len(d))
	for i, t := range d {
		n[i] = Term{Unit: t.Unit, Count: -t.Count}
	}
	return n
}

// IsZero reports whether every term is zero. An empty Duration is zero.
func (d Duration) IsZero() bool {
	for _, t := range d {
		if t.Count != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether d and o move a moment by the same amount: the same
// elapsed seconds from their fixed-length terms and the same number of
// months from their calendar terms. So "1 day - 2 days + 3 days" equals
// "2 days" and "1 year" equals "12 months". Calendar terms clamp as they are
// applied, so equal durations that mix signs on months or years may still
// land on different moments.
func (d Duration) Equal(o Duration) bool {
	dSec, dMon := d.totals()
	oSec, oMon := o.totals()
	return dSec.Cmp(oSec) == 0 && dMon.Cmp(oMon) == 0
}

// totals returns the elapsed seconds and the months d adds up to.
func (d Duration) totals() (seconds, months *big.Int) {
	seconds, months = new(big.Int), new(big.Int)
	for _, t := range d {
		n := big.NewInt(t.Count)
		switch t.Unit {
		case UnitYear:
			months.Add(months, n.Mul(n, big.NewInt(12)))
		case UnitMonth:
			months.Add(months, n)
		default:
			seconds.Add(seconds, n.Mul(n, big.NewInt(int64(t.Unit.Fixed()/time.Second))))
		}
	}
	return seconds, months
}

// Value is the result of evaluating an expression: a Moment or a Duration.
type Value struct {
	Kind     ValueKind
	Moment   time.Time
	Duration Duration
}

// MomentValue wraps t as a moment value.
func MomentValue(t time.Time) Value {
	return Value{Kind: ValueKindMoment, Moment: t}
}

// DurationValue wraps d as a duration value.
func DurationValue(d Duration) Value {
	return Value{Kind: ValueKindDuration, Duration: d}
}

// Evaluator reduces expression trees to values using a Calendar.
type Evaluator struct {
	calendar Calendar
}

// NewEvaluator creates an evaluator. A nil calendar means Gregorian on the
// system clock.
func NewEvaluator(cal Calendar) *Evaluator {
	if cal == nil {
		cal = NewGregorian(nil)
	}
	return &Evaluator{calendar: cal}
}

// Calendar returns the evaluator's calendar.
func (e *Evaluator) Calendar() Calendar {
	return e.calendar
}

// Evaluate reduces expr to a Value.
func (e *Evaluator) Evaluate(expr *Expr) (Value, error) {
	switch expr.Kind {
	case ExprKindLiteral:
		return DurationValue(DurationOf(expr.Amount)), nil

	case ExprKindExactDate:
		t, err := e.ResolveMoment(expr.Date)
		if err != nil {
			return Value{}, err
		}
		return MomentValue(t), nil

	case ExprKindBinaryOp:
		left, err := e.Evaluate(expr.Left)
		if err != nil {
			return Value{}, err
		}
		right, err := e.Evaluate(expr.Right)
		if err != nil {
			return Value{}, err
		}
		return e.combine(left, expr.Op, right)

	default:
		return Value{}, EvalError(CodeIncompatibleOperands, fmt.Sprintf("unknown expression kind %d", expr.Kind))
	}
}

func (e *Evaluator) combine(left Value, op Operator, right Value) (Value, error) {
	switch {
	case left.Kind == ValueKindDuration && right.Kind == ValueKindDuration:
		rhs := right.Duration
		if op == OpSub {
			rhs = rhs.Negate()
		}
		sum := make(Duration, 0, len(left.Duration)+len(rhs))
		sum = append(sum, left.Duration...)
		return DurationValue(append(sum, rhs...)), nil

	case left.Kind == ValueKindMoment && right.Kind == ValueKindDuration:
		t, err := e.Apply(left.Moment, op, right.Duration)
		if err != nil {
			return Value{}, err
		}
		return MomentValue(t), nil

	default:
		return Value{}, EvalError(CodeIncompatibleOperands,
			fmt.Sprintf("cannot apply '%s' to %s and %s", op, left.Kind, right.Kind))
	}
}

// Apply adds (OpAdd) or subtracts (OpSub) d from t, one term at a time in
// stored order.
func (e *Evaluator) Apply(t time.Time, op Operator, d Duration) (time.Time, error) {
	for _, term := range d {
		n := term.Count
		if op == OpSub {
			n = -n
		}
		var err error
		if term.Unit.IsCalendar() {
			t, err = e.calendar.AddCalendar(t, term.Unit, n)
		} else {
			t, err = e.calendar.AddFixed(t, term.Unit, n)
		}
		if err != nil {
			return time.Time{}, err
		}
	}
	return t, nil
}

// ResolveMoment normalizes a literal to the start of its written period and
// checks that it names a real calendar date.
func (e *Evaluator) ResolveMoment(m Moment) (time.Time, error) {
	n := m.Normalize()
	if n.Year < minYear || n.Year > maxYear {
		return time.Time{}, EvalError(CodeOutOfRange,
			fmt.Sprintf("year %04d is outside the representable range (%d-%d)", n.Year, minYear, maxYear))
	}
	t := time.Date(n.Year, time.Month(n.Month), n.Day, n.Hour, n.Minute, n.Second, 0, m.Location())
	if t.Day() != n.Day {
		err := EvalError(CodeInvalidDate, fmt.Sprintf("%s is not a valid date", displayDate(n)))
		err.Field = "day"
		err.Value = fmt.Sprint(n.Day)
		return time.Time{}, err
	}
	return t, nil
}

// --- Derived queries ---

// Query is a derived query over a moment value.
type Query int

const (
	QueryStartOfDay Query = iota
	QueryStartOfWeek
	QueryStartOfMonth
	QueryStartOfYear
	QueryEndOfDay
	QueryEndOfWeek
	QueryEndOfMonth
	QueryEndOfYear
	QueryDayName
)

var queryNames = map[Query]string{
	QueryStartOfDay:   "start-of-day",
	QueryStartOfWeek:  "start-of-week",
	QueryStartOfMonth: "start-of-month",
	QueryStartOfYear:  "start-of-year",
	QueryEndOfDay:     "end-of-day",
	QueryEndOfWeek:    "end-of-week",
	QueryEndOfMonth:   "end-of-month",
	QueryEndOfYear:    "end-of-year",
	QueryDayName:      "dayname",
}

func (q Query) String() string {
	return queryNames[q]
}

// ParseQuery looks up a query by its name (start-of-day, ..., dayname).
func ParseQuery(name string) (Query, bool) {
	for q, n := range queryNames {
		if n == name {
			return q, true
		}
	}
	return 0, false
}

// QueryNames returns every query name in declaration order.
func QueryNames() []string {
	names := make([]string, 0, len(queryNames))
	for q := QueryStartOfDay; q <= QueryDayName; q++ {
		names = append(names, queryNames[q])
	}
	return names
}

// Run answers q for the moment t. DayName returns the weekday name and a
// zero time; every other query returns a moment and an empty name.
func (e *Evaluator) Run(q Query, t time.Time) (time.Time, string) {
	switch q {
	case QueryStartOfDay:
		return e.calendar.StartOf(t, PeriodDay), ""
	case QueryStartOfWeek:
		return e.calendar.StartOf(t, PeriodWeek), ""
	case QueryStartOfMonth:
		return e.calendar.StartOf(t, PeriodMonth), ""
	case QueryStartOfYear:
		return e.calendar.StartOf(t, PeriodYear), ""
	case QueryEndOfDay:
		return e.calendar.EndOf(t, PeriodDay), ""
	case QueryEndOfWeek:
		return e.calendar.EndOf(t, PeriodWeek), ""
	case QueryEndOfMonth:
		return e.calendar.EndOf(t, PeriodMonth), ""
	case QueryEndOfYear:
		return e.calendar.EndOf(t, PeriodYear), ""
	default:
		return time.Time{}, e.calendar.WeekdayName(t)
	}
}

// StartOfDay returns midnight of t's day.
func (e *Evaluator) StartOfDay(t time.Time) time.Time { return e.calendar.StartOf(t, PeriodDay) }

// StartOfWeek returns midnight of the Monday of t's week.
func (e *Evaluator) StartOfWeek(t time.Time) time.Time { return e.calendar.StartOf(t, PeriodWeek) }

// StartOfMonth returns midnight of the first of t's month.
func (e *Evaluator) StartOfMonth(t time.Time) time.Time { return e.calendar.StartOf(t, PeriodMonth) }

// StartOfYear returns midnight of January 1st of t's year.
func (e *Evaluator) StartOfYear(t time.Time) time.Time { return e.calendar.StartOf(t, PeriodYear) }

// EndOfDay returns 23:59:59 of t's day.
func (e *Evaluator) EndOfDay(t time.Time) time.Time { return e.calendar.EndOf(t, PeriodDay) }

// EndOfWeek returns 23:59:59 of the Sunday of t's week.
func (e *Evaluator) EndOfWeek(t time.Time) time.Time { return e.calendar.EndOf(t, PeriodWeek) }

// EndOfMonth returns 23:59:59 of the last day of t's month.
func (e *Evaluator) EndOfMonth(t time.Time) time.Time { return e.calendar.EndOf(t, PeriodMonth) }

// EndOfYear returns 23:59:59 of December 31st of t's year.
func (e *Evaluator) EndOfYear(t time.Time) time.Time { return e.calendar.EndOf(t, PeriodYear) }

// DayName returns the English weekday name of t.
func (e *Evaluator) DayName(t time.Time) string { return e.calendar.WeekdayName(t) }
