package tempo

import (
	"fmt"
	"time"
)

// Unit represents the unit of an amount.
type Unit int

const (
	UnitSecond Unit = iota
	UnitMinute
	UnitHour
	UnitDay
	UnitWeek
	UnitMonth
	UnitYear
)

func (u Unit) String() string {
	names := map[Unit]string{
		UnitSecond: "second",
		UnitMinute: "minute",
		UnitHour:   "hour",
		UnitDay:    "day",
		UnitWeek:   "week",
		UnitMonth:  "month",
		UnitYear:   "year",
	}
	return names[u]
}

// Alias returns the single-word alias meaning one of this unit (daily, weekly, ...).
func (u Unit) Alias() string {
	aliases := map[Unit]string{
		UnitSecond: "secondly",
		UnitMinute: "minutely",
		UnitHour:   "hourly",
		UnitDay:    "daily",
		UnitWeek:   "weekly",
		UnitMonth:  "monthly",
		UnitYear:   "yearly",
	}
	return aliases[u]
}

// IsCalendar reports whether the unit has no fixed length (months and years).
func (u Unit) IsCalendar() bool {
	return u == UnitMonth || u == UnitYear
}

// Fixed returns the elapsed length of a fixed-length unit.
// It returns 0 for calendar units.
func (u Unit) Fixed() time.Duration {
	switch u {
	case UnitSecond:
		return time.Second
	case UnitMinute:
		return time.Minute
	case UnitHour:
		return time.Hour
	case UnitDay:
		return 24 * time.Hour
	case UnitWeek:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// Operator is an arithmetic operator joining two expressions.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
)

func (o Operator) String() string {
	if o == OpSub {
		return "-"
	}
	return "+"
}

// Amount is a signed magnitude of a single unit. The sign belongs to the
// amount itself, not to the operator that joins it to other amounts.
type Amount struct {
	Sign      int // +1 or -1
	Magnitude int64
	Unit      Unit
}

// NewAmount creates an amount from a signed count.
func NewAmount(count int64, unit Unit) Amount {
	if count < 0 {
		return Amount{Sign: -1, Magnitude: -count, Unit: unit}
	}
	return Amount{Sign: 1, Magnitude: count, Unit: unit}
}

// Count returns the signed magnitude.
func (a Amount) Count() int64 {
	if a.Sign < 0 {
		return -a.Magnitude
	}
	return a.Magnitude
}

// Seconds returns an amount of n seconds.
func Seconds(n int64) Amount { return NewAmount(n, UnitSecond) }

// Minutes returns an amount of n minutes.
func Minutes(n int64) Amount { return NewAmount(n, UnitMinute) }

// Hours returns an amount of n hours.
func Hours(n int64) Amount { return NewAmount(n, UnitHour) }

// Days returns an amount of n days.
func Days(n int64) Amount { return NewAmount(n, UnitDay) }

// Weeks returns an amount of n weeks.
func Weeks(n int64) Amount { return NewAmount(n, UnitWeek) }

// Months returns an amount of n months.
func Months(n int64) Amount { return NewAmount(n, UnitMonth) }

// Years returns an amount of n years.
func Years(n int64) Amount { return NewAmount(n, UnitYear) }

// --- Moment ---

// Precision records the last component written in a date literal.
type Precision int

const (
	PrecisionYear Precision = iota + 1
	PrecisionMonth
	PrecisionDay
	PrecisionHour
	PrecisionMinute
	PrecisionSecond
)

func (p Precision) String() string {
	names := map[Precision]string{
		PrecisionYear:   "year",
		PrecisionMonth:  "month",
		PrecisionDay:    "day",
		PrecisionHour:   "hour",
		PrecisionMinute: "minute",
		PrecisionSecond: "second",
	}
	return names[p]
}

// Moment is a possibly partial calendar date with optional time of day and
// UTC offset, as written in an expression. Components finer than Precision
// are absent and hold zero.
type Moment struct {
	Year      int
	Month     int
	Day       int
	Hour      int
	Minute    int
	Second    int
	Precision Precision
	Offset    *int // minutes east of UTC; nil when not written
}

// MomentFromTime captures t to the second, keeping its UTC offset.
func MomentFromTime(t time.Time) Moment {
	_, offset := t.Zone()
	minutes := offset / 60
	return Moment{
		Year:      t.Year(),
		Month:     int(t.Month()),
		Day:       t.Day(),
		Hour:      t.Hour(),
		Minute:    t.Minute(),
		Second:    t.Second(),
		Precision: PrecisionSecond,
		Offset:    &minutes,
	}
}

// Normalize fills absent components with the start of the written period:
// January, the 1st, midnight.
func (m Moment) Normalize() Moment {
	n := m
	if n.Precision < PrecisionMonth {
		n.Month = 1
	}
	if n.Precision < PrecisionDay {
		n.Day = 1
	}
	if n.Precision < PrecisionHour {
		n.Hour = 0
	}
	if n.Precision < PrecisionMinute {
		n.Minute = 0
	}
	if n.Precision < PrecisionSecond {
		n.Second = 0
	}
	n.Precision = PrecisionSecond
	return n
}

// IsPartial reports whether the date part stops before the day.
func (m Moment) IsPartial() bool {
	return m.Precision < PrecisionDay
}

// Location returns the fixed zone for the written offset, or UTC.
func (m Moment) Location() *time.Location {
	if m.Offset == nil || *m.Offset == 0 {
		return time.UTC
	}
	return time.FixedZone(formatOffset(*m.Offset), *m.Offset*60)
}

// --- Expressions ---

// ExprKind represents the variant of an expression node.
type ExprKind int

const (
	ExprKindLiteral ExprKind = iota
	ExprKindExactDate
	ExprKindBinaryOp
)

// Expr is an expression tree node: Literal(Amount), ExactDate(Moment), or
// BinaryOp(Left, Op, Right).
type Expr struct {
	Kind ExprKind

	// Literal
	Amount Amount

	// ExactDate
	Date Moment

	// BinaryOp
	Left  *Expr
	Op    Operator
	Right *Expr
}

// NewLiteral creates a literal amount expression.
func NewLiteral(amount Amount) *Expr {
	return &Expr{Kind: ExprKindLiteral, Amount: amount}
}

// NewExactDate creates an exact date expression.
func NewExactDate(date Moment) *Expr {
	return &Expr{Kind: ExprKindExactDate, Date: date}
}

// NewBinaryOp creates a binary operation expression.
func NewBinaryOp(left *Expr, op Operator, right *Expr) *Expr {
	return &Expr{Kind: ExprKindBinaryOp, Left: left, Op: op, Right: right}
}

// Leftmost returns the leftmost leaf of the tree.
func (e *Expr) Leftmost() *Expr {
	for e.Kind == ExprKindBinaryOp {
		e = e.Left
	}
	return e
}

// IsDate reports whether the expression is anchored on an exact date.
func (e *Expr) IsDate() bool {
	return e.Leftmost().Kind == ExprKindExactDate
}

// --- Iterator expressions ---

// UntilExprKind represents the type of until clause.
type UntilExprKind int

const (
	UntilExprKindDate UntilExprKind = iota
	UntilExprKindTimes
)

// UntilExpr is a parsed until clause: "until <date>" or "<n> times".
type UntilExpr struct {
	Kind  UntilExprKind
	Date  Moment // Used for UntilExprKindDate
	Times int64  // Used for UntilExprKindTimes
}

// NewUntilDate creates an until clause bounded by a date.
func NewUntilDate(date Moment) UntilExpr {
	return UntilExpr{Kind: UntilExprKindDate, Date: date}
}

// NewUntilTimes creates an until clause bounded by a repetition count.
func NewUntilTimes(n int64) UntilExpr {
	return UntilExpr{Kind: UntilExprKindTimes, Times: n}
}

// IteratorExpr is a parsed iterator: a start expression, a step, and an
// optional until clause.
type IteratorExpr struct {
	Start     *Expr
	Step      Amount
	StepAlias bool // step was written as an alias word (daily, weekly, ...)
	Until     *UntilExpr
}

// Warnings reports surprising but valid constructs. A partial until date is
// normalized to the start of its period, so "until 2024" stops at 2024-01-01.
func (it *IteratorExpr) Warnings() []string {
	var warnings []string
	if it.Until != nil && it.Until.Kind == UntilExprKindDate && it.Until.Date.IsPartial() {
		written := displayMoment(it.Until.Date)
		resolved := displayDate(it.Until.Date.Normalize())
		warnings = append(warnings, fmt.Sprintf(
			"until %s is read as %s, the start of the period, not its end", written, resolved))
	}
	return warnings
}
