package tempo

import (
	"fmt"
	"strings"
	"time"
)

const momentLayout = "2006-01-02T15:04:05"

// FormatMoment renders an evaluated moment as YYYY-MM-DDTHH:MM:SS, followed
// by the UTC offset as +HHMM when it is not zero.
func FormatMoment(t time.Time) string {
	s := t.Format(momentLayout)
	if _, offset := t.Zone(); offset != 0 {
		s += formatOffset(offset / 60)
	}
	return s
}

// String renders the amount as "<n> <unit>", pluralized.
func (a Amount) String() string {
	return unitDisplay(a.Count(), a.Unit)
}

// String renders the duration in canonical form, for example
// "5 days + 2 hours - 1 hour". An empty duration renders as "0 seconds".
//
// The form parses back to the same terms unless the first term is
// negative, which the grammar cannot express.
func (d Duration) String() string {
	if len(d) == 0 {
		return "0 seconds"
	}
	var sb strings.Builder
	for i, t := range d {
		n := t.Count
		switch {
		case i == 0:
		case n < 0:
			sb.WriteString(" - ")
			n = -n
		default:
			sb.WriteString(" + ")
		}
		sb.WriteString(unitDisplay(n, t.Unit))
	}
	return sb.String()
}

// String renders the value: a moment via FormatMoment, a duration in
// canonical form.
func (v Value) String() string {
	if v.Kind == ValueKindDuration {
		return v.Duration.String()
	}
	return FormatMoment(v.Moment)
}

// String renders the literal at its written precision.
func (m Moment) String() string {
	return displayMoment(m)
}

// String renders the expression back to its source form.
func (e *Expr) String() string {
	switch e.Kind {
	case ExprKindLiteral:
		return e.Amount.String()
	case ExprKindExactDate:
		return displayMoment(e.Date)
	case ExprKindBinaryOp:
		return fmt.Sprintf("%s %s %s", e.Left, e.Op, e.Right)
	default:
		return ""
	}
}

// String renders the iterator expression back to its source form.
func (it *IteratorExpr) String() string {
	var sb strings.Builder
	sb.WriteString(it.Start.String())
	sb.WriteByte(' ')
	if it.StepAlias && it.Step.Count() == 1 {
		sb.WriteString(it.Step.Unit.Alias())
	} else {
		sb.WriteString("every ")
		sb.WriteString(it.Step.String())
	}
	if it.Until != nil {
		switch it.Until.Kind {
		case UntilExprKindDate:
			sb.WriteString(" until ")
			sb.WriteString(displayMoment(it.Until.Date))
		case UntilExprKindTimes:
			sb.WriteString(fmt.Sprintf(" %d times", it.Until.Times))
		}
	}
	return sb.String()
}

func displayMoment(m Moment) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%04d", m.Year))
	if m.Precision >= PrecisionMonth {
		sb.WriteString(fmt.Sprintf("-%02d", m.Month))
	}
	if m.Precision >= PrecisionDay {
		sb.WriteString(fmt.Sprintf("-%02d", m.Day))
	}
	if m.Precision >= PrecisionHour {
		sb.WriteString(fmt.Sprintf("T%02d", m.Hour))
	}
	if m.Precision >= PrecisionMinute {
		sb.WriteString(fmt.Sprintf(":%02d", m.Minute))
	}
	if m.Precision >= PrecisionSecond {
		sb.WriteString(fmt.Sprintf(":%02d", m.Second))
		if m.Offset != nil && *m.Offset != 0 {
			sb.WriteString(formatOffset(*m.Offset))
		}
	}
	return sb.String()
}

func displayDate(m Moment) string {
	return fmt.Sprintf("%04d-%02d-%02d", m.Year, m.Month, m.Day)
}

// formatOffset renders minutes east of UTC as +HHMM or -HHMM.
func formatOffset(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("%c%02d%02d", sign, minutes/60, minutes%60)
}

func unitDisplay(n int64, unit Unit) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
