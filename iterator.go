package tempo

import (
	"fmt"
	"iter"
	"slices"
	"time"
)

// UntilKind represents the type of until condition.
type UntilKind int

const (
	UntilKindBefore UntilKind = iota
	UntilKindCount
)

// UntilCondition terminates an iterator: either before a mark (compared by
// calendar date, time of day ignored) or after a number of yields.
type UntilCondition struct {
	Kind  UntilKind
	Mark  Mark  // Used for UntilKindBefore
	Count int64 // Used for UntilKindCount
}

// Before stops the iterator once the cursor's date reaches t's date.
func Before(t time.Time) UntilCondition {
	return UntilCondition{Kind: UntilKindBefore, Mark: MomentMark(t)}
}

// BeforeMark stops the iterator once the cursor's date reaches the mark,
// resolved once against the iterator's start.
func BeforeMark(m Mark) UntilCondition {
	return UntilCondition{Kind: UntilKindBefore, Mark: m}
}

// Count stops the iterator after n moments have been yielded. Skipped
// candidates do not count.
func Count(n int64) UntilCondition {
	return UntilCondition{Kind: UntilKindCount, Count: n}
}

// IteratorSpec describes a lazy sequence of moments. It is an immutable
// value: the With methods return modified copies.
type IteratorSpec struct {
	Start time.Time
	Step  Duration
	Skip  []Predicate
	Until *UntilCondition

	calendar Calendar
}

// NewIteratorSpec creates an unbounded spec stepping from start by step on
// the Gregorian calendar.
func NewIteratorSpec(start time.Time, step Duration) IteratorSpec {
	return IteratorSpec{Start: start, Step: slices.Clone(step)}
}

// WithCalendar returns a copy of s that steps on cal.
func (s IteratorSpec) WithCalendar(cal Calendar) IteratorSpec {
	s.calendar = cal
	return s
}

// WithSkip returns a copy of s with preds appended to its skip predicates.
func (s IteratorSpec) WithSkip(preds ...Predicate) IteratorSpec {
	s.Skip = append(slices.Clone(s.Skip), preds...)
	return s
}

// WithUntil returns a copy of s terminated by u.
func (s IteratorSpec) WithUntil(u UntilCondition) IteratorSpec {
	s.Until = &u
	return s
}

// Bounded reports whether the spec carries an until condition.
func (s IteratorSpec) Bounded() bool {
	return s.Until != nil
}

func (s IteratorSpec) cal() Calendar {
	if s.calendar == nil {
		return NewGregorian(nil)
	}
	return s.calendar
}

// Validate checks the spec's configuration: the step must move the cursor
// and a count must not be negative.
func (s IteratorSpec) Validate() error {
	if s.Step.IsZero() {
		return IteratorConfigError(CodeZeroStep, "iterator step is zero")
	}
	if s.Until != nil && s.Until.Kind == UntilKindCount && s.Until.Count < 0 {
		return IteratorConfigError(CodeNegativeCount,
			fmt.Sprintf("iterator count %d is negative", s.Until.Count))
	}
	return nil
}

// Iterator starts a fresh iteration from s.Start.
func (s IteratorSpec) Iterator() (*Iterator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	ev := NewEvaluator(s.cal())
	next, err := ev.Apply(s.Start, OpAdd, s.Step)
	if err == nil && next.Equal(s.Start) {
		return nil, IteratorConfigError(CodeZeroStep,
			fmt.Sprintf("iterator step %s does not move %s", s.Step, FormatMoment(s.Start)))
	}

	it := &Iterator{
		spec:      s,
		evaluator: ev,
		cursor:    s.Start,
		skip:      slices.Clone(s.Skip),
	}
	if s.Until != nil && s.Until.Kind == UntilKindBefore {
		bound, err := s.Until.Mark.resolve(ev.Calendar(), s.Start)
		if err != nil {
			return nil, err
		}
		it.bound = dateOnly(bound)
		it.hasBound = true
	}
	return it, nil
}

// All returns the sequence as an iter.Seq. Each range over it restarts from
// s.Start. A spec that fails Validate yields nothing; call Iterator to see
// the error.
//
// Without an until condition the sequence is infinite and the caller must
// stop ranging.
func (s IteratorSpec) All() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		it, err := s.Iterator()
		if err != nil {
			return
		}
		for t := range it.Seq() {
			if !yield(t) {
				return
			}
		}
	}
}

// Take yields at most n values from seq.
func Take(seq iter.Seq[time.Time], n int) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if n <= 0 {
			return
		}
		i := 0
		for t := range seq {
			if !yield(t) {
				return
			}
			i++
			if i >= n {
				return
			}
		}
	}
}

// IteratorState represents the lifecycle of an Iterator.
type IteratorState int

const (
	StateActive IteratorState = iota
	StateExhausted
)

func (s IteratorState) String() string {
	if s == StateExhausted {
		return "exhausted"
	}
	return "active"
}

// PollResult is the outcome of examining one candidate.
type PollResult int

const (
	PollYield PollResult = iota
	PollSkip
	PollDone
)

// Iterator walks an IteratorSpec. It owns its cursor and count; calls must
// be serialized by the caller.
type Iterator struct {
	spec      IteratorSpec
	evaluator *Evaluator
	skip      []Predicate

	cursor   time.Time
	produced int64
	bound    time.Time
	hasBound bool
	state    IteratorState
	err      error
}

// Poll examines the current candidate and advances past it. It returns the
// candidate with PollYield, PollSkip when a predicate matched, or PollDone
// once the iterator is exhausted. Poll never loops, so callers can cap the
// number of candidates examined.
func (it *Iterator) Poll() (time.Time, PollResult) {
	if it.state == StateExhausted {
		return time.Time{}, PollDone
	}
	if it.err != nil || it.reachedUntil() {
		it.state = StateExhausted
		return time.Time{}, PollDone
	}

	current := it.cursor
	skipped := it.skipped(current)

	next, err := it.evaluator.Apply(current, OpAdd, it.spec.Step)
	if err != nil {
		it.err = err
	} else {
		it.cursor = next
	}

	if skipped {
		return time.Time{}, PollSkip
	}
	it.produced++
	return current, PollYield
}

// Next returns the next moment, or false once the iterator is exhausted.
// Without an until condition an iterator whose predicates skip every
// candidate never returns.
func (it *Iterator) Next() (time.Time, bool) {
	for {
		t, res := it.Poll()
		switch res {
		case PollYield:
			return t, true
		case PollDone:
			return time.Time{}, false
		}
	}
}

// Seq returns the remaining moments as an iter.Seq.
func (it *Iterator) Seq() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for {
			t, ok := it.Next()
			if !ok || !yield(t) {
				return
			}
		}
	}
}

// Err returns the stepping error that exhausted the iterator, if any.
func (it *Iterator) Err() error {
	return it.err
}

// State returns the iterator's lifecycle state.
func (it *Iterator) State() IteratorState {
	return it.state
}

// Produced returns the number of moments yielded so far.
func (it *Iterator) Produced() int64 {
	return it.produced
}

func (it *Iterator) reachedUntil() bool {
	until := it.spec.Until
	if until == nil {
		return false
	}
	switch until.Kind {
	case UntilKindCount:
		return it.produced >= until.Count
	default:
		return it.hasBound && !dateOnly(it.cursor).Before(it.bound)
	}
}

func (it *Iterator) skipped(t time.Time) bool {
	for _, p := range it.skip {
		if p.Matches(t) {
			return true
		}
	}
	return false
}

// Build evaluates the parsed iterator into a spec on ev's calendar. The
// start must evaluate to a moment.
func (it *IteratorExpr) Build(ev *Evaluator) (IteratorSpec, error) {
	start, err := ev.Evaluate(it.Start)
	if err != nil {
		return IteratorSpec{}, err
	}
	if start.Kind != ValueKindMoment {
		return IteratorSpec{}, IteratorConfigError(CodeNotAMoment,
			fmt.Sprintf("iterator start %s is a %s, not a moment", it.Start, start.Kind))
	}

	spec := NewIteratorSpec(start.Moment, DurationOf(it.Step)).WithCalendar(ev.Calendar())
	if it.Until != nil {
		switch it.Until.Kind {
		case UntilExprKindDate:
			bound, err := ev.ResolveMoment(it.Until.Date)
			if err != nil {
				return IteratorSpec{}, err
			}
			spec = spec.WithUntil(Before(bound))
		case UntilExprKindTimes:
			spec = spec.WithUntil(Count(it.Until.Times))
		}
	}
	if err := spec.Validate(); err != nil {
		return IteratorSpec{}, err
	}
	return spec, nil
}

// SpecFromValues builds an unbounded spec from evaluated values: start must
// be a moment and step a duration.
func SpecFromValues(start, step Value) (IteratorSpec, error) {
	if start.Kind != ValueKindMoment {
		return IteratorSpec{}, IteratorConfigError(CodeNotAMoment,
			fmt.Sprintf("iterator start %s is a %s, not a moment", start, start.Kind))
	}
	if step.Kind != ValueKindDuration {
		return IteratorSpec{}, IteratorConfigError(CodeNotADuration,
			fmt.Sprintf("iterator step %s is a %s, not a duration", step, step.Kind))
	}
	spec := NewIteratorSpec(start.Moment, step.Duration)
	if err := spec.Validate(); err != nil {
		return IteratorSpec{}, err
	}
	return spec, nil
}
