package tempo

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func formatAll(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = FormatMoment(t)
	}
	return out
}

func mustIterate(t *testing.T, input string) IteratorSpec {
	t.Helper()
	spec, err := Iterate(input, pinnedClock())
	require.NoError(t, err, input)
	return spec
}

// =============================================================================
// Termination
// =============================================================================

func TestIteratorCount(t *testing.T) {
	got := slices.Collect(mustIterate(t, "2024-01-01 daily 3 times").All())
	assert.Equal(t, []string{
		"2024-01-01T00:00:00",
		"2024-01-02T00:00:00",
		"2024-01-03T00:00:00",
	}, formatAll(got))
}

func TestIteratorCountZeroYieldsNothing(t *testing.T) {
	got := slices.Collect(mustIterate(t, "2024-01-01 daily 0 times").All())
	assert.Empty(t, got)
}

func TestIteratorBeforeIsExclusiveAtDayGranularity(t *testing.T) {
	got := slices.Collect(mustIterate(t, "2024-01-01 weekly until 2024-01-29").All())
	assert.Equal(t, []string{
		"2024-01-01T00:00:00",
		"2024-01-08T00:00:00",
		"2024-01-15T00:00:00",
		"2024-01-22T00:00:00",
	}, formatAll(got))

	// time of day is ignored: 2024-01-03T23:00 is on the bound's date
	got = slices.Collect(mustIterate(t, "2024-01-01T23 daily until 2024-01-03T01").All())
	assert.Equal(t, []string{"2024-01-01T23:00:00", "2024-01-02T23:00:00"}, formatAll(got))
}

func TestIteratorStartOnOrAfterBoundYieldsNothing(t *testing.T) {
	assert.Empty(t, slices.Collect(mustIterate(t, "2024-02-01 daily until 2024-02-01").All()))
	assert.Empty(t, slices.Collect(mustIterate(t, "2024-02-01 daily until 2024-01-01").All()))
}

func TestIteratorPartialUntilMeansPeriodStart(t *testing.T) {
	it, err := ParseIterator("2023-12-30 daily until 2024")
	require.NoError(t, err)
	require.Len(t, it.Warnings(), 1)
	assert.Contains(t, it.Warnings()[0], "until 2024 is read as 2024-01-01")

	spec, err := it.Build(NewEvaluator(nil))
	require.NoError(t, err)
	got := slices.Collect(spec.All())
	assert.Equal(t, []string{"2023-12-30T00:00:00", "2023-12-31T00:00:00"}, formatAll(got))
}

func TestIteratorNoWarningForFullUntil(t *testing.T) {
	it, err := ParseIterator("2023-12-30 daily until 2024-01-05")
	require.NoError(t, err)
	assert.Empty(t, it.Warnings())
}

func TestIteratorUnboundedIsLazy(t *testing.T) {
	spec := mustIterate(t, "2024-01-01 every 2 hours")
	assert.False(t, spec.Bounded())

	got := slices.Collect(Take(spec.All(), 3))
	assert.Equal(t, []string{
		"2024-01-01T00:00:00",
		"2024-01-01T02:00:00",
		"2024-01-01T04:00:00",
	}, formatAll(got))
}

func TestIteratorEarlyTerminationWithBreak(t *testing.T) {
	count := 0
	for range mustIterate(t, "today secondly").All() {
		count++
		if count >= 5 {
			break
		}
	}
	assert.Equal(t, 5, count)
}

// =============================================================================
// Skips
// =============================================================================

func TestIteratorCountIgnoresSkips(t *testing.T) {
	spec := mustIterate(t, "2024-01-05 daily 4 times").WithSkip(WeekdayIs(time.Saturday, time.Sunday))
	got := slices.Collect(spec.All())
	assert.Equal(t, []string{
		"2024-01-05T00:00:00",
		"2024-01-08T00:00:00",
		"2024-01-09T00:00:00",
		"2024-01-10T00:00:00",
	}, formatAll(got))
}

func TestIteratorSkipAllUnboundedNeverYields(t *testing.T) {
	spec := NewIteratorSpec(day(2024, 1, 1), DurationOf(Days(1))).
		WithSkip(PredicateFunc(func(time.Time) bool { return true }))
	it, err := spec.Iterator()
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		_, res := it.Poll()
		require.Equal(t, PollSkip, res, "candidate %d", i)
	}
	assert.Equal(t, int64(0), it.Produced())
	assert.Equal(t, StateActive, it.State())
}

func TestIteratorSkipAllBeforeTerminates(t *testing.T) {
	spec := mustIterate(t, "2024-01-01 daily until 2024-02-01").WithSkip(MonthIs(time.January))
	it, err := spec.Iterator()
	require.NoError(t, err)

	_, ok := it.Next()
	assert.False(t, ok)
	assert.Equal(t, StateExhausted, it.State())
	assert.NoError(t, it.Err())
}

func TestIteratorSkipsInOrder(t *testing.T) {
	var seen []string
	record := func(name string, match bool) Predicate {
		return PredicateFunc(func(time.Time) bool {
			seen = append(seen, name)
			return match
		})
	}
	spec := NewIteratorSpec(day(2024, 1, 1), DurationOf(Days(1))).
		WithSkip(record("a", false), record("b", true), record("c", false)).
		WithUntil(Count(1))
	it, err := spec.Iterator()
	require.NoError(t, err)

	_, res := it.Poll()
	assert.Equal(t, PollSkip, res)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestIteratorMarks(t *testing.T) {
	spec := NewIteratorSpec(day(2023, 12, 29), DurationOf(Days(1))).
		WithSkip(OnMark(EndOfYear), OnMark(MonthStart)).
		WithUntil(Count(3))
	got := slices.Collect(spec.All())
	assert.Equal(t, []string{
		"2023-12-29T00:00:00",
		"2023-12-30T00:00:00",
		"2024-01-02T00:00:00",
	}, formatAll(got))
}

func TestIteratorUntilMarkResolvesAgainstStart(t *testing.T) {
	spec := NewIteratorSpec(day(2024, 12, 25), DurationOf(Days(2))).WithUntil(BeforeMark(EndOfYear))
	got := slices.Collect(spec.All())
	assert.Equal(t, []string{"2024-12-25T00:00:00", "2024-12-27T00:00:00", "2024-12-29T00:00:00"}, formatAll(got))

	spec = NewIteratorSpec(day(2024, 2, 20), DurationOf(Weeks(1))).WithUntil(BeforeMark(MonthStart))
	got = slices.Collect(spec.All())
	assert.Equal(t, []string{"2024-02-20T00:00:00", "2024-02-27T00:00:00"}, formatAll(got))

	spec = NewIteratorSpec(day(2024, 2, 20), DurationOf(Days(1))).WithUntil(BeforeMark(MomentMark(day(2024, 2, 22))))
	assert.Len(t, slices.Collect(spec.All()), 2)
}

// =============================================================================
// Stepping
// =============================================================================

func TestIteratorMonthlyStepsFromCursor(t *testing.T) {
	got := slices.Collect(mustIterate(t, "2024-01-31 monthly 4 times").All())
	assert.Equal(t, []string{
		"2024-01-31T00:00:00",
		"2024-02-29T00:00:00",
		"2024-03-29T00:00:00",
		"2024-04-29T00:00:00",
	}, formatAll(got))
}

func TestIteratorStepErrorExhausts(t *testing.T) {
	spec := mustIterate(t, "9999-12-29 daily")
	it, err := spec.Iterator()
	require.NoError(t, err)

	var got []time.Time
	for tm := range it.Seq() {
		got = append(got, tm)
	}
	assert.Equal(t, []string{
		"9999-12-29T00:00:00",
		"9999-12-30T00:00:00",
		"9999-12-31T00:00:00",
	}, formatAll(got))
	require.ErrorIs(t, it.Err(), ErrOutOfRange)
	assert.Equal(t, StateExhausted, it.State())

	_, ok := it.Next()
	assert.False(t, ok)
}

func TestIteratorIsRestartableFromSpec(t *testing.T) {
	spec := mustIterate(t, "2024-01-01 daily 2 times")
	first := slices.Collect(spec.All())
	second := slices.Collect(spec.All())
	assert.Equal(t, formatAll(first), formatAll(second))
	assert.Len(t, first, 2)
}

func TestIteratorSpecIsImmutable(t *testing.T) {
	base := NewIteratorSpec(day(2024, 1, 1), DurationOf(Days(1)))
	skipping := base.WithSkip(WeekdayIs(time.Monday))
	bounded := skipping.WithUntil(Count(2))

	assert.Empty(t, base.Skip)
	assert.Nil(t, base.Until)
	assert.Len(t, skipping.Skip, 1)
	assert.Nil(t, skipping.Until)
	require.NotNil(t, bounded.Until)

	more := skipping.WithSkip(MonthIs(time.March))
	assert.Len(t, skipping.Skip, 1)
	assert.Len(t, more.Skip, 2)
}

// =============================================================================
// Configuration errors
// =============================================================================

func TestIteratorConfigErrors(t *testing.T) {
	start := day(2024, 1, 1)

	_, err := NewIteratorSpec(start, DurationOf(Days(0))).Iterator()
	require.ErrorIs(t, err, ErrZeroStep)

	_, err = NewIteratorSpec(start, nil).Iterator()
	require.ErrorIs(t, err, ErrZeroStep)

	_, err = NewIteratorSpec(start, DurationOf(Days(1), Hours(-24))).Iterator()
	require.ErrorIs(t, err, ErrZeroStep)

	_, err = NewIteratorSpec(start, DurationOf(Days(1))).WithUntil(Count(-1)).Iterator()
	require.ErrorIs(t, err, ErrNegativeCount)

	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, ErrorKindIterator, terr.Kind)

	_, err = Iterate("2024-01-01 every 0 weeks")
	require.ErrorIs(t, err, ErrZeroStep)

	assert.Empty(t, slices.Collect(NewIteratorSpec(start, nil).All()))
}

func TestSpecFromValues(t *testing.T) {
	moment := MomentValue(day(2024, 1, 1))
	step := DurationValue(DurationOf(Weeks(1)))

	spec, err := SpecFromValues(moment, step)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01T00:00:00", "2024-01-08T00:00:00"},
		formatAll(slices.Collect(Take(spec.All(), 2))))

	_, err = SpecFromValues(step, step)
	require.ErrorIs(t, err, ErrNotAMoment)

	_, err = SpecFromValues(moment, moment)
	require.ErrorIs(t, err, ErrNotADuration)
}

func TestBuildRejectsDurationStart(t *testing.T) {
	it := &IteratorExpr{Start: NewLiteral(Days(1)), Step: Days(1)}
	_, err := it.Build(NewEvaluator(nil))
	require.ErrorIs(t, err, ErrNotAMoment)
}

func TestBuildPropagatesEvalErrors(t *testing.T) {
	_, err := Iterate("2023-02-30 daily")
	require.ErrorIs(t, err, ErrInvalidDate)

	_, err = Iterate("2024-01-01 daily until 2023-02-29")
	require.ErrorIs(t, err, ErrInvalidDate)
}
