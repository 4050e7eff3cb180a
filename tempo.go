// Package tempo parses and evaluates plain-text date phrases and repeating
// date sequences.
//
// A time type is a date expression ("today - 5 days", "2023-03-01 + 2weeks")
// or an amount expression ("1 month + 30 days"). An iterator adds a step and
// an optional until clause ("2024-01-01 weekly until 2024-03-01",
// "2017-01-01 every 2mins 5 times").
//
// Example usage:
//
//	v, err := tempo.Evaluate("2024-01-31 + 1 month")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(v) // 2024-02-29T00:00:00
//
//	spec, err := tempo.Iterate("2024-01-01 daily 3 times")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for t := range spec.All() {
//	    fmt.Println(tempo.FormatMoment(t))
//	}
package tempo

// Option configures parsing and evaluation.
type Option func(*options)

type options struct {
	calendar Calendar
}

// WithClock resolves today, yesterday and tomorrow against clock.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.calendar = NewGregorian(clock)
	}
}

// WithCalendar replaces the calendar primitive.
func WithCalendar(cal Calendar) Option {
	return func(o *options) {
		o.calendar = cal
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.calendar == nil {
		o.calendar = NewGregorian(nil)
	}
	return o
}

// NewEvaluatorWith creates an evaluator on the calendar selected by opts.
func NewEvaluatorWith(opts ...Option) *Evaluator {
	return NewEvaluator(buildOptions(opts).calendar)
}

// Evaluate parses input as a time type and evaluates it.
func Evaluate(input string, opts ...Option) (Value, error) {
	expr, err := ParseTimeType(input, opts...)
	if err != nil {
		return Value{}, err
	}
	return NewEvaluatorWith(opts...).Evaluate(expr)
}

// Iterate parses input as an iterator and builds its spec.
func Iterate(input string, opts ...Option) (IteratorSpec, error) {
	it, err := ParseIterator(input, opts...)
	if err != nil {
		return IteratorSpec{}, err
	}
	return it.Build(NewEvaluatorWith(opts...))
}

// MustParse parses input with Parse.
// It panics if the input is invalid.
func MustParse(input string, opts ...Option) *Parsed {
	p, err := Parse(input, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate checks if an input string parses as a time type or an iterator.
func Validate(input string) bool {
	_, err := Parse(input)
	return err == nil
}
