package tempo

import (
	"fmt"
)

// parser is the internal parser state.
type parser struct {
	tokens   []Token
	pos      int
	input    string
	calendar Calendar
}

// ParseTimeType parses a date expression or an amount expression.
//
// Date aliases (today, yesterday, tomorrow) are resolved against the
// calendar's clock here, so the returned tree does not change when
// evaluated later.
func ParseTimeType(input string, opts ...Option) (*Expr, error) {
	p, err := newParser(input, opts)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseTimeType()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return expr, nil
}

// ParseIterator parses an iterator: a date expression, a step, and an
// optional until clause.
func ParseIterator(input string, opts ...Option) (*IteratorExpr, error) {
	p, err := newParser(input, opts)
	if err != nil {
		return nil, err
	}
	if !p.atExactDate() {
		return nil, p.unexpected("date at start of iterator")
	}
	start, err := p.parseDateExpr()
	if err != nil {
		return nil, err
	}
	it, err := p.parseIteratorTail(start)
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return it, nil
}

// ParsedKind represents which grammar matched in Parse.
type ParsedKind int

const (
	ParsedTimeType ParsedKind = iota
	ParsedIterator
)

// Parsed is the result of Parse: exactly one of Expr and Iterator is set.
type Parsed struct {
	Kind     ParsedKind
	Expr     *Expr
	Iterator *IteratorExpr
}

// Parse parses input as an iterator when it carries a step after its date
// expression, and as a time type otherwise.
func Parse(input string, opts ...Option) (*Parsed, error) {
	p, err := newParser(input, opts)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseTimeType()
	if err != nil {
		return nil, err
	}
	if p.peek() == nil {
		return &Parsed{Kind: ParsedTimeType, Expr: expr}, nil
	}
	if !expr.IsDate() || !p.atIterSpec() {
		return nil, p.unexpected("end of expression")
	}
	it, err := p.parseIteratorTail(expr)
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return &Parsed{Kind: ParsedIterator, Iterator: it}, nil
}

func newParser(input string, opts []Option) (*parser, error) {
	o := buildOptions(opts)
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ParseError(CodeUnexpectedEOF, "empty expression", Span{0, 0}, input)
	}
	return &parser{tokens: tokens, input: input, calendar: o.calendar}, nil
}

func (p *parser) peek() *Token {
	if p.pos < len(p.tokens) {
		return &p.tokens[p.pos]
	}
	return nil
}

func (p *parser) peekAt(offset int) *Token {
	if p.pos+offset < len(p.tokens) {
		return &p.tokens[p.pos+offset]
	}
	return nil
}

func (p *parser) peekKind() TokenKind {
	tok := p.peek()
	if tok != nil {
		return tok.Kind
	}
	return -1
}

func (p *parser) peekKeyword(kw Keyword) bool {
	tok := p.peek()
	return tok != nil && tok.Kind == TokenKeyword && tok.KeywordVal == kw
}

func (p *parser) advance() *Token {
	tok := p.peek()
	if tok != nil {
		p.pos++
	}
	return tok
}

func (p *parser) endSpan() Span {
	end := p.tokens[len(p.tokens)-1].Span.End
	return Span{end, end}
}

// unexpected reports the current token, or the end of input, as not being
// what the grammar expected.
func (p *parser) unexpected(expected string) error {
	tok := p.peek()
	if tok == nil {
		return ParseError(CodeUnexpectedEOF,
			fmt.Sprintf("unexpected end of input, expected %s", expected), p.endSpan(), p.input)
	}
	return ParseError(CodeUnexpectedToken,
		fmt.Sprintf("unexpected %s '%s' at position %d, expected %s", tok.Kind, tok.Text, tok.Span.Start, expected),
		tok.Span, p.input)
}

func (p *parser) consume(expected string, kind TokenKind) (*Token, error) {
	tok := p.peek()
	if tok != nil && tok.Kind == kind {
		p.pos++
		return tok, nil
	}
	return nil, p.unexpected(expected)
}

func (p *parser) consumeSeparator(sep string) bool {
	tok := p.peek()
	if tok != nil && tok.Kind == TokenDateSeparator && tok.Text == sep {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectEnd() error {
	if p.peek() != nil {
		return p.unexpected("end of expression")
	}
	return nil
}

// --- Grammar productions ---

// timetype = date_expr | amount_expr
func (p *parser) parseTimeType() (*Expr, error) {
	if p.atExactDate() {
		return p.parseDateExpr()
	}
	return p.parseAmountExpr()
}

// atExactDate reports whether the next tokens start an exact date. A bare
// four-digit number is a year unless a unit word follows it.
func (p *parser) atExactDate() bool {
	tok := p.peek()
	if tok == nil {
		return false
	}
	switch tok.Kind {
	case TokenKeyword:
		return tok.KeywordVal == KeywordToday || tok.KeywordVal == KeywordYesterday || tok.KeywordVal == KeywordTomorrow
	case TokenDatePart:
		return true
	case TokenNumber:
		next := p.peekAt(1)
		return len(tok.Text) == 4 && (next == nil || next.Kind != TokenUnitWord)
	default:
		return false
	}
}

// atIterSpec reports whether the next tokens start an iteration step.
func (p *parser) atIterSpec() bool {
	tok := p.peek()
	if tok == nil {
		return false
	}
	switch tok.Kind {
	case TokenAliasWord:
		return true
	case TokenKeyword:
		return tok.KeywordVal == KeywordEvery
	case TokenNumber:
		next := p.peekAt(1)
		return next != nil && next.Kind == TokenUnitWord
	default:
		return false
	}
}

// date_expr = exact_date (operator amount)*
func (p *parser) parseDateExpr() (*Expr, error) {
	date, err := p.parseExactDate()
	if err != nil {
		return nil, err
	}
	return p.parseChain(NewExactDate(date))
}

// amount_expr = amount (operator amount)*
func (p *parser) parseAmountExpr() (*Expr, error) {
	amount, err := p.parseAmount()
	if err != nil {
		return nil, err
	}
	return p.parseChain(NewLiteral(amount))
}

// parseChain folds "op amount" pairs onto left, left to right.
func (p *parser) parseChain(left *Expr) (*Expr, error) {
	for p.peekKind() == TokenOperator {
		op := p.advance().OperatorVal
		amount, err := p.parseAmount()
		if err != nil {
			return nil, err
		}
		left = NewBinaryOp(left, op, NewLiteral(amount))
	}
	return left, nil
}

// amount = number unit | alias
func (p *parser) parseAmount() (Amount, error) {
	tok := p.peek()
	if tok == nil {
		return Amount{}, p.unexpected("amount")
	}

	switch tok.Kind {
	case TokenAliasWord:
		p.advance()
		return NewAmount(1, tok.UnitVal), nil
	case TokenNumber:
		p.advance()
		unit, err := p.consume("unit after number", TokenUnitWord)
		if err != nil {
			return Amount{}, err
		}
		return NewAmount(tok.NumberVal, unit.UnitVal), nil
	default:
		return Amount{}, p.unexpected("amount (<number><unit> or daily, weekly, ...)")
	}
}

// exact_date = YYYY ("-" MM ("-" DD ("T" time)?)?)? | "today" | "yesterday" | "tomorrow"
func (p *parser) parseExactDate() (Moment, error) {
	tok := p.peek()
	if tok == nil {
		return Moment{}, p.unexpected("date")
	}

	if tok.Kind == TokenKeyword {
		switch tok.KeywordVal {
		case KeywordToday:
			p.advance()
			return p.relativeToNow(0)
		case KeywordYesterday:
			p.advance()
			return p.relativeToNow(-1)
		case KeywordTomorrow:
			p.advance()
			return p.relativeToNow(1)
		}
		return Moment{}, p.unexpected("date")
	}

	if tok.Kind != TokenDatePart && (tok.Kind != TokenNumber || len(tok.Text) != 4) {
		return Moment{}, p.unexpected("date")
	}
	p.advance()
	m := Moment{Year: int(tok.NumberVal), Precision: PrecisionYear}

	fields := []struct {
		sep       string
		name      string
		min, max  int
		target    *int
		precision Precision
	}{
		{"-", "month", 1, 12, &m.Month, PrecisionMonth},
		{"-", "day", 1, 31, &m.Day, PrecisionDay},
		{"T", "hour", 0, 23, &m.Hour, PrecisionHour},
		{":", "minute", 0, 59, &m.Minute, PrecisionMinute},
		{":", "second", 0, 59, &m.Second, PrecisionSecond},
	}
	for _, f := range fields {
		if !p.consumeSeparator(f.sep) {
			return m, nil
		}
		v, err := p.parseComponent(f.name, f.min, f.max)
		if err != nil {
			return Moment{}, err
		}
		*f.target = v
		m.Precision = f.precision
	}

	if p.peekKind() == TokenOffsetSign {
		sign := p.advance().OperatorVal
		offset, err := p.parseOffset(sign)
		if err != nil {
			return Moment{}, err
		}
		m.Offset = &offset
	}
	return m, nil
}

func (p *parser) parseComponent(field string, min, max int) (int, error) {
	tok, err := p.consume(field, TokenDatePart)
	if err != nil {
		return 0, err
	}
	v := int(tok.NumberVal)
	if v < min || v > max {
		return 0, InvalidComponentError(field, v, tok.Span, p.input)
	}
	return v, nil
}

// offset = ("+"|"-") HH MM
func (p *parser) parseOffset(sign Operator) (int, error) {
	tok, err := p.consume("utc offset", TokenDatePart)
	if err != nil {
		return 0, err
	}
	hours, minutes := int(tok.NumberVal)/100, int(tok.NumberVal)%100
	if hours > 23 {
		return 0, InvalidComponentError("offset hour", hours, tok.Span, p.input)
	}
	if minutes > 59 {
		return 0, InvalidComponentError("offset minute", minutes, tok.Span, p.input)
	}
	offset := hours*60 + minutes
	if sign == OpSub {
		offset = -offset
	}
	return offset, nil
}

// relativeToNow resolves a date alias against the clock.
func (p *parser) relativeToNow(days int64) (Moment, error) {
	t := p.calendar.Now()
	if days != 0 {
		var err error
		if t, err = p.calendar.AddFixed(t, UnitDay, days); err != nil {
			return Moment{}, err
		}
	}
	return MomentFromTime(t), nil
}

// iterator = date_expr iter_spec until_spec?
func (p *parser) parseIteratorTail(start *Expr) (*IteratorExpr, error) {
	it := &IteratorExpr{Start: start}

	// iter_spec = alias | "every"? number unit
	tok := p.peek()
	switch {
	case tok != nil && tok.Kind == TokenAliasWord:
		p.advance()
		it.Step = NewAmount(1, tok.UnitVal)
		it.StepAlias = true
	case p.peekKeyword(KeywordEvery) || (tok != nil && tok.Kind == TokenNumber):
		if p.peekKeyword(KeywordEvery) {
			p.advance()
		}
		num, err := p.consume("step count", TokenNumber)
		if err != nil {
			return nil, err
		}
		unit, err := p.consume("unit after step count", TokenUnitWord)
		if err != nil {
			return nil, err
		}
		it.Step = NewAmount(num.NumberVal, unit.UnitVal)
	default:
		return nil, p.unexpected("iteration step (secondly ... yearly, or <number><unit>)")
	}

	// until_spec = "until" exact_date | number "times"
	switch {
	case p.peekKeyword(KeywordUntil):
		p.advance()
		date, err := p.parseExactDate()
		if err != nil {
			return nil, err
		}
		until := NewUntilDate(date)
		it.Until = &until
	case p.peekKind() == TokenNumber:
		num := p.advance()
		if !p.peekKeyword(KeywordTimes) {
			return nil, p.unexpected("'times' after repetition count")
		}
		p.advance()
		until := NewUntilTimes(num.NumberVal)
		it.Until = &until
	}

	return it, nil
}
