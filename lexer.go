package tempo

import (
	"fmt"
	"strconv"
)

// TokenKind represents the type of token.
type TokenKind int

const (
	TokenNumber TokenKind = iota
	TokenOperator
	TokenUnitWord
	TokenAliasWord
	TokenKeyword
	TokenDatePart
	TokenDateSeparator
	TokenOffsetSign
)

func (k TokenKind) String() string {
	names := map[TokenKind]string{
		TokenNumber:        "number",
		TokenOperator:      "operator",
		TokenUnitWord:      "unit",
		TokenAliasWord:     "alias",
		TokenKeyword:       "keyword",
		TokenDatePart:      "date part",
		TokenDateSeparator: "date separator",
		TokenOffsetSign:    "offset sign",
	}
	return names[k]
}

// Keyword identifies a reserved word.
type Keyword int

const (
	KeywordToday Keyword = iota
	KeywordYesterday
	KeywordTomorrow
	KeywordUntil
	KeywordTimes
	KeywordEvery
)

// Token represents a lexed token.
type Token struct {
	Kind TokenKind
	Span Span
	Text string

	// Value fields (only one is set based on Kind)
	NumberVal   int64    // Number, DatePart
	OperatorVal Operator // Operator, OffsetSign
	UnitVal     Unit     // UnitWord, AliasWord
	KeywordVal  Keyword
}

// lexer is the internal lexer state.
type lexer struct {
	input string
	pos   int
}

// Tokenize tokenizes the input string into a list of tokens.
func Tokenize(input string) ([]Token, error) {
	l := &lexer{input: input}
	return l.tokenize()
}

func (l *lexer) tokenize() ([]Token, error) {
	var tokens []Token
	for {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			break
		}

		start := l.pos
		ch := l.input[l.pos]

		if ch == '+' || ch == '-' {
			l.pos++
			tokens = append(tokens, Token{
				Kind:        TokenOperator,
				Span:        Span{start, l.pos},
				Text:        string(ch),
				OperatorVal: operatorOf(ch),
			})
			continue
		}

		if isDigit(ch) {
			if l.atDateLiteral() {
				dateTokens, err := l.lexDate()
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, dateTokens...)
				continue
			}
			tok, err := l.lexNumber()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			continue
		}

		if isAlpha(ch) {
			tok, err := l.lexWord()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			continue
		}

		return nil, LexError(CodeUnknownToken,
			fmt.Sprintf("unknown token '%c' at position %d", ch, start),
			Span{start, start + 1}, l.input)
	}

	return tokens, nil
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.input) && isWhitespace(l.input[l.pos]) {
		l.pos++
	}
}

// digitsAt returns the length of the digit run starting at i.
func (l *lexer) digitsAt(i int) int {
	n := 0
	for i+n < len(l.input) && isDigit(l.input[i+n]) {
		n++
	}
	return n
}

// partAt reports whether a date part of exactly width digits starts at i and
// is not immediately continued by another digit or a letter. A trailing 'T'
// is accepted when allowT is set.
func (l *lexer) partAt(i, width int, allowT bool) bool {
	if l.digitsAt(i) != width {
		return false
	}
	end := i + width
	if end < len(l.input) && isAlpha(l.input[end]) {
		return allowT && l.input[end] == 'T'
	}
	return true
}

// sepAt reports whether the separator sep sits at i and is followed by a date
// part of the given width.
func (l *lexer) sepAt(i int, sep byte, width int, allowT bool) bool {
	return i < len(l.input) && l.input[i] == sep && l.partAt(i+1, width, allowT)
}

// atDateLiteral reports whether the input at pos starts a YYYY-MM date.
// A bare four-digit run is lexed as a number.
func (l *lexer) atDateLiteral() bool {
	return l.digitsAt(l.pos) == 4 && l.sepAt(l.pos+4, '-', 2, false)
}

// lexDate lexes YYYY-MM[-DD[THH[:MM[:SS[(+|-)HHMM]]]]] into date tokens.
func (l *lexer) lexDate() ([]Token, error) {
	var tokens []Token

	part := func(width int) error {
		start := l.pos
		l.pos += width
		tok, err := l.number(start, TokenDatePart)
		if err != nil {
			return err
		}
		tokens = append(tokens, tok)
		return nil
	}
	sep := func() {
		tokens = append(tokens, Token{
			Kind: TokenDateSeparator,
			Span: Span{l.pos, l.pos + 1},
			Text: string(l.input[l.pos]),
		})
		l.pos++
	}

	if err := part(4); err != nil {
		return nil, err
	}
	sep()
	if err := part(2); err != nil {
		return nil, err
	}
	if !l.sepAt(l.pos, '-', 2, true) {
		return tokens, nil
	}
	sep()
	if err := part(2); err != nil {
		return nil, err
	}
	if !l.sepAt(l.pos, 'T', 2, false) {
		return tokens, nil
	}
	sep()
	if err := part(2); err != nil {
		return nil, err
	}
	if !l.sepAt(l.pos, ':', 2, false) {
		return tokens, nil
	}
	sep()
	if err := part(2); err != nil {
		return nil, err
	}
	if !l.sepAt(l.pos, ':', 2, false) {
		return tokens, nil
	}
	sep()
	if err := part(2); err != nil {
		return nil, err
	}

	if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') && l.partAt(l.pos+1, 4, false) {
		ch := l.input[l.pos]
		tokens = append(tokens, Token{
			Kind:        TokenOffsetSign,
			Span:        Span{l.pos, l.pos + 1},
			Text:        string(ch),
			OperatorVal: operatorOf(ch),
		})
		l.pos++
		if err := part(4); err != nil {
			return nil, err
		}
	}

	return tokens, nil
}

func (l *lexer) lexNumber() (Token, error) {
	start := l.pos
	l.pos += l.digitsAt(l.pos)
	return l.number(start, TokenNumber)
}

func (l *lexer) number(start int, kind TokenKind) (Token, error) {
	digits := l.input[start:l.pos]
	span := Span{start, l.pos}
	num, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Token{}, LexError(CodeMalformedNumber,
			fmt.Sprintf("malformed number '%s' at position %d", digits, start), span, l.input)
	}
	return Token{Kind: kind, Span: span, Text: digits, NumberVal: num}, nil
}

func (l *lexer) lexWord() (Token, error) {
	start := l.pos
	for l.pos < len(l.input) && isAlpha(l.input[l.pos]) {
		l.pos++
	}
	word := l.input[start:l.pos]
	span := Span{start, l.pos}

	tok, ok := keywordMap[word]
	if !ok {
		return Token{}, LexError(CodeUnknownToken,
			fmt.Sprintf("unknown token '%s' at position %d", word, start), span, l.input)
	}

	tok.Span = span
	tok.Text = word
	return tok, nil
}

// keywordMap maps the case-sensitive vocabulary to tokens.
var keywordMap = map[string]Token{
	// Keywords
	"today":     {Kind: TokenKeyword, KeywordVal: KeywordToday},
	"yesterday": {Kind: TokenKeyword, KeywordVal: KeywordYesterday},
	"tomorrow":  {Kind: TokenKeyword, KeywordVal: KeywordTomorrow},
	"until":     {Kind: TokenKeyword, KeywordVal: KeywordUntil},
	"times":     {Kind: TokenKeyword, KeywordVal: KeywordTimes},
	"every":     {Kind: TokenKeyword, KeywordVal: KeywordEvery},
	// Units
	"seconds": {Kind: TokenUnitWord, UnitVal: UnitSecond},
	"second":  {Kind: TokenUnitWord, UnitVal: UnitSecond},
	"secs":    {Kind: TokenUnitWord, UnitVal: UnitSecond},
	"sec":     {Kind: TokenUnitWord, UnitVal: UnitSecond},
	"s":       {Kind: TokenUnitWord, UnitVal: UnitSecond},
	"minutes": {Kind: TokenUnitWord, UnitVal: UnitMinute},
	"minute":  {Kind: TokenUnitWord, UnitVal: UnitMinute},
	"mins":    {Kind: TokenUnitWord, UnitVal: UnitMinute},
	"min":     {Kind: TokenUnitWord, UnitVal: UnitMinute},
	"hours":   {Kind: TokenUnitWord, UnitVal: UnitHour},
	"hour":    {Kind: TokenUnitWord, UnitVal: UnitHour},
	"hrs":     {Kind: TokenUnitWord, UnitVal: UnitHour},
	"hr":      {Kind: TokenUnitWord, UnitVal: UnitHour},
	"days":    {Kind: TokenUnitWord, UnitVal: UnitDay},
	"day":     {Kind: TokenUnitWord, UnitVal: UnitDay},
	"d":       {Kind: TokenUnitWord, UnitVal: UnitDay},
	"weeks":   {Kind: TokenUnitWord, UnitVal: UnitWeek},
	"week":    {Kind: TokenUnitWord, UnitVal: UnitWeek},
	"w":       {Kind: TokenUnitWord, UnitVal: UnitWeek},
	"months":  {Kind: TokenUnitWord, UnitVal: UnitMonth},
	"month":   {Kind: TokenUnitWord, UnitVal: UnitMonth},
	"years":   {Kind: TokenUnitWord, UnitVal: UnitYear},
	"year":    {Kind: TokenUnitWord, UnitVal: UnitYear},
	"yrs":     {Kind: TokenUnitWord, UnitVal: UnitYear},
	// Aliases
	"secondly": {Kind: TokenAliasWord, UnitVal: UnitSecond},
	"minutely": {Kind: TokenAliasWord, UnitVal: UnitMinute},
	"hourly":   {Kind: TokenAliasWord, UnitVal: UnitHour},
	"daily":    {Kind: TokenAliasWord, UnitVal: UnitDay},
	"weekly":   {Kind: TokenAliasWord, UnitVal: UnitWeek},
	"monthly":  {Kind: TokenAliasWord, UnitVal: UnitMonth},
	"yearly":   {Kind: TokenAliasWord, UnitVal: UnitYear},
}

// Helper functions

func operatorOf(ch byte) Operator {
	if ch == '-' {
		return OpSub
	}
	return OpAdd
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
