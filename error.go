package tempo

import (
	"fmt"
	"strings"
)

// ErrorKind represents the stage at which an error occurred.
type ErrorKind string

const (
	ErrorKindLex      ErrorKind = "lex"
	ErrorKindParse    ErrorKind = "parse"
	ErrorKindEval     ErrorKind = "eval"
	ErrorKindIterator ErrorKind = "iterator"
)

// ErrorCode classifies an error within its kind.
type ErrorCode string

const (
	CodeUnknownToken         ErrorCode = "unknown_token"
	CodeMalformedNumber      ErrorCode = "malformed_number"
	CodeUnexpectedToken      ErrorCode = "unexpected_token"
	CodeUnexpectedEOF        ErrorCode = "unexpected_eof"
	CodeInvalidDateComponent ErrorCode = "invalid_date_component"
	CodeIncompatibleOperands ErrorCode = "incompatible_operands"
	CodeOutOfRange           ErrorCode = "out_of_range"
	CodeInvalidDate          ErrorCode = "invalid_date"
	CodeZeroStep             ErrorCode = "zero_step"
	CodeNegativeCount        ErrorCode = "negative_count"
	CodeNotAMoment           ErrorCode = "not_a_moment"
	CodeNotADuration         ErrorCode = "not_a_duration"
)

// Sentinels for errors.Is. Matching compares Kind and Code only.
var (
	ErrUnknownToken         = &Error{Kind: ErrorKindLex, Code: CodeUnknownToken, Message: "unknown token"}
	ErrMalformedNumber      = &Error{Kind: ErrorKindLex, Code: CodeMalformedNumber, Message: "malformed number"}
	ErrUnexpectedToken      = &Error{Kind: ErrorKindParse, Code: CodeUnexpectedToken, Message: "unexpected token"}
	ErrUnexpectedEOF        = &Error{Kind: ErrorKindParse, Code: CodeUnexpectedEOF, Message: "unexpected end of input"}
	ErrInvalidDateComponent = &Error{Kind: ErrorKindParse, Code: CodeInvalidDateComponent, Message: "invalid date component"}
	ErrIncompatibleOperands = &Error{Kind: ErrorKindEval, Code: CodeIncompatibleOperands, Message: "incompatible operands"}
	ErrOutOfRange           = &Error{Kind: ErrorKindEval, Code: CodeOutOfRange, Message: "out of representable range"}
	ErrInvalidDate          = &Error{Kind: ErrorKindEval, Code: CodeInvalidDate, Message: "invalid calendar date"}
	ErrZeroStep             = &Error{Kind: ErrorKindIterator, Code: CodeZeroStep, Message: "iterator step is zero"}
	ErrNegativeCount        = &Error{Kind: ErrorKindIterator, Code: CodeNegativeCount, Message: "iterator count is negative"}
	ErrNotAMoment           = &Error{Kind: ErrorKindIterator, Code: CodeNotAMoment, Message: "iterator start is not a moment"}
	ErrNotADuration         = &Error{Kind: ErrorKindIterator, Code: CodeNotADuration, Message: "iterator step is not a duration"}
)

// Span represents a range of byte positions in the input.
type Span struct {
	Start int
	End   int
}

// Error is the single error type returned by the lexer, parser, evaluator
// and iterator engine.
type Error struct {
	Kind    ErrorKind
	Code    ErrorCode
	Message string
	Span    *Span
	Input   string

	// Field and Value carry the offending component for
	// CodeInvalidDateComponent and CodeInvalidDate.
	Field string
	Value string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error of the same kind and code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// LexError creates a new lexer error.
func LexError(code ErrorCode, message string, span Span, input string) *Error {
	return &Error{
		Kind:    ErrorKindLex,
		Code:    code,
		Message: message,
		Span:    &span,
		Input:   input,
	}
}

// ParseError creates a new parser error.
func ParseError(code ErrorCode, message string, span Span, input string) *Error {
	return &Error{
		Kind:    ErrorKindParse,
		Code:    code,
		Message: message,
		Span:    &span,
		Input:   input,
	}
}

// InvalidComponentError creates a parser error for a date or time field
// whose value is outside its structural range.
func InvalidComponentError(field string, value int, span Span, input string) *Error {
	return &Error{
		Kind:    ErrorKindParse,
		Code:    CodeInvalidDateComponent,
		Message: fmt.Sprintf("invalid %s %d", field, value),
		Span:    &span,
		Input:   input,
		Field:   field,
		Value:   fmt.Sprint(value),
	}
}

// EvalError creates a new evaluation error.
func EvalError(code ErrorCode, message string) *Error {
	return &Error{
		Kind:    ErrorKindEval,
		Code:    code,
		Message: message,
	}
}

// IteratorConfigError creates a new iterator configuration error.
func IteratorConfigError(code ErrorCode, message string) *Error {
	return &Error{
		Kind:    ErrorKindIterator,
		Code:    code,
		Message: message,
	}
}

// DisplayRich formats a rich error message with underline.
func (e *Error) DisplayRich() string {
	if (e.Kind == ErrorKindLex || e.Kind == ErrorKindParse) && e.Span != nil && e.Input != "" {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("error: %s\n", e.Message))
		sb.WriteString(fmt.Sprintf("  %s\n", e.Input))

		padding := strings.Repeat(" ", e.Span.Start+2)
		underlineLen := e.Span.End - e.Span.Start
		if underlineLen < 1 {
			underlineLen = 1
		}
		sb.WriteString(padding)
		sb.WriteString(strings.Repeat("^", underlineLen))
		return sb.String()
	}

	return fmt.Sprintf("error: %s", e.Message)
}
