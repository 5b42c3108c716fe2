package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedExpression is returned when the token stream does not form
	// a complete expression: unbalanced parentheses, an operator without
	// operands, a stray ")" or trailing input.
	ErrMalformedExpression = errors.New("malformed expression")

	// ErrUnknownOperator is returned for a character that is not a digit,
	// an operator, a parenthesis or whitespace.
	ErrUnknownOperator = errors.New("unknown operator")
)

// SyntaxError reports a front-end failure at a byte offset of the input.
type SyntaxError struct {
	Pos int    // byte offset, or the input length when input ran out
	Msg string // detail
	Err error  // ErrMalformedExpression or ErrUnknownOperator
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at offset %d: %s", e.Err, e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func syntaxErrorf(err error, pos int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...), Err: err}
}
