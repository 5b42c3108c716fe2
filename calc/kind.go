package calc

import (
	"errors"
	"fmt"

	"github.com/chazu/stackcalc/compiler"
	"github.com/chazu/stackcalc/pkg/bytecode"
)

// Kind names an error category as shown to users.
type Kind string

const (
	KindNone                Kind = ""
	KindMalformedExpression Kind = "MalformedExpression"
	KindUnknownOperator     Kind = "UnknownOperator"
	KindDivisionByZero      Kind = "DivisionByZero"
	KindInvalidOperand      Kind = "InvalidOperand"
	KindStackUnderflow      Kind = "StackUnderflow"
	KindInternal            Kind = "Internal"
)

// Kinds lists every non-empty kind.
var Kinds = []Kind{
	KindMalformedExpression,
	KindUnknownOperator,
	KindDivisionByZero,
	KindInvalidOperand,
	KindStackUnderflow,
	KindInternal,
}

// ErrorKind maps err onto its category. Errors from outside the pipeline
// are KindInternal; a nil error is KindNone.
func ErrorKind(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, compiler.ErrMalformedExpression):
		return KindMalformedExpression
	case errors.Is(err, compiler.ErrUnknownOperator):
		return KindUnknownOperator
	case errors.Is(err, bytecode.ErrDivisionByZero):
		return KindDivisionByZero
	case errors.Is(err, bytecode.ErrInvalidOperand):
		return KindInvalidOperand
	case errors.Is(err, bytecode.ErrStackUnderflow):
		return KindStackUnderflow
	}
	return KindInternal
}

// ParseKind is the inverse of Kind.String for the non-empty kinds.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("unknown error kind %q", s)
}

func (k Kind) String() string {
	return string(k)
}

// Describe formats err for display: "<Kind>: <detail>".
func Describe(err error) string {
	return fmt.Sprintf("%s: %v", ErrorKind(err), err)
}

// Offset returns the input offset an error refers to, if it carries one.
func Offset(err error) (int, bool) {
	var se *compiler.SyntaxError
	if errors.As(err, &se) {
		return se.Pos, true
	}
	return 0, false
}
