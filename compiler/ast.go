package compiler

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// AST: Expression tree for prefix arithmetic
// ---------------------------------------------------------------------------

// Span represents a byte range in the input line.
type Span struct {
	Start int // offset of the first byte
	End   int // offset one past the last byte
}

// Expr is the interface implemented by all expression nodes.
//
// An Operation owns its operands. There is no child-to-parent pointer; use
// Walk when a visitor needs the enclosing operation.
type Expr interface {
	Span() Span
	String() string
	expr() // marker method
}

// NumberLit represents a single-digit literal.
type NumberLit struct {
	SpanVal Span
	Value   int
}

func (n *NumberLit) Span() Span     { return n.SpanVal }
func (n *NumberLit) String() string { return fmt.Sprintf("%d", n.Value) }
func (n *NumberLit) expr()          {}

// Operation represents an operator applied to one or more operands.
type Operation struct {
	SpanVal  Span
	Op       byte // one of + - * / %
	Operands []Expr
}

func (n *Operation) Span() Span { return n.SpanVal }
func (n *Operation) expr()      {}

// String renders the operation in canonical parenthesized prefix form.
func (n *Operation) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteByte(n.Op)
	for _, operand := range n.Operands {
		sb.WriteByte(' ')
		sb.WriteString(operand.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Arity returns the number of operands.
func (n *Operation) Arity() int {
	return len(n.Operands)
}

// Walk visits root and every node below it in pre-order. parent is nil for
// root. Returning false from fn skips the node's operands.
func Walk(root Expr, fn func(node Expr, parent *Operation) bool) {
	walk(root, nil, fn)
}

func walk(node Expr, parent *Operation, fn func(Expr, *Operation) bool) {
	if !fn(node, parent) {
		return
	}
	if op, ok := node.(*Operation); ok {
		for _, operand := range op.Operands {
			walk(operand, op, fn)
		}
	}
}
