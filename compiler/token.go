package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the prefix expression lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	TokenOperator TokenType = iota // + - * / %
	TokenNumber                    // 0-9, one digit per token
	TokenOpen                      // (
	TokenClose                     // )
)

var tokenNames = map[TokenType]string{
	TokenOperator: "OPERATOR",
	TokenNumber:   "NUMBER",
	TokenOpen:     "(",
	TokenClose:    ")",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
//
// For TokenNumber, Value is the digit value. For TokenOperator, Value is the
// operator byte. Open and Close carry no value.
type Token struct {
	Type  TokenType
	Value int
	Pos   int // byte offset in the input line
}

func (t Token) String() string {
	switch t.Type {
	case TokenNumber:
		return fmt.Sprintf("NUMBER(%d)", t.Value)
	case TokenOperator:
		return fmt.Sprintf("OPERATOR(%c)", rune(t.Value))
	}
	return t.Type.String()
}

// Op returns the operator byte of an operator token.
func (t Token) Op() byte {
	return byte(t.Value)
}

// IsOperator returns true if c is one of the arithmetic operator characters.
func IsOperator(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '%':
		return true
	}
	return false
}
