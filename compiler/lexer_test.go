package compiler

import (
	"errors"
	"testing"
)

func TestLexerBasicTokens(t *testing.T) {
	input := `( + - * / % 7 )`
	expected := []struct {
		typ TokenType
		val int
		pos int
	}{
		{TokenOpen, 0, 0},
		{TokenOperator, '+', 2},
		{TokenOperator, '-', 4},
		{TokenOperator, '*', 6},
		{TokenOperator, '/', 8},
		{TokenOperator, '%', 10},
		{TokenNumber, 7, 12},
		{TokenClose, 0, 14},
	}

	tokens, err := Lex(input)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	if len(tokens) != len(expected) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(expected))
	}
	for i, exp := range expected {
		tok := tokens[i]
		if tok.Type != exp.typ {
			t.Errorf("token[%d] type = %v, want %v", i, tok.Type, exp.typ)
		}
		if tok.Value != exp.val {
			t.Errorf("token[%d] value = %d, want %d", i, tok.Value, exp.val)
		}
		if tok.Pos != exp.pos {
			t.Errorf("token[%d] pos = %d, want %d", i, tok.Pos, exp.pos)
		}
	}
}

func TestLexerDigits(t *testing.T) {
	for d := 0; d <= 9; d++ {
		input := string(rune('0' + d))
		tokens, err := Lex(input)
		if err != nil {
			t.Fatalf("Lex(%q) failed: %v", input, err)
		}
		if len(tokens) != 1 || tokens[0].Type != TokenNumber || tokens[0].Value != d {
			t.Errorf("Lex(%q) = %v, want NUMBER(%d)", input, tokens, d)
		}
	}
}

func TestLexerMultiDigitIsTwoTokens(t *testing.T) {
	tokens, err := Lex("12")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("got %d tokens, want 2", len(tokens))
	}
	if tokens[0].Value != 1 || tokens[1].Value != 2 {
		t.Errorf("tokens = %v, want NUMBER(1) NUMBER(2)", tokens)
	}
}

func TestLexerSkipsWhitespace(t *testing.T) {
	tokens, err := Lex("  (+\t1   2 )  ")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	if len(tokens) != 5 {
		t.Errorf("got %d tokens, want 5: %v", len(tokens), tokens)
	}
}

func TestLexerEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\t"} {
		tokens, err := Lex(input)
		if err != nil {
			t.Errorf("Lex(%q) failed: %v", input, err)
		}
		if len(tokens) != 0 {
			t.Errorf("Lex(%q) = %v, want no tokens", input, tokens)
		}
	}
}

func TestLexerUnknownCharacter(t *testing.T) {
	tests := []struct {
		input string
		pos   int
	}{
		{"(^ 1 2)", 1},
		{"(+ 1 x)", 5},
		{"[", 0},
		{"(+ 1 2]", 6},
	}

	for _, tc := range tests {
		_, err := Lex(tc.input)
		if !errors.Is(err, ErrUnknownOperator) {
			t.Errorf("Lex(%q) error = %v, want ErrUnknownOperator", tc.input, err)
			continue
		}
		var synErr *SyntaxError
		if !errors.As(err, &synErr) {
			t.Errorf("Lex(%q) error is %T, want *SyntaxError", tc.input, err)
			continue
		}
		if synErr.Pos != tc.pos {
			t.Errorf("Lex(%q) error pos = %d, want %d", tc.input, synErr.Pos, tc.pos)
		}
	}
}

func TestLexerNextStopsAtEnd(t *testing.T) {
	l := NewLexer("1")
	if _, ok, err := l.Next(); !ok || err != nil {
		t.Fatalf("first Next() = ok %v, err %v", ok, err)
	}
	if _, ok, err := l.Next(); ok || err != nil {
		t.Errorf("second Next() = ok %v, err %v, want end of input", ok, err)
	}
}

func TestTokenString(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{Token{Type: TokenNumber, Value: 3}, "NUMBER(3)"},
		{Token{Type: TokenOperator, Value: '*'}, "OPERATOR(*)"},
		{Token{Type: TokenOpen}, "("},
		{Token{Type: TokenClose}, ")"},
	}
	for _, tc := range tests {
		if got := tc.tok.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
