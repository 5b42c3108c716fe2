package compiler

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for prefix arithmetic expressions
// ---------------------------------------------------------------------------

// Lexer tokenizes one line of input.
type Lexer struct {
	input string
	pos   int // current position in input
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Next returns the next token. ok is false once the input is exhausted.
//
// Numbers are single digits: "12" lexes as two Number tokens.
func (l *Lexer) Next() (tok Token, ok bool, err error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{}, false, nil
	}

	pos := l.pos
	ch := l.input[pos]
	l.pos++

	switch {
	case isDigit(ch):
		return Token{Type: TokenNumber, Value: int(ch - '0'), Pos: pos}, true, nil
	case IsOperator(ch):
		return Token{Type: TokenOperator, Value: int(ch), Pos: pos}, true, nil
	case ch == '(':
		return Token{Type: TokenOpen, Pos: pos}, true, nil
	case ch == ')':
		return Token{Type: TokenClose, Pos: pos}, true, nil
	}

	return Token{}, false, syntaxErrorf(ErrUnknownOperator, pos, "unexpected character %q", ch)
}

// skipWhitespace skips spaces and tabs.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
		l.pos++
	}
}

// Lex tokenizes the whole input.
func Lex(input string) ([]Token, error) {
	l := NewLexer(input)
	tokens := make([]Token, 0, len(input))
	for {
		tok, ok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
