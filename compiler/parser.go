package compiler

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for prefix expressions
// ---------------------------------------------------------------------------

// MaxDepth bounds operator nesting so hostile input cannot exhaust the stack.
const MaxDepth = 256

// Parser builds an expression tree from a token slice. The cursor is shared
// by every recursive call and advances as tokens are consumed.
//
// Grammar, with the opening parenthesis optional:
//
//	expr ::= digit | ['('] op expr+ ')'
//
// An Open token is consumed only when an operator follows it. Every
// operation consumes exactly one Close.
type Parser struct {
	tokens []Token
	pos    int // cursor into tokens
	depth  int // current operator nesting
	end    int // byte offset reported when input runs out
}

// NewParser creates a parser over tokens. inputLen is the length of the
// source line, used as the error offset for unexpected end of input.
func NewParser(tokens []Token, inputLen int) *Parser {
	return &Parser{tokens: tokens, end: inputLen}
}

// Parse parses tokens as one complete expression.
func Parse(tokens []Token, inputLen int) (Expr, error) {
	p := NewParser(tokens, inputLen)
	root, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		tok := p.tokens[p.pos]
		return nil, syntaxErrorf(ErrMalformedExpression, tok.Pos, "unexpected trailing %s", tok.Type)
	}
	return root, nil
}

// ParseString lexes and parses one line.
func ParseString(input string) (Expr, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}
	return Parse(tokens, len(input))
}

// Pos returns the cursor position.
func (p *Parser) Pos() int {
	return p.pos
}

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

// ParseExpression parses one expression starting at the cursor and leaves
// the cursor after it.
func (p *Parser) ParseExpression() (Expr, error) {
	if p.atEnd() {
		return nil, syntaxErrorf(ErrMalformedExpression, p.end, "unexpected end of input")
	}

	tok := p.tokens[p.pos]
	switch tok.Type {
	case TokenNumber:
		p.pos++
		return &NumberLit{SpanVal: Span{Start: tok.Pos, End: tok.Pos + 1}, Value: tok.Value}, nil

	case TokenOperator:
		return p.parseOperation(tok.Pos)

	case TokenOpen:
		p.pos++
		if p.atEnd() {
			return nil, syntaxErrorf(ErrMalformedExpression, p.end, "unexpected end of input after \"(\"")
		}
		next := p.tokens[p.pos]
		if next.Type != TokenOperator {
			return nil, syntaxErrorf(ErrMalformedExpression, next.Pos, "expected operator after \"(\", got %s", next.Type)
		}
		return p.parseOperation(tok.Pos)
	}

	return nil, syntaxErrorf(ErrMalformedExpression, tok.Pos, "unexpected \")\"")
}

// parseOperation parses an operator, its operands and the closing paren.
// start is the offset of the opening paren, or of the operator itself when
// the paren was omitted.
func (p *Parser) parseOperation(start int) (Expr, error) {
	tok := p.tokens[p.pos]
	p.pos++

	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxDepth {
		return nil, syntaxErrorf(ErrMalformedExpression, tok.Pos, "nesting deeper than %d", MaxDepth)
	}

	op := &Operation{Op: tok.Op(), SpanVal: Span{Start: start}}
	for {
		if p.atEnd() {
			return nil, syntaxErrorf(ErrMalformedExpression, p.end, "missing \")\" for %q at offset %d", tok.Op(), tok.Pos)
		}
		if p.tokens[p.pos].Type == TokenClose {
			break
		}
		operand, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		op.Operands = append(op.Operands, operand)
	}

	closeTok := p.tokens[p.pos]
	if len(op.Operands) == 0 {
		return nil, syntaxErrorf(ErrMalformedExpression, closeTok.Pos, "operator %q has no operands", tok.Op())
	}
	p.pos++
	op.SpanVal.End = closeTok.Pos + 1

	return op, nil
}
