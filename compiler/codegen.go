package compiler

import (
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Codegen: Compile expression trees to textual instruction records
// ---------------------------------------------------------------------------

// mnemonics maps operator characters to instruction mnemonics.
var mnemonics = map[byte]string{
	'+': "ADD",
	'-': "SUB",
	'*': "MUL",
	'/': "DIV",
	'%': "MOD",
}

// Mnemonic returns the instruction mnemonic for an operator character.
func Mnemonic(op byte) (string, bool) {
	m, ok := mnemonics[op]
	return m, ok
}

// Generator emits records for one expression tree. The output slice is
// owned by the generator; a new Generator starts empty.
type Generator struct {
	records []string
}

// NewGenerator creates an empty generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Records returns the records emitted so far.
func (g *Generator) Records() []string {
	return g.records
}

// Emit appends the records for node, operands before their operator.
// It returns the number of records appended.
func (g *Generator) Emit(node Expr) int {
	before := len(g.records)
	g.emit(node)
	return len(g.records) - before
}

func (g *Generator) emit(node Expr) {
	switch n := node.(type) {
	case *NumberLit:
		g.records = append(g.records, "PUSH "+strconv.Itoa(n.Value))
	case *Operation:
		args := 0
		for _, operand := range n.Operands {
			g.emit(operand)
			args++
		}
		mnemonic, ok := mnemonics[n.Op]
		if !ok {
			// The lexer only produces known operators; trees built by hand
			// can still carry anything.
			panic(fmt.Sprintf("codegen: no mnemonic for operator %q", n.Op))
		}
		g.records = append(g.records, mnemonic+" "+strconv.Itoa(args))
	default:
		panic(fmt.Sprintf("codegen: unknown node type %T", node))
	}
}

// Generate returns the records for root in post-order.
func Generate(root Expr) []string {
	g := NewGenerator()
	g.Emit(root)
	return g.Records()
}

// Compile lexes, parses and generates records for one line.
func Compile(input string) ([]string, error) {
	root, err := ParseString(input)
	if err != nil {
		return nil, err
	}
	return Generate(root), nil
}
