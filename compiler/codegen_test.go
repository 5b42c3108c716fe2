package compiler

import (
	"math/rand"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"testing"
)

func TestGenerateNumber(t *testing.T) {
	got := Generate(&NumberLit{Value: 4})
	want := []string{"PUSH 4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate = %v, want %v", got, want)
	}
}

func TestGenerateMnemonics(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"(+ 1 2)", "ADD 2"},
		{"(- 1 2)", "SUB 2"},
		{"(* 1 2)", "MUL 2"},
		{"(/ 1 2)", "DIV 2"},
		{"(% 1 2)", "MOD 2"},
	}

	for _, tc := range tests {
		records, err := Compile(tc.input)
		if err != nil {
			t.Fatalf("Compile(%q) failed: %v", tc.input, err)
		}
		if last := records[len(records)-1]; last != tc.want {
			t.Errorf("Compile(%q) last record = %q, want %q", tc.input, last, tc.want)
		}
	}
}

func TestGeneratePostOrder(t *testing.T) {
	records, err := Compile("(+ 1 (* 2 3) 4)")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	want := []string{
		"PUSH 1",
		"PUSH 2",
		"PUSH 3",
		"MUL 2",
		"PUSH 4",
		"ADD 3",
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %v, want %v", records, want)
	}
}

func TestGenerateUnary(t *testing.T) {
	records, err := Compile("(- 5)")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	want := []string{"PUSH 5", "SUB 1"}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %v, want %v", records, want)
	}
}

func TestGenerateFreshAccumulator(t *testing.T) {
	first, err := Compile("(+ 1 2)")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	second, err := Compile("3")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(first) != 3 {
		t.Errorf("first program has %d records, want 3", len(first))
	}
	if !reflect.DeepEqual(second, []string{"PUSH 3"}) {
		t.Errorf("second program = %v, want [PUSH 3]", second)
	}
}

func TestGeneratorEmitCount(t *testing.T) {
	expr, err := ParseString("(* 2 (+ 1 1))")
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	g := NewGenerator()
	if n := g.Emit(expr); n != 5 {
		t.Errorf("Emit = %d, want 5", n)
	}
	if n := g.Emit(&NumberLit{Value: 9}); n != 1 {
		t.Errorf("second Emit = %d, want 1", n)
	}
	if len(g.Records()) != 6 {
		t.Errorf("Records() has %d entries, want 6", len(g.Records()))
	}
}

// randomTree builds a well-formed tree with up to depth levels.
func randomTree(r *rand.Rand, depth int) Expr {
	if depth == 0 || r.Intn(3) == 0 {
		return &NumberLit{Value: r.Intn(10)}
	}
	ops := []byte("+-*/%")
	op := &Operation{Op: ops[r.Intn(len(ops))]}
	for n := 1 + r.Intn(4); n > 0; n-- {
		op.Operands = append(op.Operands, randomTree(r, depth-1))
	}
	return op
}

func TestGenerateArityMatchesOperands(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		root := randomTree(r, 4)
		records := Generate(root)

		// Each operation's record carries its operand count; replaying the
		// records on a depth counter must leave exactly one value.
		var arities []int
		Walk(root, func(node Expr, _ *Operation) bool {
			if op, ok := node.(*Operation); ok {
				arities = append(arities, op.Arity())
			}
			return true
		})

		depth := 0
		var emitted []int
		for _, rec := range records {
			fields := strings.Fields(rec)
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				t.Fatalf("record %q: %v", rec, err)
			}
			if fields[0] == "PUSH" {
				depth++
				continue
			}
			emitted = append(emitted, n)
			depth -= n - 1
			if depth < 1 {
				t.Fatalf("tree %s: stack depth %d after %q", root, depth, rec)
			}
		}
		if depth != 1 {
			t.Errorf("tree %s: final depth = %d, want 1", root, depth)
		}
		sort.Ints(emitted)
		sort.Ints(arities)
		if !reflect.DeepEqual(emitted, arities) {
			t.Errorf("tree %s: encoded arities %v, want %v", root, emitted, arities)
		}
	}
}
