package bytecode

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidOperand is returned when a record's operand cannot be parsed as
// an integer, or when an arithmetic instruction has an arity below one.
var ErrInvalidOperand = errors.New("invalid operand")

// mnemonicOpcodes maps three-letter record prefixes to arithmetic opcodes.
// Any other prefix assembles as OpPush.
var mnemonicOpcodes = map[string]Opcode{
	"ADD": OpAdd,
	"SUB": OpSub,
	"MUL": OpMul,
	"DIV": OpDiv,
	"MOD": OpMod,
}

// Assemble turns textual records into a program.
//
// The first three characters of a record select the opcode. The operand is
// the first run of digits anywhere in the record; mnemonics contain no
// digits, so for "ADD 12" that is 12. Opcode/operand consistency is left to
// the VM.
func Assemble(records []string) (*Program, error) {
	p := NewProgram()
	for i, rec := range records {
		in, err := AssembleRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		p.Instructions = append(p.Instructions, in)
	}
	return p, nil
}

// AssembleRecord assembles a single record.
func AssembleRecord(rec string) (Instruction, error) {
	op := OpPush
	if len(rec) >= 3 {
		if arith, ok := mnemonicOpcodes[rec[:3]]; ok {
			op = arith
		}
	}

	digits := firstDigitRun(rec)
	if digits == "" {
		return Instruction{}, fmt.Errorf("%w: no digits in %q", ErrInvalidOperand, rec)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return Instruction{}, fmt.Errorf("%w: %q out of range in %q", ErrInvalidOperand, digits, rec)
	}

	return Instruction{Op: op, Operand: n}, nil
}

// firstDigitRun returns the first maximal run of ASCII digits in s.
func firstDigitRun(s string) string {
	start := -1
	for i := 0; i < len(s); i++ {
		isDigit := s[i] >= '0' && s[i] <= '9'
		switch {
		case isDigit && start < 0:
			start = i
		case !isDigit && start >= 0:
			return s[start:i]
		}
	}
	if start < 0 {
		return ""
	}
	return s[start:]
}
