package bytecode

import "fmt"

// Opcode represents a bytecode instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Stack manipulation (0x00-0x0F)
	// ========================================================================

	// OpPop discards the top of stack. The code generator never emits it
	// and the assembler never produces it; it exists for programs built
	// directly.
	OpPop Opcode = 0x01

	// ========================================================================
	// Constants (0x10-0x1F)
	// ========================================================================

	OpPush Opcode = 0x10 // Push operand value

	// ========================================================================
	// Arithmetic (0x50-0x5F). Operand is the arity: pop that many values,
	// fold left to right in push order, push the result.
	// ========================================================================

	OpAdd Opcode = 0x50
	OpSub Opcode = 0x51
	OpMul Opcode = 0x52
	OpDiv Opcode = 0x53 // Truncating division
	OpMod Opcode = 0x54 // Remainder with the sign of the dividend
)

// OpcodeInfo provides metadata about each opcode for debugging and validation.
type OpcodeInfo struct {
	Name      string // Mnemonic used in the textual form
	StackPop  int    // How many values popped from stack (-1 = operand)
	StackPush int    // How many values pushed to stack
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpPop:  {"POP", 1, 0},
	OpPush: {"PUSH", 0, 1},

	OpAdd: {"ADD", -1, 1},
	OpSub: {"SUB", -1, 1},
	OpMul: {"MUL", -1, 1},
	OpDiv: {"DIV", -1, 1},
	OpMod: {"MOD", -1, 1},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the mnemonic of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Valid returns true if op is a defined opcode.
func (op Opcode) Valid() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// IsArithmetic returns true if this opcode folds operands.
func (op Opcode) IsArithmetic() bool {
	return op >= OpAdd && op <= OpMod
}

// AllOpcodes returns a slice of all defined opcodes.
// Useful for testing that all opcodes have metadata.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
