package bytecode

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// ProgramVersion is the current bytecode format version.
// Increment when making incompatible changes to the format.
const ProgramVersion uint16 = 1

// Magic bytes for bytecode files: "SCBC" (StackCalc ByteCode)
var ProgramMagic = []byte{'S', 'C', 'B', 'C'}

// Instruction is one assembled instruction.
//
// For OpPush, Operand is the value to push. For arithmetic opcodes it is the
// arity. OpPop ignores it.
type Instruction struct {
	Op      Opcode
	Operand int
}

// String renders the instruction in textual record form ("ADD 2").
func (in Instruction) String() string {
	if in.Op == OpPop {
		return "POP"
	}
	return in.Op.String() + " " + strconv.Itoa(in.Operand)
}

// Program is an assembled instruction list. Index is program order.
type Program struct {
	Version      uint16
	Instructions []Instruction
}

// NewProgram creates a new empty program with the current version.
func NewProgram() *Program {
	return &Program{
		Version:      ProgramVersion,
		Instructions: make([]Instruction, 0, 16),
	}
}

// Emit appends an instruction and returns its index.
func (p *Program) Emit(op Opcode, operand int) int {
	idx := len(p.Instructions)
	p.Instructions = append(p.Instructions, Instruction{Op: op, Operand: operand})
	return idx
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// Records renders the program back to textual records. Assembling the
// result yields an identical program, except that OpPop has no textual form
// the assembler recognizes.
func (p *Program) Records() []string {
	records := make([]string, len(p.Instructions))
	for i, in := range p.Instructions {
		records[i] = in.String()
	}
	return records
}

// MaxStackDepth returns the deepest stack the program reaches, assuming
// every instruction succeeds.
func (p *Program) MaxStackDepth() int {
	depth, max := 0, 0
	for _, in := range p.Instructions {
		switch {
		case in.Op == OpPush:
			depth++
		case in.Op == OpPop:
			depth--
		case in.Op.IsArithmetic():
			depth -= in.Operand - 1
		}
		if depth > max {
			max = depth
		}
	}
	return max
}

// instructionSize is the encoded size of one instruction: opcode + int64.
const instructionSize = 9

// Serialize encodes the program to bytes for storage/transport.
// Format:
//
//	[magic:4] [version:2] [count:4]
//	{[opcode:1] [operand:8, signed big-endian]}*
func (p *Program) Serialize() ([]byte, error) {
	buf := make([]byte, 0, 10+len(p.Instructions)*instructionSize)

	buf = append(buf, ProgramMagic...)
	buf = binary.BigEndian.AppendUint16(buf, p.Version)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(p.Instructions)))

	for i, in := range p.Instructions {
		if !in.Op.Valid() {
			return nil, fmt.Errorf("instruction %d: unknown opcode 0x%02X", i, byte(in.Op))
		}
		buf = append(buf, byte(in.Op))
		buf = binary.BigEndian.AppendUint64(buf, uint64(int64(in.Operand)))
	}

	return buf, nil
}

// Deserialize decodes a program from bytes.
func Deserialize(data []byte) (*Program, error) {
	if len(data) < 10 {
		return nil, fmt.Errorf("bytecode too short: need at least 10 bytes, got %d", len(data))
	}

	// Check magic
	if string(data[0:4]) != string(ProgramMagic) {
		return nil, fmt.Errorf("invalid bytecode magic: expected %q, got %q", ProgramMagic, data[0:4])
	}

	p := &Program{Version: binary.BigEndian.Uint16(data[4:6])}
	if p.Version > ProgramVersion {
		return nil, fmt.Errorf("bytecode version %d is newer than supported version %d", p.Version, ProgramVersion)
	}

	count := binary.BigEndian.Uint32(data[6:10])
	pos := 10
	if uint64(len(data)-pos) < uint64(count)*instructionSize {
		return nil, fmt.Errorf("unexpected end of bytecode: %d instructions need %d bytes, have %d",
			count, uint64(count)*instructionSize, len(data)-pos)
	}

	p.Instructions = make([]Instruction, count)
	for i := range p.Instructions {
		op := Opcode(data[pos])
		if !op.Valid() {
			return nil, fmt.Errorf("instruction %d: unknown opcode 0x%02X at pos %d", i, data[pos], pos)
		}
		p.Instructions[i] = Instruction{
			Op:      op,
			Operand: int(int64(binary.BigEndian.Uint64(data[pos+1:]))),
		}
		pos += instructionSize
	}

	if pos != len(data) {
		return nil, fmt.Errorf("trailing %d bytes after last instruction", len(data)-pos)
	}

	return p, nil
}
