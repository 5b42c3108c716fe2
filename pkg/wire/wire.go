// Package wire defines the CBOR encodings StackCalc uses on the network and
// in the history store.
package wire

import (
	"fmt"

	"github.com/chazu/stackcalc/pkg/bytecode"
	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical mode so equal values encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Program is the wire form of a bytecode.Program.
type Program struct {
	Version      uint16        `cbor:"1,keyasint"`
	Instructions []Instruction `cbor:"2,keyasint"`
}

// Instruction is the wire form of a bytecode.Instruction.
type Instruction struct {
	Op      uint8 `cbor:"1,keyasint"`
	Operand int64 `cbor:"2,keyasint,omitempty"`
}

// FromProgram converts a bytecode program to its wire form.
func FromProgram(p *bytecode.Program) *Program {
	w := &Program{
		Version:      p.Version,
		Instructions: make([]Instruction, len(p.Instructions)),
	}
	for i, in := range p.Instructions {
		w.Instructions[i] = Instruction{Op: uint8(in.Op), Operand: int64(in.Operand)}
	}
	return w
}

// ToProgram converts the wire form back into a bytecode program, rejecting
// unknown opcodes and versions newer than this build understands.
func (w *Program) ToProgram() (*bytecode.Program, error) {
	if w.Version > bytecode.ProgramVersion {
		return nil, fmt.Errorf("wire: program version %d is newer than supported version %d",
			w.Version, bytecode.ProgramVersion)
	}
	p := &bytecode.Program{
		Version:      w.Version,
		Instructions: make([]bytecode.Instruction, len(w.Instructions)),
	}
	for i, in := range w.Instructions {
		op := bytecode.Opcode(in.Op)
		if !op.Valid() {
			return nil, fmt.Errorf("wire: instruction %d: unknown opcode 0x%02X", i, in.Op)
		}
		p.Instructions[i] = bytecode.Instruction{Op: op, Operand: int(in.Operand)}
	}
	return p, nil
}

// MarshalProgram serializes a program to CBOR bytes.
func MarshalProgram(p *bytecode.Program) ([]byte, error) {
	return cborEncMode.Marshal(FromProgram(p))
}

// UnmarshalProgram deserializes a program from CBOR bytes.
func UnmarshalProgram(data []byte) (*bytecode.Program, error) {
	var w Program
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("wire: unmarshal program: %w", err)
	}
	return w.ToProgram()
}
