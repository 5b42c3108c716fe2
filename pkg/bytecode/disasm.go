package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable bytecode listing for the program.
func (p *Program) Disassemble() string {
	return p.DisassembleWithName("")
}

// DisassembleWithName returns a human-readable bytecode listing with a name header.
func (p *Program) DisassembleWithName(name string) string {
	var sb strings.Builder

	// Header
	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; StackCalc Bytecode v%d\n", p.Version))
	sb.WriteString(fmt.Sprintf("; Instructions: %d, max stack: %d\n", len(p.Instructions), p.MaxStackDepth()))
	sb.WriteString("\n")

	// Code section
	sb.WriteString("; Code:\n")
	for i, in := range p.Instructions {
		sb.WriteString(fmt.Sprintf("%04d  %s\n", i, disassembleInstruction(in)))
	}

	return sb.String()
}

// disassembleInstruction formats one instruction with a stack effect comment.
func disassembleInstruction(in Instruction) string {
	switch {
	case in.Op == OpPush:
		return fmt.Sprintf("%-6s %d", "PUSH", in.Operand)
	case in.Op == OpPop:
		return "POP"
	case in.Op.IsArithmetic():
		return fmt.Sprintf("%-6s %-4d ; pop %d, push 1", in.Op, in.Operand, in.Operand)
	}
	return fmt.Sprintf("%s %d", in.Op, in.Operand)
}
