// Package bytecode assembles and executes StackCalc programs.
//
// A program is a flat list of instructions for a single integer stack. The
// code generator in package compiler produces textual records ("PUSH 3",
// "ADD 2"); Assemble turns those into a Program and VM.Execute runs it.
//
// # Instructions
//
//   - PUSH n: push the integer n.
//   - ADD n, SUB n, MUL n, DIV n, MOD n: pop the top n values and push their
//     left-to-right fold, seeded with the value that was pushed first.
//   - POP: discard the top value. The code generator never emits it.
//
// Division and remainder truncate toward zero. A zero divisor anywhere after
// the first operand is ErrDivisionByZero.
//
// # Serialization
//
// Programs serialize to the "SCBC" binary format (see Program.Serialize) for
// storage on disk. Package wire provides a CBOR encoding for transport.
package bytecode
