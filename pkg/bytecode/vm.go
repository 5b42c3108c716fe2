package bytecode

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrDivisionByZero is returned when a DIV or MOD operand after the
	// first is zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrStackUnderflow is returned when an instruction needs more values
	// than the stack holds, or the program leaves the stack empty.
	ErrStackUnderflow = errors.New("stack underflow")
)

// ExecError wraps a VM failure with the offending instruction.
type ExecError struct {
	IP  int         // index of the failing instruction
	In  Instruction // the failing instruction
	Err error
}

func (e *ExecError) Error() string {
	if !e.In.Op.Valid() {
		return fmt.Sprintf("[%04d] %v", e.IP, e.Err)
	}
	return fmt.Sprintf("[%04d] %s: %v", e.IP, e.In, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// VM executes straight-line programs against an integer stack.
//
// A VM is not safe for concurrent use. Execute resets the stack, so a VM
// may be reused for consecutive programs.
type VM struct {
	stack []int
	ip    int // index of the instruction being executed

	trace io.Writer
}

// NewVM creates a new VM instance with an empty stack.
func NewVM() *VM {
	return &VM{
		stack: make([]int, 0, 64),
	}
}

// SetTrace makes the VM write one line per executed instruction to w.
// A nil writer disables tracing.
func (vm *VM) SetTrace(w io.Writer) {
	vm.trace = w
}

// Execute runs every instruction in order and returns the top of stack.
//
// The VM does not check that exactly one value remains; programs from the
// code generator always leave one.
func (vm *VM) Execute(p *Program) (int, error) {
	vm.stack = vm.stack[:0]

	for vm.ip = 0; vm.ip < len(p.Instructions); vm.ip++ {
		in := p.Instructions[vm.ip]
		if err := vm.step(in); err != nil {
			return 0, &ExecError{IP: vm.ip, In: in, Err: err}
		}
		if vm.trace != nil {
			fmt.Fprintf(vm.trace, "[%04d] %-10s sp=%d\n", vm.ip, in, len(vm.stack))
		}
	}

	if len(vm.stack) == 0 {
		return 0, &ExecError{IP: vm.ip, Err: fmt.Errorf("%w: no result on stack", ErrStackUnderflow)}
	}
	return vm.peek(), nil
}

// Stack returns a copy of the current stack, bottom first.
func (vm *VM) Stack() []int {
	out := make([]int, len(vm.stack))
	copy(out, vm.stack)
	return out
}

func (vm *VM) step(in Instruction) error {
	switch in.Op {
	case OpPush:
		vm.push(in.Operand)
		return nil

	case OpPop:
		if len(vm.stack) == 0 {
			return ErrStackUnderflow
		}
		vm.stack = vm.stack[:len(vm.stack)-1]
		return nil

	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return vm.fold(in.Op, in.Operand)
	}

	return fmt.Errorf("unknown opcode: 0x%02x", byte(in.Op))
}

// fold pops n values and pushes their left-to-right combination. The first
// value pushed seeds the accumulator.
func (vm *VM) fold(op Opcode, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: arity %d", ErrInvalidOperand, n)
	}
	if n > len(vm.stack) {
		return fmt.Errorf("%w: need %d values, have %d", ErrStackUnderflow, n, len(vm.stack))
	}

	base := len(vm.stack) - n
	operands := vm.stack[base:] // still in push order
	acc := operands[0]
	for _, v := range operands[1:] {
		switch op {
		case OpAdd:
			acc += v
		case OpSub:
			acc -= v
		case OpMul:
			acc *= v
		case OpDiv:
			if v == 0 {
				return ErrDivisionByZero
			}
			acc /= v
		case OpMod:
			if v == 0 {
				return ErrDivisionByZero
			}
			acc %= v
		}
	}

	vm.stack = vm.stack[:base]
	vm.push(acc)
	return nil
}

func (vm *VM) push(v int) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) peek() int {
	return vm.stack[len(vm.stack)-1]
}

// Run assembles records and executes them on a fresh VM.
func Run(records []string) (int, error) {
	p, err := Assemble(records)
	if err != nil {
		return 0, err
	}
	return NewVM().Execute(p)
}
