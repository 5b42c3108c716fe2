// Package calc runs the full StackCalc pipeline: lex, parse, generate
// records, assemble and execute.
package calc

import (
	"io"

	"github.com/tliron/commonlog"

	"github.com/chazu/stackcalc/compiler"
	"github.com/chazu/stackcalc/pkg/bytecode"
)

// Result is a successful evaluation.
type Result struct {
	Source  string
	Value   int
	Records []string
	Program *bytecode.Program
}

// Listing returns the bytecode listing of the evaluated program, headed by
// its source.
func (r *Result) Listing() string {
	if r.Program == nil {
		return ""
	}
	return r.Program.DisassembleWithName(r.Source)
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithTrace makes every evaluation write a VM trace to w.
func WithTrace(w io.Writer) Option {
	return func(e *Evaluator) { e.trace = w }
}

// WithLogger replaces the default "stackcalc.calc" logger.
func WithLogger(log commonlog.Logger) Option {
	return func(e *Evaluator) { e.log = log }
}

// Evaluator evaluates expression lines. It holds options only; every call
// to Evaluate uses a fresh code generator and VM, so consecutive
// evaluations cannot observe each other.
type Evaluator struct {
	trace io.Writer
	log   commonlog.Logger
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		log: commonlog.GetLogger("stackcalc.calc"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetTrace changes the trace writer. A nil writer disables tracing.
func (e *Evaluator) SetTrace(w io.Writer) {
	e.trace = w
}

// Evaluate compiles and runs one line.
//
// If the front end fails the result is nil. If only execution fails, the
// returned result is non-nil and carries Records and Program so callers can
// show or store what was run; its Value is meaningless.
func (e *Evaluator) Evaluate(line string) (*Result, error) {
	records, err := compiler.Compile(line)
	if err != nil {
		e.log.Debugf("compile %q: %s", line, err)
		return nil, err
	}

	program, err := bytecode.Assemble(records)
	if err != nil {
		e.log.Debugf("assemble %q: %s", line, err)
		return nil, err
	}

	res := &Result{Source: line, Records: records, Program: program}

	vm := bytecode.NewVM()
	vm.SetTrace(e.trace)
	value, err := vm.Execute(program)
	if err != nil {
		e.log.Debugf("execute %q: %s", line, err)
		return res, err
	}

	res.Value = value
	return res, nil
}

// Evaluate runs one line with default options.
func Evaluate(line string) (*Result, error) {
	return New().Evaluate(line)
}
