// Package repl implements the interactive read-evaluate-print loop.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/stackcalc/calc"
	"github.com/chazu/stackcalc/history"
)

const defaultHistoryCount = 10

// Session is one REPL run. It evaluates one line at a time; no state other
// than display toggles survives between lines.
type Session struct {
	in   LineReader
	out  io.Writer
	eval *calc.Evaluator

	store  *history.Store
	prompt string
	banner string
	disasm bool
	trace  bool

	log commonlog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithStore records every evaluation in store and enables :history.
func WithStore(store *history.Store) Option {
	return func(s *Session) { s.store = store }
}

// WithPrompt sets the prompt. The default is "repl> ".
func WithPrompt(prompt string) Option {
	return func(s *Session) { s.prompt = prompt }
}

// WithBanner sets the text printed when Run starts.
func WithBanner(banner string) Option {
	return func(s *Session) { s.banner = banner }
}

// WithDisasm turns the listing after each result on or off.
func WithDisasm(on bool) Option {
	return func(s *Session) { s.disasm = on }
}

// WithTrace turns the VM trace on or off.
func WithTrace(on bool) Option {
	return func(s *Session) { s.trace = on }
}

// New creates a session reading from in and printing to out.
func New(in LineReader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		in:     in,
		out:    out,
		prompt: "repl> ",
		log:    commonlog.GetLogger("stackcalc.repl"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.eval = calc.New()
	s.applyTrace()
	return s
}

func (s *Session) applyTrace() {
	if s.trace {
		s.eval.SetTrace(s.out)
	} else {
		s.eval.SetTrace(nil)
	}
}

// Run reads and evaluates lines until input ends, the user exits, or ctx is
// done. Evaluation errors are printed and never end the loop.
func (s *Session) Run(ctx context.Context) error {
	if s.banner != "" {
		fmt.Fprintln(s.out, s.banner)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.in.ReadLine(s.prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}

		if !s.Handle(ctx, line) {
			return nil
		}
	}
}

// Handle processes one input line and reports whether the loop should
// continue.
func (s *Session) Handle(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		return true
	case trimmed == "exit" || trimmed == "quit":
		return false
	case strings.HasPrefix(trimmed, ":"):
		s.command(ctx, trimmed)
		return true
	}

	s.evalAndPrint(ctx, line)
	return true
}

// evalAndPrint evaluates one expression and prints its value or error.
func (s *Session) evalAndPrint(ctx context.Context, line string) {
	res, err := s.eval.Evaluate(line)
	if s.store != nil {
		if _, rerr := s.store.Record(ctx, history.NewEntry(line, res, err)); rerr != nil {
			s.log.Errorf("recording evaluation: %s", rerr)
		}
	}

	if err != nil {
		fmt.Fprintf(s.out, "error: %s\n", calc.Describe(err))
		return
	}

	fmt.Fprintln(s.out, res.Value)
	if s.disasm {
		fmt.Fprint(s.out, res.Listing())
	}
}

// command handles REPL meta-commands.
func (s *Session) command(ctx context.Context, cmd string) {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?     Show this help")
		fmt.Fprintln(s.out, "  :disasm           Toggle bytecode listing after each result")
		fmt.Fprintln(s.out, "  :trace            Toggle VM instruction trace")
		fmt.Fprintln(s.out, "  :history [n]      Show the last n evaluations (default 10)")
		fmt.Fprintln(s.out, "  exit, quit        Exit REPL")
	case ":disasm":
		s.disasm = !s.disasm
		fmt.Fprintf(s.out, "disasm %s\n", onOff(s.disasm))
	case ":trace":
		s.trace = !s.trace
		s.applyTrace()
		fmt.Fprintf(s.out, "trace %s\n", onOff(s.trace))
	case ":history":
		s.showHistory(ctx, fields[1:])
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", fields[0])
	}
}

func (s *Session) showHistory(ctx context.Context, args []string) {
	if s.store == nil {
		fmt.Fprintln(s.out, "history is not enabled (set [store] path in stackcalc.toml)")
		return
	}

	n := defaultHistoryCount
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			fmt.Fprintf(s.out, "usage: :history [n], n a positive integer\n")
			return
		}
		n = v
	}

	entries, err := s.store.Recent(ctx, n)
	if err != nil {
		s.log.Errorf("reading history: %s", err)
		fmt.Fprintf(s.out, "error: %s\n", calc.Describe(err))
		return
	}
	// Oldest first, like a transcript.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.OK() {
			fmt.Fprintf(s.out, "%4d  %-24s %d\n", e.ID, e.Source, e.Value)
		} else {
			fmt.Fprintf(s.out, "%4d  %-24s error: %s\n", e.ID, e.Source, e.ErrorKind)
		}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
