// calc is the StackCalc command line: an interactive calculator for prefix
// arithmetic, plus one-shot evaluation, conformance checks, an evaluation
// server and a language server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/stackcalc/calc"
	"github.com/chazu/stackcalc/config"
	"github.com/chazu/stackcalc/conformance"
	"github.com/chazu/stackcalc/history"
	"github.com/chazu/stackcalc/pkg/wire"
	"github.com/chazu/stackcalc/repl"
	"github.com/chazu/stackcalc/server"
)

// countFlag is a repeatable boolean flag: -v -v gives 2.
type countFlag int

func (c *countFlag) String() string   { return strconv.Itoa(int(*c)) }
func (c *countFlag) IsBoolFlag() bool { return true }
func (c *countFlag) Set(s string) error {
	if s == "true" {
		*c++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid count %q", s)
	}
	*c = countFlag(n)
	return nil
}

// options holds parsed command line flags.
type options struct {
	configPath string
	expr       string
	emit       string
	disasm     bool
	trace      bool
	check      string
	serve      bool
	port       int
	lsp        bool
	verbosity  countFlag

	set map[string]bool // flags given explicitly
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to stackcalc.toml (default: search upward from the working directory)")
	fs.StringVar(&opts.expr, "e", "", "Evaluate one expression, print the result and exit")
	fs.StringVar(&opts.emit, "emit", "", "Write the program compiled by -e to a file (CBOR, or SCBC binary for *.scbc)")
	fs.BoolVar(&opts.disasm, "disasm", false, "Print the bytecode listing after each result")
	fs.BoolVar(&opts.trace, "trace", false, "Trace VM execution")
	fs.StringVar(&opts.check, "check", "", "Run a conformance suite (YAML) and exit")
	fs.BoolVar(&opts.serve, "serve", false, "Start the evaluation server (Connect, CBOR)")
	fs.IntVar(&opts.port, "port", 0, "Evaluation server port (used with -serve)")
	fs.BoolVar(&opts.lsp, "lsp", false, "Start the language server on stdio")
	fs.Var(&opts.verbosity, "v", "Log verbosity (repeat for more)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: calc [options]\n\n")
		fmt.Fprintf(stderr, "Evaluates prefix arithmetic such as (+ 1 (* 2 3)).\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  calc                           # Start REPL\n")
		fmt.Fprintf(stderr, "  calc -e '(+ 1 2 3)'            # Evaluate one expression\n")
		fmt.Fprintf(stderr, "  calc -e '(* 6 7)' -emit a.scbc # Save the compiled program\n")
		fmt.Fprintf(stderr, "  calc -check suite.yaml         # Run a conformance suite\n")
		fmt.Fprintf(stderr, "  calc -serve -port 8080         # Serve evaluations on :8080\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if opts.emit != "" && !opts.set["e"] {
		return nil, fmt.Errorf("-emit requires -e")
	}
	return opts, nil
}

// loadConfig reads the configuration and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		return nil, err
	}

	if opts.set["disasm"] {
		cfg.Output.Disasm = opts.disasm
	}
	if opts.set["trace"] {
		cfg.Output.Trace = opts.trace
	}
	if opts.set["port"] {
		cfg.Server.Port = opts.port
	}
	if opts.set["v"] {
		cfg.Log.Verbosity = int(opts.verbosity)
	}
	return cfg, cfg.Validate()
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if path := cfg.LogFilePath(); path != "" {
		commonlog.Configure(cfg.Log.Verbosity, &path)
	} else {
		commonlog.Configure(cfg.Log.Verbosity, nil)
	}
	log := commonlog.GetLogger("stackcalc")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case opts.check != "":
		return runCheck(opts.check, stdout, stderr)
	case opts.lsp:
		if err := server.NewLSP().Run(); err != nil {
			log.Errorf("lsp: %s", err)
			return 1
		}
		return 0
	}

	var store *history.Store
	if path := cfg.StorePath(); path != "" {
		store, err = history.Open(ctx, path)
		if err != nil {
			// History is optional; keep going without it.
			log.Warningf("history disabled: %s", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	switch {
	case opts.set["e"]:
		return runExpr(ctx, opts, cfg, store, stdout, stderr)
	case opts.serve:
		return runServer(ctx, cfg, store, stderr)
	}

	return runREPL(ctx, cfg, store, stdin, stdout, stderr)
}

// runExpr evaluates -e and optionally writes the program with -emit.
func runExpr(ctx context.Context, opts *options, cfg *config.Config, store *history.Store, stdout, stderr io.Writer) int {
	var evalOpts []calc.Option
	if cfg.Output.Trace {
		evalOpts = append(evalOpts, calc.WithTrace(stdout))
	}

	res, err := calc.New(evalOpts...).Evaluate(opts.expr)
	if store != nil {
		if _, rerr := store.Record(ctx, history.NewEntry(opts.expr, res, err)); rerr != nil {
			fmt.Fprintf(stderr, "Warning: %v\n", rerr)
		}
	}

	if opts.emit != "" && res != nil {
		if werr := emitProgram(opts.emit, res); werr != nil {
			fmt.Fprintf(stderr, "Error: %v\n", werr)
			return 1
		}
	}

	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", calc.Describe(err))
		return 1
	}
	fmt.Fprintln(stdout, res.Value)
	if cfg.Output.Disasm {
		fmt.Fprint(stdout, res.Listing())
	}
	return 0
}

// emitProgram writes the compiled program: SCBC binary for *.scbc, CBOR
// otherwise.
func emitProgram(path string, res *calc.Result) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".scbc") {
		data, err = res.Program.Serialize()
	} else {
		data, err = wire.MarshalProgram(res.Program)
	}
	if err != nil {
		return fmt.Errorf("encoding program: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// runCheck runs a conformance suite and reports failures.
func runCheck(path string, stdout, stderr io.Writer) int {
	suite, err := conformance.LoadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	rep := conformance.Run(suite, calc.New())
	rep.Write(stdout)
	if !rep.OK() {
		return 1
	}
	return 0
}

// runServer serves evaluations until interrupted.
func runServer(ctx context.Context, cfg *config.Config, store *history.Store, stderr io.Writer) int {
	var srvOpts []server.ServerOption
	if store != nil {
		srvOpts = append(srvOpts, server.WithStore(store))
	}
	srv := server.New(srvOpts...)

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Fprintf(stderr, "StackCalc server listening on %s\n", addr)
	if err := srv.ListenAndServe(addr); err != nil {
		fmt.Fprintf(stderr, "Server error: %v\n", err)
		return 1
	}
	return 0
}

// runREPL starts the interactive loop, with line editing on a terminal.
func runREPL(ctx context.Context, cfg *config.Config, store *history.Store, stdin io.Reader, stdout, stderr io.Writer) int {
	var in repl.LineReader
	if stdin == io.Reader(os.Stdin) && repl.IsTerminal() {
		lr := repl.NewLinerReader(cfg.HistoryFilePath())
		defer lr.Close()
		in = lr
	} else {
		in = repl.NewScannerReader(stdin, stdout)
	}

	replOpts := []repl.Option{
		repl.WithPrompt(cfg.REPL.Prompt),
		repl.WithBanner(cfg.REPL.Banner),
		repl.WithDisasm(cfg.Output.Disasm),
		repl.WithTrace(cfg.Output.Trace),
	}
	if store != nil {
		replOpts = append(replOpts, repl.WithStore(store))
	}

	if err := repl.New(in, stdout, replOpts...).Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
