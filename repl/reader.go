package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/peterh/liner"
)

// LineReader supplies input lines. ReadLine returns io.EOF when input ends.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// scannerReader reads lines with bufio for non-terminal input. The prompt
// is written to out so transcripts look like an interactive session.
type scannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewScannerReader reads lines from r, writing prompts to out. A nil out
// suppresses prompts.
func NewScannerReader(r io.Reader, out io.Writer) LineReader {
	return &scannerReader{scanner: bufio.NewScanner(r), out: out}
}

func (r *scannerReader) ReadLine(prompt string) (string, error) {
	if r.out != nil {
		fmt.Fprint(r.out, prompt)
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

// LinerReader is a line editor for interactive terminals with a persistent
// history file.
type LinerReader struct {
	state    *liner.State
	histPath string
}

// NewLinerReader takes over the terminal. histPath may be empty. Close
// must be called to restore the terminal.
func NewLinerReader(histPath string) *LinerReader {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	return &LinerReader{state: ln, histPath: histPath}
}

// ReadLine prompts for a line. Ctrl-C and Ctrl-D both end input.
func (r *LinerReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if line != "" {
		r.state.AppendHistory(line)
	}
	return line, nil
}

// Close saves the history file and restores the terminal.
func (r *LinerReader) Close() error {
	if r.histPath != "" {
		if f, err := os.Create(r.histPath); err == nil {
			_, _ = r.state.WriteHistory(f)
			_ = f.Close()
		}
	}
	return r.state.Close()
}

// IsTerminal reports whether liner can drive the terminal.
func IsTerminal() bool {
	return liner.TerminalSupported() && isCharDevice(os.Stdin) && isCharDevice(os.Stdout)
}

func isCharDevice(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
