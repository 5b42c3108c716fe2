package conformance

import (
	"fmt"
	"io"

	"github.com/chazu/stackcalc/calc"
)

// Evaluator is what a suite runs against. *calc.Evaluator implements it.
type Evaluator interface {
	Evaluate(line string) (*calc.Result, error)
}

// Result is the outcome of one case.
type Result struct {
	Case       Case
	Passed     bool
	Skipped    bool
	SkipReason string
	Error      error // why the case failed
}

// Report collects the results of one suite.
type Report struct {
	Suite   string
	Results []Result

	Passed, Failed, Skipped int
}

// OK reports whether no case failed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// String returns a human-readable summary.
func (r *Report) String() string {
	return fmt.Sprintf("%s: %d passed, %d failed, %d skipped (%d total)",
		r.Suite, r.Passed, r.Failed, r.Skipped, len(r.Results))
}

// Write prints one line per failed case followed by the summary.
func (r *Report) Write(w io.Writer) {
	for _, res := range r.Results {
		if !res.Passed && !res.Skipped {
			fmt.Fprintf(w, "FAIL %s: %v\n", res.Case.Name, res.Error)
		}
	}
	fmt.Fprintln(w, r.String())
}

// Run evaluates every case of suite with e.
func Run(suite *Suite, e Evaluator) *Report {
	rep := &Report{Suite: suite.Name, Results: make([]Result, 0, len(suite.Tests))}
	for _, c := range suite.Tests {
		res := runCase(c, e)
		switch {
		case res.Skipped:
			rep.Skipped++
		case res.Passed:
			rep.Passed++
		default:
			rep.Failed++
		}
		rep.Results = append(rep.Results, res)
	}
	return rep
}

func runCase(c Case, e Evaluator) Result {
	if skip, reason := c.IsSkipped(); skip {
		return Result{Case: c, Skipped: true, SkipReason: reason}
	}

	out, err := e.Evaluate(c.Expr)

	// Check for expected error
	if c.Error != "" {
		if err == nil {
			return Result{Case: c, Error: fmt.Errorf("expected error %s, got value: %d", c.Error, out.Value)}
		}
		if got := calc.ErrorKind(err); string(got) != c.Error {
			return Result{Case: c, Error: fmt.Errorf("expected error %s, got %s: %v", c.Error, got, err)}
		}
		return Result{Case: c, Passed: true}
	}

	if err != nil {
		return Result{Case: c, Error: fmt.Errorf("unexpected error %s", calc.Describe(err))}
	}
	if out.Value != *c.Want {
		return Result{Case: c, Error: fmt.Errorf("got %d, want %d", out.Value, *c.Want)}
	}
	return Result{Case: c, Passed: true}
}
