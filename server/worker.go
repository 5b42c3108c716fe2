package server

import (
	"errors"
	"fmt"

	"github.com/chazu/stackcalc/calc"
)

var errWorkerStopped = errors.New("worker stopped")

// workRequest represents a unit of work to be executed on the worker goroutine.
type workRequest struct {
	fn   func(*calc.Evaluator) interface{}
	done chan workResult
}

// workResult holds the return value from a worker operation.
type workResult struct {
	value interface{}
	err   error
}

// Worker serializes all evaluations through a single goroutine, so at most
// one expression is in flight per process no matter how many RPC or LSP
// requests arrive.
type Worker struct {
	eval     *calc.Evaluator
	requests chan workRequest
	quit     chan struct{}
}

// NewWorker creates a Worker and starts the processing goroutine.
func NewWorker(eval *calc.Evaluator) *Worker {
	w := &Worker{
		eval:     eval,
		requests: make(chan workRequest, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// loop processes requests sequentially on a dedicated goroutine.
func (w *Worker) loop() {
	for {
		select {
		case req := <-w.requests:
			result := w.execute(req.fn)
			req.done <- result
		case <-w.quit:
			return
		}
	}
}

// execute runs a function on the evaluator, recovering from panics.
func (w *Worker) execute(fn func(*calc.Evaluator) interface{}) workResult {
	var result workResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("%v", r)
			}
		}()
		result.value = fn(w.eval)
	}()
	return result
}

// Do submits a function for execution on the worker goroutine and blocks
// until it completes. Returns the result and any error (including panics).
// Do fails once Stop has been called.
func (w *Worker) Do(fn func(*calc.Evaluator) interface{}) (interface{}, error) {
	req := workRequest{
		fn:   fn,
		done: make(chan workResult, 1),
	}
	select {
	case <-w.quit:
		return nil, errWorkerStopped
	default:
	}
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, errWorkerStopped
	}
	select {
	case result := <-req.done:
		return result.value, result.err
	case <-w.quit:
		return nil, errWorkerStopped
	}
}

// Evaluate runs one expression on the worker goroutine.
func (w *Worker) Evaluate(line string) (*calc.Result, error) {
	type outcome struct {
		res *calc.Result
		err error
	}
	v, err := w.Do(func(e *calc.Evaluator) interface{} {
		res, err := e.Evaluate(line)
		return outcome{res, err}
	})
	if err != nil {
		return nil, err
	}
	o := v.(outcome)
	return o.res, o.err
}

// Stop shuts down the worker goroutine. It is safe to call more than once.
func (w *Worker) Stop() {
	select {
	case <-w.quit:
	default:
		close(w.quit)
	}
}
