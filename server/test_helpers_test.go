package server

import (
	"context"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"

	"github.com/chazu/stackcalc/calc"
)

// ---------------------------------------------------------------------------
// Shared test infrastructure for server package tests.
// ---------------------------------------------------------------------------

// newTestWorker starts a worker that is stopped when the test ends.
func newTestWorker(t *testing.T) *Worker {
	t.Helper()
	w := NewWorker(calc.New())
	t.Cleanup(w.Stop)
	return w
}

// newTestEvalService creates an EvalService without a history store.
func newTestEvalService(t *testing.T) *EvalService {
	return NewEvalService(newTestWorker(t), nil)
}

// newTestServer starts an httptest server for a CalcServer and returns a
// client connected to it.
func newTestServer(t *testing.T, opts ...ServerOption) *Client {
	t.Helper()
	s := New(opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Stop()
	})
	return NewClient(ts.Client(), ts.URL)
}

func connectReq[T any](msg *T) *connect.Request[T] {
	return connect.NewRequest(msg)
}

func bg() context.Context {
	return context.Background()
}
