package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/chazu/stackcalc/history"
	"github.com/chazu/stackcalc/pkg/wire"
)

// ---------------------------------------------------------------------------
// Evaluate: happy paths
// ---------------------------------------------------------------------------

func TestEvaluate_Sum(t *testing.T) {
	svc := newTestEvalService(t)

	resp, err := svc.Evaluate(bg(), connectReq(&wire.EvaluateRequest{
		Source: "(+ 1 2 3)",
	}))
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !resp.Msg.Success {
		t.Fatalf("Evaluate was not successful: %s", resp.Msg.ErrorMessage)
	}
	if resp.Msg.Value != 6 {
		t.Errorf("Evaluate value = %d, want 6", resp.Msg.Value)
	}
	if len(resp.Msg.Records) != 4 {
		t.Errorf("Records = %v, want 4 records", resp.Msg.Records)
	}
	if resp.Msg.Listing != "" {
		t.Error("Listing should be empty unless requested")
	}
}

func TestEvaluate_Disassemble(t *testing.T) {
	svc := newTestEvalService(t)

	resp, err := svc.Evaluate(bg(), connectReq(&wire.EvaluateRequest{
		Source:      "(* 6 7)",
		Disassemble: true,
	}))
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !strings.Contains(resp.Msg.Listing, "0002  MUL    2") {
		t.Errorf("Listing = %q", resp.Msg.Listing)
	}
}

// ---------------------------------------------------------------------------
// Evaluate: error paths
// ---------------------------------------------------------------------------

func TestEvaluate_EmptySource(t *testing.T) {
	svc := newTestEvalService(t)

	for _, src := range []string{"", "  \t"} {
		_, err := svc.Evaluate(bg(), connectReq(&wire.EvaluateRequest{Source: src}))
		if err == nil {
			t.Fatalf("Evaluate(%q) should fail", src)
		}
		if connect.CodeOf(err) != connect.CodeInvalidArgument {
			t.Errorf("code = %v, want InvalidArgument", connect.CodeOf(err))
		}
	}
}

func TestEvaluate_FailuresInResponse(t *testing.T) {
	svc := newTestEvalService(t)

	tests := []struct {
		source string
		kind   string
	}{
		{"(/ 5 0)", "DivisionByZero"},
		{"(+ 1", "MalformedExpression"},
		{"(# 1 2)", "UnknownOperator"},
	}
	for _, tt := range tests {
		resp, err := svc.Evaluate(bg(), connectReq(&wire.EvaluateRequest{Source: tt.source}))
		if err != nil {
			t.Fatalf("Evaluate(%q) returned RPC error: %v", tt.source, err)
		}
		if resp.Msg.Success {
			t.Errorf("Evaluate(%q) succeeded", tt.source)
		}
		if resp.Msg.ErrorKind != tt.kind {
			t.Errorf("Evaluate(%q) kind = %q, want %q", tt.source, resp.Msg.ErrorKind, tt.kind)
		}
		if resp.Msg.ErrorMessage == "" {
			t.Errorf("Evaluate(%q) has no error message", tt.source)
		}
	}
}

func TestEvaluate_RecordsHistory(t *testing.T) {
	store, err := history.Open(bg(), ":memory:")
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	defer store.Close()

	svc := NewEvalService(newTestWorker(t), store)
	for _, src := range []string{"(+ 1 1)", "(/ 1 0)"} {
		if _, err := svc.Evaluate(bg(), connectReq(&wire.EvaluateRequest{Source: src})); err != nil {
			t.Fatalf("Evaluate(%q): %v", src, err)
		}
	}

	entries, err := store.Recent(bg(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("recorded %d entries, want 2", len(entries))
	}
	if entries[0].ErrorKind != "DivisionByZero" || entries[1].Value != 2 {
		t.Errorf("entries = %+v", entries)
	}
}

// ---------------------------------------------------------------------------
// Over HTTP
// ---------------------------------------------------------------------------

func TestClient_RoundTrip(t *testing.T) {
	client := newTestServer(t)

	resp, err := client.Evaluate(bg(), "(+ 1 (* 2 3))", true)
	if err != nil {
		t.Fatalf("client.Evaluate: %v", err)
	}
	if !resp.Success || resp.Value != 7 {
		t.Errorf("response = %+v, want success with value 7", resp)
	}
	if !strings.Contains(resp.Listing, "; === (+ 1 (* 2 3)) ===") {
		t.Errorf("Listing = %q", resp.Listing)
	}
}

func TestClient_BackToBack(t *testing.T) {
	client := newTestServer(t)

	for i, tt := range []struct {
		src  string
		want int64
	}{
		{"(+ 1 2)", 3},
		{"(- 9 2 3)", 4},
		{"(% 9 4)", 1},
	} {
		resp, err := client.Evaluate(bg(), tt.src, false)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if resp.Value != tt.want {
			t.Errorf("call %d: value = %d, want %d", i, resp.Value, tt.want)
		}
	}
}

func TestClient_InvalidArgument(t *testing.T) {
	client := newTestServer(t)

	_, err := client.Evaluate(bg(), "", false)
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *connect.Error", err)
	}
	if cerr.Code() != connect.CodeInvalidArgument {
		t.Errorf("code = %v, want InvalidArgument", cerr.Code())
	}
}

func TestClient_EvaluationFailure(t *testing.T) {
	client := newTestServer(t)

	resp, err := client.Evaluate(bg(), "(/ 5 0)", false)
	if err != nil {
		t.Fatalf("client.Evaluate: %v", err)
	}
	if resp.Success || resp.ErrorKind != "DivisionByZero" {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandler_UnknownProcedure(t *testing.T) {
	s := New()
	defer s.Stop()
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/"+EvaluationServiceName+"/Nope", "application/cbor", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
