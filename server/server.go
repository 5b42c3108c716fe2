package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/tliron/commonlog"

	"github.com/chazu/stackcalc/calc"
	"github.com/chazu/stackcalc/history"
)

// CalcServer serves the evaluation RPC over HTTP.
type CalcServer struct {
	worker *Worker
	mux    *http.ServeMux
	http   *http.Server
	log    commonlog.Logger
}

// ServerOption configures a CalcServer.
type ServerOption func(*serverConfig)

type serverConfig struct {
	store *history.Store
}

// WithStore records every evaluation served in store.
func WithStore(store *history.Store) ServerOption {
	return func(c *serverConfig) { c.store = store }
}

// New creates a CalcServer with its own worker.
func New(opts ...ServerOption) *CalcServer {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &CalcServer{
		worker: NewWorker(calc.New()),
		mux:    http.NewServeMux(),
		log:    commonlog.GetLogger("stackcalc.server"),
	}

	evalPath, evalHandler := NewEvaluationServiceHandler(NewEvalService(s.worker, cfg.store))
	s.mux.Handle(evalPath, evalHandler)
	s.http = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler serving all procedures.
func (s *CalcServer) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server on the given address. The address
// should be in the form "host:port" or ":port". It returns nil after
// Shutdown.
func (s *CalcServer) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.log.Noticef("listening on %s", ln.Addr())
	s.log.Infof("Connect (CBOR): http://%s%s", ln.Addr(), EvaluateProcedure)

	err = s.http.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *CalcServer) Shutdown(ctx context.Context) error {
	defer s.Stop()
	return s.http.Shutdown(ctx)
}

// Stop shuts down the worker.
func (s *CalcServer) Stop() {
	s.worker.Stop()
}
