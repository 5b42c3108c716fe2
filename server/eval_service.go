package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/tliron/commonlog"

	"github.com/chazu/stackcalc/calc"
	"github.com/chazu/stackcalc/history"
	"github.com/chazu/stackcalc/pkg/wire"
)

const (
	// EvaluationServiceName is the fully-qualified name of the evaluation service.
	EvaluationServiceName = "stackcalc.v1.EvaluationService"

	// EvaluateProcedure is the path of the Evaluate RPC.
	EvaluateProcedure = "/" + EvaluationServiceName + "/Evaluate"
)

// EvalService implements the EvaluationService Connect handler.
type EvalService struct {
	worker *Worker
	store  *history.Store // may be nil
	log    commonlog.Logger
}

// NewEvalService creates an EvalService. store may be nil.
func NewEvalService(worker *Worker, store *history.Store) *EvalService {
	return &EvalService{
		worker: worker,
		store:  store,
		log:    commonlog.GetLogger("stackcalc.server"),
	}
}

// Evaluate compiles and executes one expression. Evaluation failures are
// reported in the response; only a missing source is an RPC error.
func (s *EvalService) Evaluate(
	ctx context.Context,
	req *connect.Request[wire.EvaluateRequest],
) (*connect.Response[wire.EvaluateResponse], error) {
	source := req.Msg.Source
	if strings.TrimSpace(source) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source is required"))
	}

	res, err := s.worker.Evaluate(source)
	if s.store != nil {
		if _, rerr := s.store.Record(ctx, history.NewEntry(source, res, err)); rerr != nil {
			s.log.Errorf("recording evaluation: %s", rerr)
		}
	}

	if err != nil {
		s.log.Debugf("evaluate %q: %s", source, err)
		return connect.NewResponse(&wire.EvaluateResponse{
			Success:      false,
			ErrorKind:    string(calc.ErrorKind(err)),
			ErrorMessage: err.Error(),
		}), nil
	}

	resp := &wire.EvaluateResponse{
		Success: true,
		Value:   int64(res.Value),
		Records: res.Records,
	}
	if req.Msg.Disassemble {
		resp.Listing = res.Listing()
	}
	return connect.NewResponse(resp), nil
}

// NewEvaluationServiceHandler builds an HTTP handler for svc. It returns
// the path on which to mount the handler and the handler itself. Messages
// are CBOR-encoded.
func NewEvaluationServiceHandler(svc *EvalService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(wire.Codec{})}, opts...)
	evaluate := connect.NewUnaryHandler(EvaluateProcedure, svc.Evaluate, opts...)

	return "/" + EvaluationServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case EvaluateProcedure:
			evaluate.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
