package server

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/stackcalc/calc"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "stackcalc-lsp"

// LspServer checks files of expressions, one per line, on a Worker.
type LspServer struct {
	worker *Worker

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
	log     commonlog.Logger
}

// NewLSP creates a new LSP server with its own worker.
func NewLSP() *LspServer {
	s := &LspServer{
		worker:  NewWorker(calc.New()),
		docs:    make(map[string]string),
		version: "0.1.0",
		log:     commonlog.GetLogger("stackcalc.lsp"),
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover: s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.log.Info("StackCalc LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	s.worker.Stop()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) setDoc(uri protocol.DocumentUri, text string) {
	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()
}

func (s *LspServer) doc(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.setDoc(uri, params.TextDocument.Text)
	s.publishDiagnostics(ctx, uri, params.TextDocument.Text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.setDoc(uri, whole.Text)
			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// --- Language features ---

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.doc(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	result, err := s.worker.Do(func(e *calc.Evaluator) interface{} {
		return hover(e, text, params.Position)
	})
	if err != nil || result == nil {
		return nil, nil
	}
	return result.(*protocol.Hover), nil
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	result, err := s.worker.Do(func(e *calc.Evaluator) interface{} {
		return diagnose(e, text)
	})
	if err != nil {
		s.log.Errorf("diagnostics for %s: %s", uri, err)
		return
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: result.([]protocol.Diagnostic),
	})
}

// --- Evaluator-backed logic (called on worker goroutine) ---

// diagnose evaluates every non-empty line of text and returns one
// diagnostic per failing line. It never returns nil so clients clear stale
// diagnostics.
//
// Columns are byte offsets; expressions are ASCII.
func diagnose(e *calc.Evaluator, text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	for i, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		_, err := e.Evaluate(line)
		if err == nil {
			continue
		}

		start, end := 0, len(line)
		if off, ok := calc.Offset(err); ok {
			start, end = errorSpan(line, off)
		}

		severity := protocol.DiagnosticSeverityError
		source := lspName
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: protocol.UInteger(i), Character: protocol.UInteger(start)},
				End:   protocol.Position{Line: protocol.UInteger(i), Character: protocol.UInteger(end)},
			},
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: string(calc.ErrorKind(err))},
			Source:   &source,
			Message:  calc.Describe(err),
		})
	}
	return diagnostics
}

// errorSpan returns a one-character range at off. An offset at the end of
// the line marks its last character.
func errorSpan(line string, off int) (int, int) {
	if off >= len(line) {
		off = len(line) - 1
	}
	if off < 0 {
		off = 0
	}
	return off, off + 1
}

// hover describes the expression on the line under pos: its value or
// error and the bytecode listing.
func hover(e *calc.Evaluator, text string, pos protocol.Position) *protocol.Hover {
	line := extractLine(text, pos)
	if strings.TrimSpace(line) == "" {
		return nil
	}

	res, err := e.Evaluate(line)

	var b strings.Builder
	if err != nil {
		fmt.Fprintf(&b, "**error** `%s`\n\n%v\n", calc.ErrorKind(err), err)
	} else {
		fmt.Fprintf(&b, "**= %d**\n", res.Value)
	}
	if res != nil {
		b.WriteString("\n```\n")
		b.WriteString(res.Listing())
		b.WriteString("```\n")
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

// --- Text extraction helpers ---

// splitLines splits text into lines, dropping a trailing carriage return
// from each.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// extractLine returns the line under the cursor.
func extractLine(text string, pos protocol.Position) string {
	lines := splitLines(text)
	if int(pos.Line) >= len(lines) {
		return ""
	}
	return lines[pos.Line]
}

func boolPtr(b bool) *bool {
	return &b
}
