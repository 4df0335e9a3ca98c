// Package lsp provides a Language Server Protocol server that runs the
// server-only import analysis on open documents and publishes the results as
// editor diagnostics.
package lsp

import (
	"context"
	"log"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/serverfence/serverfence/pkg/rule"
)

// serverName identifies the server in initialize responses and diagnostics.
const serverName = "serverfence"

// Metrics receives per-document analysis telemetry. Implementations must be
// safe for concurrent use.
type Metrics interface {
	RecordFile(ctx context.Context, class string, duration time.Duration)
	RecordViolation(ctx context.Context, kind, reason string)
}

// Server implements the serverfence LSP server.
type Server struct {
	engine  *rule.Engine
	store   *DocumentStore
	handler protocol.Handler
	version string
	metrics Metrics
}

// NewServer creates an LSP server backed by the given analysis engine.
func NewServer(engine *rule.Engine, version string) *Server {
	srv := &Server{
		engine:  engine,
		store:   NewDocumentStore(),
		version: version,
	}

	srv.handler = protocol.Handler{
		Initialize:             srv.initialize,
		Initialized:            srv.initialized,
		Shutdown:               srv.shutdown,
		SetTrace:               srv.setTrace,
		TextDocumentDidOpen:    srv.didOpen,
		TextDocumentDidChange:  srv.didChange,
		TextDocumentDidSave:    srv.didSave,
		TextDocumentDidClose:   srv.didClose,
		TextDocumentCodeAction: srv.codeAction,
	}

	return srv
}

// SetMetrics attaches a telemetry sink. Must be called before Run.
func (srv *Server) SetMetrics(m Metrics) {
	srv.metrics = m
}

// Run starts the LSP server on stdio.
func (srv *Server) Run() {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	err := lspServer.RunStdio()
	if err != nil {
		log.Printf("LSP server error: %v", err)
	}
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &srv.version,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI

	srv.store.Set(uri, params.TextDocument.Text)
	srv.publishDiagnostics(ctx, uri)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	if len(params.ContentChanges) > 0 {
		if change, changeOK := params.ContentChanges[0].(map[string]any); changeOK {
			if text, textOK := change["text"].(string); textOK {
				srv.store.Set(uri, text)
				srv.publishDiagnostics(ctx, uri)
			}
		}
	}

	return nil
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI

	if _, ok := srv.store.Get(uri); ok {
		srv.publishDiagnostics(ctx, uri)
	}

	return nil
}

func (srv *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	srv.store.Delete(uri)

	// Clear stale diagnostics for the closed document.
	ctx.Notify("textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})

	return nil
}

func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	text, ok := srv.store.Get(uri)
	if !ok {
		return
	}

	ctx.Notify("textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: srv.diagnosticsFor(uri, text),
	})
}

// diagnosticsFor runs the engine on a document and converts the results to
// protocol diagnostics. Analysis failures (unparseable or unsupported files)
// surface as no diagnostics rather than editor errors.
func (srv *Server) diagnosticsFor(uri, text string) []protocol.Diagnostic {
	ctx := context.Background()
	started := time.Now()

	report, err := srv.engine.Check(ctx, uriToPath(uri), []byte(text))
	if err != nil {
		return []protocol.Diagnostic{}
	}

	if srv.metrics != nil {
		srv.metrics.RecordFile(ctx, report.ClassName, time.Since(started))
	}

	diagnostics := make([]protocol.Diagnostic, 0, len(report.Diagnostics))
	for _, diag := range report.Diagnostics {
		if srv.metrics != nil {
			srv.metrics.RecordViolation(ctx, string(diag.Kind), diag.ReasonName)
		}

		diagnostics = append(diagnostics, toProtocolDiagnostic(diag))
	}

	return diagnostics
}

func toProtocolDiagnostic(diag rule.Diagnostic) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	if diag.Reason == rule.ReasonNoReads {
		severity = protocol.DiagnosticSeverityWarning
	}

	source := serverName
	code := protocol.IntegerOrString{Value: string(diag.Kind)}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: pointToPosition(diag.Start),
			End:   pointToPosition(diag.End),
		},
		Severity: &severity,
		Code:     &code,
		Source:   &source,
		Message:  diag.Message,
	}
}

// codeAction offers the add-marker quick fix when the document has
// diagnostics carrying the marker suggestion.
func (srv *Server) codeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	uri := params.TextDocument.URI

	text, ok := srv.store.Get(uri)
	if !ok {
		return nil, nil
	}

	report, err := srv.engine.Check(context.Background(), uriToPath(uri), []byte(text))
	if err != nil || len(report.Diagnostics) == 0 {
		return nil, nil
	}

	suggestions := report.Diagnostics[0].Suggestions
	if len(suggestions) == 0 {
		return nil, nil
	}

	suggestion := suggestions[0]

	edits := make([]protocol.TextEdit, 0, len(suggestion.Edits))
	for _, edit := range suggestion.Edits {
		edits = append(edits, protocol.TextEdit{
			Range: protocol.Range{
				Start: offsetToPosition(text, edit.Start),
				End:   offsetToPosition(text, edit.End),
			},
			NewText: edit.NewText,
		})
	}

	kind := protocol.CodeActionKindQuickFix

	return []protocol.CodeAction{
		{
			Title: suggestion.Message,
			Kind:  &kind,
			Edit: &protocol.WorkspaceEdit{
				Changes: map[protocol.DocumentUri][]protocol.TextEdit{
					uri: edits,
				},
			},
		},
	}, nil
}
