package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"github.com/LembergThe/apidocs"
	iLsp "github.com/LembergThe/apidocs/internal/lsp"
	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
)

// Server is the apidocs language server. It expands documentation pages as
// they are edited, publishing directive errors as diagnostics and keeping
// an expanded preview in a shadow workspace.
//
// Unlike a proxying server there is no downstream language server here: the
// expander itself is the source of truth for diagnostics.
type Server struct {
	conn *jsonrpc2.Conn

	// tracks canceled request IDs
	cancelMap sync.Map

	// tracking for method request counts
	trackRequestCount sync.Map

	// abstraction for expansion operations
	docService *iLsp.DocumentService
}

type Options struct {
	DocService iLsp.DocumentServiceOptions
}

var DefaultServerOptions = Options{
	DocService: iLsp.DefaultDocumentServiceOptions,
}

func NewServer(expander *apidocs.Expander, options Options) (*Server, error) {
	if options.DocService.ShadowRoot == "" {
		options = DefaultServerOptions
	}

	dService, err := iLsp.NewDocumentService(expander, options.DocService)
	if err != nil {
		return nil, err
	}

	return &Server{
		docService: dService,
	}, nil
}

func (s *Server) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	if s.conn == nil {
		s.conn = conn
	}
	slog.Info("received request", "method", req.Method, "id", req.ID)
	reqCount, _ := s.trackRequestCount.LoadOrStore(req.Method, 1)
	if count, ok := reqCount.(int); ok {
		s.trackRequestCount.Store(req.Method, count+1)
	}

	if _, ok := s.cancelMap.Load(req.ID.String()); ok {
		slog.Debug("request was canceled", "id", req.ID)
		s.cancelMap.Delete(req.ID.String())
		return nil, nil
	}

	switch req.Method {
	case "initialize":
		slog.Info("initializing lsp server")

		var initParams lsp.InitializeParams
		if err := json.Unmarshal(*req.Params, &initParams); err != nil {
			return nil, err
		}

		syncKind := lsp.TDSKFull
		return lsp.InitializeResult{
			Capabilities: lsp.ServerCapabilities{
				TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
					Kind: &syncKind,
				},
			},
		}, nil

	case "initialized":
		slog.Info("server initialized")
		return nil, nil

	case "shutdown":
		slog.Info("shutting down")

		if err := s.docService.CleanupShadowFiles(); err != nil {
			slog.Error("failed to remove shadow workspace", "error", err)
		}

		s.printDebugStats()

		return nil, nil

	case "exit":
		slog.Info("exiting")

		os.Exit(0)
		return nil, nil

	case "textDocument/didOpen":
		// Pages are expanded on open so diagnostics are shown initially
		var params lsp.DidOpenTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}

		s.publishDiagnostics(ctx, params.TextDocument.URI, params.TextDocument.Text)
		return nil, nil

	case "textDocument/didChange":
		var params lsp.DidChangeTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}

		// Full sync, so the last change carries the whole document
		if len(params.ContentChanges) > 0 {
			newContent := params.ContentChanges[len(params.ContentChanges)-1].Text
			s.publishDiagnostics(ctx, params.TextDocument.URI, newContent)
		}
		return nil, nil

	case "textDocument/didSave":
		var params lsp.DidSaveTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}

		// Refresh the expanded preview on save. Save notifications do not
		// carry text, so the file content is read back from disk.
		fsPath, err := s.docService.URIToPath(params.TextDocument.URI)
		if err != nil {
			return nil, err
		}
		content, err := os.ReadFile(fsPath)
		if err != nil {
			return nil, err
		}
		text := string(content)

		s.publishDiagnostics(ctx, params.TextDocument.URI, text)

		shadowURI, err := s.docService.TransformPreviewDoc(text, params.TextDocument.URI)
		if err != nil {
			// A broken page already produced a diagnostic; the stale
			// preview is left in place
			slog.Debug("preview not refreshed", "uri", params.TextDocument.URI, "error", err)
			return nil, nil
		}

		slog.Debug("preview refreshed", "shadow", shadowURI)
		return nil, nil

	case "textDocument/didClose":
		var params lsp.DidCloseTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}

		// Clear diagnostics for the closed document
		s.sendDiagnostics(ctx, lsp.PublishDiagnosticsParams{
			URI:         params.TextDocument.URI,
			Diagnostics: []lsp.Diagnostic{},
		})
		return nil, nil

	case "$/cancelRequest":
		var params struct {
			ID jsonrpc2.ID `json:"id"`
		}
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		s.cancelMap.Store(params.ID.String(), true)
		return nil, nil

	default:
		slog.Debug("ignoring unsupported method", "method", req.Method)
		return nil, nil
	}
}

func (s *Server) publishDiagnostics(ctx context.Context, uri lsp.DocumentURI, text string) {
	diagnostics := s.docService.Diagnose(text, uri)
	if diagnostics == nil {
		diagnostics = []lsp.Diagnostic{}
	}

	s.sendDiagnostics(ctx, lsp.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func (s *Server) sendDiagnostics(ctx context.Context, params lsp.PublishDiagnosticsParams) {
	if s.conn == nil {
		return
	}
	if err := s.conn.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		slog.Error("failed to publish diagnostics", "uri", params.URI, "error", err)
	}
}

func (s *Server) printDebugStats() {
	s.trackRequestCount.Range(func(key, value any) bool {
		slog.Debug("request count", "method", key, "count", value)
		return true
	})
}
