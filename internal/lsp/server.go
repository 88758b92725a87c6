package lsp

import (
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
)

const lsName = "lox-lsp"

// Server serves lox documents over stdio: compile diagnostics, semantic
// tokens, hovers and formatting.
type Server struct {
	store   *Store
	handler protocol.Handler
	server  *glspserver.Server
	log     commonlog.Logger
	version string
}

func NewServer(version string) *Server {
	s := &Server{
		store:   NewStore(),
		log:     commonlog.GetLogger("lox.lsp"),
		version: version,
	}
	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentSemanticTokensFull: s.textDocumentSemanticTokensFull,
		TextDocumentHover:              s.textDocumentHover,
		TextDocumentFormatting:         s.textDocumentFormatting,
	}
	s.server = glspserver.NewServer(&s.handler, lsName, false)
	return s
}

// Run serves on stdio until the client disconnects.
func (s *Server) Run() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.log.Info("initializing")

	caps := s.handler.CreateServerCapabilities()
	full := protocol.TextDocumentSyncKindFull
	caps.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &full,
		Save:      protocol.SaveOptions{IncludeText: &protocol.False},
	}
	caps.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: Legend(),
		Full:   true,
		Range:  false,
	}
	caps.HoverProvider = true
	caps.DocumentFormattingProvider = true

	return protocol.InitializeResult{
		Capabilities: caps,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	s.log.Infof("shutting down with %d open document(s)", s.store.Len())
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	s.store.Set(uri, params.TextDocument.Text, params.TextDocument.Version)
	return s.publishDiagnostics(ctx, uri, params.TextDocument.Text)
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	text, ok := extractFullText(params.ContentChanges[len(params.ContentChanges)-1])
	if !ok {
		return nil
	}

	uri := string(params.TextDocument.URI)
	if !s.store.Set(uri, text, params.TextDocument.Version) {
		return nil
	}
	return s.publishDiagnostics(ctx, uri, text)
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if doc, ok := s.store.Get(uri); ok {
		return s.publishDiagnostics(ctx, uri, doc.Text)
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	s.store.Delete(uri)
	return s.publishDiagnostics(ctx, uri, "")
}

func (s *Server) textDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	doc, ok := s.store.Get(string(params.TextDocument.URI))
	if !ok {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}
	return &protocol.SemanticTokens{Data: EncodeSemanticTokens(SemanticTokensForText(doc.Text))}, nil
}

func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, ok := s.store.Get(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	h, ok := HoverAt(doc.Text, params.Position)
	if !ok {
		return nil, nil
	}
	return h, nil
}

func (s *Server) textDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc, ok := s.store.Get(string(params.TextDocument.URI))
	if !ok {
		return []protocol.TextEdit{}, nil
	}
	return FormatEdits(doc.Text, params.Options), nil
}

func (s *Server) publishDiagnostics(ctx *glsp.Context, uri, text string) error {
	ds := Analyze(text)
	s.log.Debugf("%s: %d diagnostic(s)", displayName(uri), len(ds))
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(uri),
		Diagnostics: ToLspDiagnostics(text, ds),
	})
	return nil
}

func extractFullText(change any) (string, bool) {
	switch c := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return c.Text, true
	case *protocol.TextDocumentContentChangeEventWhole:
		return c.Text, true
	case protocol.TextDocumentContentChangeEvent:
		if c.Range == nil {
			return c.Text, true
		}
	case *protocol.TextDocumentContentChangeEvent:
		if c.Range == nil {
			return c.Text, true
		}
	}
	return "", false
}
