// Package lsp serves parse diagnostics of Haven FS descriptions to editors
// over the Language Server Protocol.
package lsp

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf16"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/document"
)

const (
	lsName = "haven"
	source = "haven"
)

// Server holds the open documents of one editor session.
type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string

	mu   sync.Mutex
	docs map[protocol.DocumentUri]string
}

// NewServer creates a language server. verbosity configures commonlog; a
// negative value keeps logging off.
func NewServer(version string, verbosity int) *Server {
	if verbosity >= 0 {
		commonlog.Configure(verbosity, nil)
	}
	ls := &Server{
		version: version,
		docs:    make(map[protocol.DocumentUri]string),
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.didOpen,
		TextDocumentDidChange: ls.didChange,
		TextDocumentDidSave:   ls.didSave,
		TextDocumentDidClose:  ls.didClose,
	}
	ls.server = server.NewServer(&ls.handler, lsName, false)
	return ls
}

// RunStdio serves the protocol on stdin/stdout until the client exits.
func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKind(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (ls *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// Full sync: the last change carries the whole text.
	if whole, ok := params.ContentChanges[len(params.ContentChanges)-1].(protocol.TextDocumentContentChangeEventWhole); ok {
		ls.update(ctx, params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (ls *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.update(ctx, params.TextDocument.URI, *params.Text)
		return nil
	}
	ls.mu.Lock()
	text, ok := ls.docs[params.TextDocument.URI]
	ls.mu.Unlock()
	if ok {
		ls.publish(ctx, params.TextDocument.URI, text)
	}
	return nil
}

func (ls *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	delete(ls.docs, params.TextDocument.URI)
	ls.mu.Unlock()

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *Server) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	ls.mu.Lock()
	ls.docs[uri] = text
	ls.mu.Unlock()
	ls.publish(ctx, uri, text)
}

func (ls *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: Diagnostics(text),
	})
}

// Diagnostics parses text and converts every reported defect to its LSP form.
func Diagnostics(text string) []protocol.Diagnostic {
	res := document.Parse(text, diag.NewSink())
	lines := strings.Split(text, "\n")

	out := make([]protocol.Diagnostic, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		out = append(out, convert(d, lines))
	}
	return out
}

// convert maps a 1-based rune position onto a 0-based UTF-16 range that
// covers the word starting at that position.
func convert(d diag.Diagnostic, lines []string) protocol.Diagnostic {
	line := max(d.Position.Line-1, 0)
	var text []rune
	if line < len(lines) {
		text = []rune(strings.TrimSuffix(lines[line], "\r"))
	}

	start := min(max(d.Position.Column-1, 0), len(text))
	end := start
	for end < len(text) && !unicode.IsSpace(text[end]) {
		end++
	}
	if end == start && end < len(text) {
		end++
	}

	severity := severityOf(d.Code)
	src := source
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line), Character: utf16Len(text[:start])},
			End:   protocol.Position{Line: protocol.UInteger(line), Character: utf16Len(text[:end])},
		},
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: string(d.Code)},
		Source:   &src,
		Message:  d.Message,
	}
}

func severityOf(code diag.Code) protocol.DiagnosticSeverity {
	switch code {
	case diag.CodeDanglingReference, diag.CodeUnknownChunk, diag.CodeOrphanLine:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityError
	}
}

func utf16Len(rs []rune) protocol.UInteger {
	return protocol.UInteger(len(utf16.Encode(rs)))
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
