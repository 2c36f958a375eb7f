package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/starford/havenfs/internal/diag"
)

func TestConvert(t *testing.T) {
	lines := []string{"#CHUNK files @0", "FILE f1a7e parent=root name=ü.png size=x1"}

	tests := []struct {
		name      string
		pos       diag.Position
		wantStart protocol.Position
		wantEnd   protocol.Position
	}{
		{name: "line start", pos: diag.Position{Line: 2, Column: 1}, wantStart: protocol.Position{Line: 1, Character: 0}, wantEnd: protocol.Position{Line: 1, Character: 4}},
		{name: "mid line", pos: diag.Position{Line: 2, Column: 6}, wantStart: protocol.Position{Line: 1, Character: 5}, wantEnd: protocol.Position{Line: 1, Character: 10}},
		{name: "after non-ascii", pos: diag.Position{Line: 2, Column: 40}, wantStart: protocol.Position{Line: 1, Character: 39}, wantEnd: protocol.Position{Line: 1, Character: 41}},
		{name: "past end", pos: diag.Position{Line: 9, Column: 3}, wantStart: protocol.Position{Line: 8, Character: 0}, wantEnd: protocol.Position{Line: 8, Character: 0}},
		{name: "no position", pos: diag.Position{}, wantStart: protocol.Position{Line: 0, Character: 0}, wantEnd: protocol.Position{Line: 0, Character: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convert(diag.Diagnostic{Message: "m", Position: tt.pos, Code: diag.CodeMissingToken}, lines)
			assert.Equal(t, tt.wantStart, got.Range.Start)
			assert.Equal(t, tt.wantEnd, got.Range.End)
			assert.Equal(t, "m", got.Message)
			require.NotNil(t, got.Severity)
			assert.Equal(t, protocol.DiagnosticSeverityError, *got.Severity)
		})
	}
}

func TestDiagnostics(t *testing.T) {
	ds := Diagnostics("#CHUNK files @0\nFILE f1a7e parent=9zzz9 name=a size=1\n")
	require.Len(t, ds, 1)
	assert.Equal(t, "DANGLING_REFERENCE", ds[0].Code.Value)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *ds[0].Severity)
	assert.Equal(t, protocol.UInteger(1), ds[0].Range.Start.Line)

	assert.Empty(t, Diagnostics("#CHUNK directories @0\nDIR d0001 parent=root name=docs\n"))
}

type notification struct {
	method string
	params protocol.PublishDiagnosticsParams
}

func recorder(t *testing.T) (*glsp.Context, *[]notification) {
	t.Helper()
	var got []notification
	ctx := &glsp.Context{Notify: func(method string, params any) {
		p, ok := params.(protocol.PublishDiagnosticsParams)
		require.True(t, ok)
		got = append(got, notification{method: method, params: p})
	}}
	return ctx, &got
}

func TestLifecycle(t *testing.T) {
	ls := NewServer("test", -1)
	ctx, got := recorder(t)
	uri := protocol.DocumentUri("file:///tmp/tree.havenfs")

	require.NoError(t, ls.didOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "#CHUNK tagmap @0\nTAG b400 logo\n"},
	}))
	require.Len(t, *got, 1)
	assert.Equal(t, protocol.ServerTextDocumentPublishDiagnostics, (*got)[0].method)
	assert.Len(t, (*got)[0].params.Diagnostics, 1)

	require.NoError(t, ls.didChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "#CHUNK tagmap @0\n"}},
	}))
	require.Len(t, *got, 2)
	assert.Empty(t, (*got)[1].params.Diagnostics)

	require.NoError(t, ls.didSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	require.Len(t, *got, 3)

	require.NoError(t, ls.didClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	require.Len(t, *got, 4)
	assert.NotNil(t, (*got)[3].params.Diagnostics)
	assert.Empty(t, (*got)[3].params.Diagnostics)
	assert.Empty(t, ls.docs)
}
