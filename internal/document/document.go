// Package document wires the lexer, chunk and parser stages into one run
// over a Haven FS description and exposes the merged result.
package document

import (
	"github.com/starford/havenfs/internal/chunk"
	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/lexer"
	"github.com/starford/havenfs/internal/models"
	"github.com/starford/havenfs/internal/parser"
)

// Document holds the front-end state of one description: grouped lines,
// the resolved chunk map and the branch pointer.
type Document struct {
	text string
	sink *diag.Sink

	ran    bool
	lines  [][]lexer.Token
	chunks []chunk.Entry
	branch *models.Branch
}

// New creates a Document over text. Diagnostics go to sink.
func New(text string, sink *diag.Sink) *Document {
	return &Document{text: text, sink: sink}
}

// Run tokenizes, groups, segments and validates the text and resolves the
// branch. Calling Run again is a no-op.
func (d *Document) Run() {
	if d.ran {
		return
	}
	d.ran = true

	d.lines = lexer.GroupLines(lexer.Tokenize(d.text, d.sink))
	d.chunks = chunk.Map(chunk.Segment(d.lines, d.sink), d.sink)
	chunk.Validate(chunk.Headers(d.chunks), d.sink)
	d.branch = parser.ResolveBranch(d.lines, d.sink)
}

// Lines returns the grouped lines; nil before Run.
func (d *Document) Lines() [][]lexer.Token { return d.lines }

// ChunkMap returns the resolved chunks. Asking before Run, or for a document
// without chunks, reports EMPTY_CHUNKS.
func (d *Document) ChunkMap() []chunk.Entry {
	if len(d.chunks) == 0 {
		d.sink.Report(diag.CodeEmptyChunks, diag.Position{Line: 1, Column: 1}, "No chunks available")
		return nil
	}
	return d.chunks
}

// Branch returns the resolved branch, reporting MISSING_BRANCH when the
// document declares none.
func (d *Document) Branch() *models.Branch {
	if d.branch == nil {
		d.sink.Report(diag.CodeMissingBranch, diag.Position{Line: 1, Column: 1}, "No branch defined")
	}
	return d.branch
}
