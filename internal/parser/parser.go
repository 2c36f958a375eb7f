// Package parser turns the record lines of resolved chunks into domain
// values: nodes, library associations, tag entries and the branch pointer.
//
// Parsers never fail. Every malformed record is reported to the caller's
// diagnostic sink and skipped; well-formed records around it are kept.
package parser

import (
	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/lexer"
	"github.com/starford/havenfs/internal/models"
)

// Parser holds the state shared by the record parsers of one document run:
// the diagnostic sink and the id references collected for the post-parse
// cross-reference check.
type Parser struct {
	sink *diag.Sink
	refs []models.Reference
}

// New creates a Parser reporting to sink. A nil sink discards diagnostics.
func New(sink *diag.Sink) *Parser {
	return &Parser{sink: sink}
}

// References returns the id references recorded so far, in record order.
func (p *Parser) References() []models.Reference {
	out := make([]models.Reference, len(p.refs))
	copy(out, p.refs)
	return out
}

func (p *Parser) reference(from string, to lexer.Token, typ models.ReferenceType) {
	p.refs = append(p.refs, models.Reference{From: from, To: to.Text, Type: typ, Position: to.Pos()})
}

// unexpected reports a record whose keyword does not belong in the chunk.
func (p *Parser) unexpected(line []lexer.Token, chunkType string) {
	first := line[0]
	p.sink.Report(diag.CodeUnexpectedRecord, first.Pos(),
		"Unexpected %s record in %s chunk", first.Text, chunkType)
}

// isWord reports whether tok can stand for a name: any literal value, or an
// attribute keyword used as plain text (a library called "name").
func isWord(tok lexer.Token) bool {
	return tok.Kind.IsValue() || tok.Kind.IsAttribute()
}

// wholeName reports whether name stands alone on its line. A name that runs
// straight into the next token, as "a" does in "name=a:b", is only a fragment
// of what was written; it is reported and the record is dropped.
func (p *Parser) wholeName(line []lexer.Token, name lexer.Token, record, id string) bool {
	for _, tok := range line {
		if tok.Line == name.Line && tok.StartColumn == name.EndColumn {
			p.sink.Report(diag.CodeInvalidName, name.Pos(),
				"Malformed name %q in %s %s: unexpected %q", name.Text, record, id, tok.Text)
			return false
		}
	}
	return true
}

func texts(tokens []lexer.Token) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

// NodeSet is an insertion-ordered collection of nodes indexed by id.
type NodeSet struct {
	nodes []models.Node
	byID  map[string]int
}

// NewNodeSet returns an empty set.
func NewNodeSet() *NodeSet {
	return &NodeSet{byID: make(map[string]int)}
}

// Add appends n unless a node with the same id is already present.
func (s *NodeSet) Add(n models.Node) bool {
	if _, dup := s.byID[n.ID]; dup {
		return false
	}
	s.byID[n.ID] = len(s.nodes)
	s.nodes = append(s.nodes, n)
	return true
}

// Get returns a pointer to the stored node so metadata can be merged in place.
func (s *NodeSet) Get(id string) (*models.Node, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.nodes[i], true
}

// Has reports whether id is present.
func (s *NodeSet) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of nodes.
func (s *NodeSet) Len() int { return len(s.nodes) }

// Nodes returns the nodes in insertion order.
func (s *NodeSet) Nodes() []models.Node {
	out := make([]models.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}
