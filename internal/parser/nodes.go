package parser

import (
	"strconv"
	"strings"

	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/lexer"
	"github.com/starford/havenfs/internal/models"
)

// metaFields are the attributes a META record may carry. Keys in the
// resulting metadata map are the attribute names as written.
var metaFields = []lexer.Kind{
	lexer.AttModified,
	lexer.AttCreated,
	lexer.AttUpdate,
	lexer.AttDeleted,
	lexer.AttRestored,
	lexer.AttMimetype,
}

// Nodes parses the lines of a files or directories chunk into set.
//
// FILE and DIR records add nodes; META records merge metadata into a node
// declared on an earlier line of any node chunk.
func (p *Parser) Nodes(chunkType string, lines [][]lexer.Token, set *NodeSet) {
	for _, line := range lines {
		switch line[0].Kind {
		case lexer.KwFile:
			p.file(line, set)
		case lexer.KwDir:
			p.dir(line, set)
		case lexer.KwMeta:
			p.meta(line, set)
		default:
			p.unexpected(line, chunkType)
		}
	}
}

// recordID returns the id that directly follows the record keyword.
func recordID(line []lexer.Token) (lexer.Token, bool) {
	tok, ok := lexer.TokenAt(line, 1)
	if !ok || !tok.Kind.IsValue() {
		return lexer.Token{}, false
	}
	return tok, true
}

type field struct {
	kind lexer.Kind
	name string
}

// required reads each field with ValueAfter and reports the missing ones in
// a single MISSING_TOKEN diagnostic.
func (p *Parser) required(line []lexer.Token, record string, fields ...field) (map[lexer.Kind]lexer.Token, bool) {
	values := make(map[lexer.Kind]lexer.Token, len(fields))
	var missing []string
	for _, f := range fields {
		v, ok := lexer.ValueAfter(line, f.kind)
		if !ok {
			missing = append(missing, f.name)
			continue
		}
		values[f.kind] = v
	}
	if len(missing) > 0 {
		p.sink.Report(diag.CodeMissingToken, line[0].Pos(),
			"Missing mandatory fields in %s: %s", record, strings.Join(missing, ", "))
		return nil, false
	}
	return values, true
}

func (p *Parser) file(line []lexer.Token, set *NodeSet) {
	id, ok := recordID(line)
	if !ok {
		p.sink.Report(diag.CodeMissingToken, line[0].Pos(), "Missing mandatory fields in FILE: id")
		return
	}
	values, ok := p.required(line, "FILE",
		field{lexer.AttParent, "parent"},
		field{lexer.AttName, "name"},
		field{lexer.AttSize, "size"},
	)
	if !ok || !p.wholeName(line, values[lexer.AttName], "FILE", id.Text) {
		return
	}

	sizeTok := values[lexer.AttSize]
	size, err := strconv.ParseInt(sizeTok.Text, 10, 64)
	if sizeTok.Kind != lexer.Number || err != nil {
		p.sink.Report(diag.CodeInvalidNumber, sizeTok.Pos(), "Invalid size %q in FILE %s", sizeTok.Text, id.Text)
		return
	}

	tags, _ := lexer.ListAfter(line, lexer.AttTags)
	libs, _ := lexer.ListAfter(line, lexer.AttLibs)

	node := models.Node{
		ID:     id.Text,
		Type:   models.NodeFile,
		Parent: values[lexer.AttParent].Text,
		Name:   values[lexer.AttName].Text,
		Size:   size,
		Tags:   texts(tags),
		Libs:   texts(libs),
	}
	if !p.add(set, node, id) {
		return
	}

	p.parentRef(id.Text, values[lexer.AttParent])
	for _, t := range tags {
		p.reference(id.Text, t, models.RefTag)
	}
	for _, l := range libs {
		p.reference(id.Text, l, models.RefLibrary)
	}
}

func (p *Parser) dir(line []lexer.Token, set *NodeSet) {
	id, ok := recordID(line)
	if !ok {
		p.sink.Report(diag.CodeMissingToken, line[0].Pos(), "Missing mandatory fields in DIR: id")
		return
	}
	values, ok := p.required(line, "DIR",
		field{lexer.AttParent, "parent"},
		field{lexer.AttName, "name"},
	)
	if !ok || !p.wholeName(line, values[lexer.AttName], "DIR", id.Text) {
		return
	}

	node := models.Node{
		ID:     id.Text,
		Type:   models.NodeDirectory,
		Parent: values[lexer.AttParent].Text,
		Name:   values[lexer.AttName].Text,
	}
	if p.add(set, node, id) {
		p.parentRef(id.Text, values[lexer.AttParent])
	}
}

func (p *Parser) meta(line []lexer.Token, set *NodeSet) {
	id, ok := recordID(line)
	if !ok {
		p.sink.Report(diag.CodeMissingToken, line[0].Pos(), "Missing mandatory fields in META: id")
		return
	}

	fields := make(map[string]string)
	for _, k := range metaFields {
		if v, ok := lexer.ValueAfter(line, k); ok {
			fields[k.String()] = v.Text
		}
	}
	if len(fields) == 0 {
		p.sink.Report(diag.CodeMissingToken, line[0].Pos(), "Missing metadata fields in META %s", id.Text)
		return
	}

	node, ok := set.Get(id.Text)
	if !ok {
		p.sink.Report(diag.CodeUnknownNode, id.Pos(), "META refers to undeclared node %q", id.Text)
		return
	}
	node.MergeMetadata(fields)
}

func (p *Parser) add(set *NodeSet, node models.Node, id lexer.Token) bool {
	if !set.Add(node) {
		p.sink.Report(diag.CodeDuplicateNode, id.Pos(), "Duplicate node id %q", id.Text)
		return false
	}
	return true
}

func (p *Parser) parentRef(from string, parent lexer.Token) {
	if parent.Kind == lexer.Root {
		return
	}
	p.reference(from, parent, models.RefParent)
}
