package parser

import (
	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/lexer"
	"github.com/starford/havenfs/internal/models"
)

// Libraries parses "LIB <id> <name>=<tag>[,<tag>...]" lines into libs.
// Each tag yields one association. Lines sharing a library id, in one chunk
// or across chunks, merge their associations in record order.
func (p *Parser) Libraries(lines [][]lexer.Token, libs models.Libraries) {
	for _, line := range lines {
		if line[0].Kind != lexer.KwLib {
			p.unexpected(line, "libraries")
			continue
		}
		p.library(line, libs)
	}
}

func (p *Parser) library(line []lexer.Token, libs models.Libraries) {
	pos := line[0].Pos()
	idIdx := lexer.Index(line, lexer.Identifier)
	opIdx := lexer.Index(line, lexer.Operator)

	id, hasID := lexer.TokenAt(line, idIdx)
	name, hasName := lexer.TokenAt(line, opIdx-1)
	if !hasID || !hasName || opIdx-1 <= idIdx || !isWord(name) {
		p.sink.Report(diag.CodeMissingToken, pos, "Missing mandatory fields in LIB")
		return
	}

	tags := lexer.ListFrom(line, opIdx+1)
	if len(tags) == 0 {
		p.sink.Report(diag.CodeMissingToken, pos, "Missing tags in LIB")
		return
	}

	if prev, ok := lexer.TokenAt(line, idIdx-1); ok && prev.Kind == lexer.Operator {
		p.sink.Report(diag.CodeMissingToken, pos, "Missing mandatory fields in LIB")
		return
	}

	entries := make([]models.Library, 0, len(tags))
	for _, t := range tags {
		entries = append(entries, models.Library{ID: id.Text, Name: name.Text, TagID: t.Text})
		p.reference(id.Text, t, models.RefTag)
	}
	libs[id.Text] = append(libs[id.Text], entries...)
}
