package parser

import (
	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/lexer"
	"github.com/starford/havenfs/internal/models"
)

// Tagmap parses "TAG <id> <name>[:<#color>] FR=<file>[,<file>...]" lines
// into tags. The last record for a tag id wins.
func (p *Parser) Tagmap(lines [][]lexer.Token, tags models.Tagmap) {
	for _, line := range lines {
		if line[0].Kind != lexer.KwTag {
			p.unexpected(line, "tagmap")
			continue
		}
		p.tag(line, tags)
	}
}

func (p *Parser) tag(line []lexer.Token, tags models.Tagmap) {
	pos := line[0].Pos()
	idIdx := lexer.Index(line, lexer.Identifier)
	frIdx := lexer.Index(line, lexer.KwFR)

	id, hasID := lexer.TokenAt(line, idIdx)
	name, hasName := lexer.TokenAt(line, idIdx+1)
	if !hasID || !hasName || !isWord(name) || frIdx < 0 {
		p.sink.Report(diag.CodeMissingToken, pos, "Missing mandatory fields in TAG")
		return
	}

	if prev, ok := lexer.TokenAt(line, idIdx-1); ok && prev.Kind == lexer.Operator {
		p.sink.Report(diag.CodeMissingToken, pos, "Missing mandatory fields in TAG")
		return
	}

	refs, _ := lexer.ListAfter(line, lexer.KwFR)
	if len(refs) == 0 {
		p.sink.Report(diag.CodeMissingToken, line[frIdx].Pos(), "Missing file reference in TAG")
		return
	}

	color := models.DefaultTagColor
	if c, ok := lexer.TokenAt(line, lexer.Index(line, lexer.HexColor)); ok {
		color = c.Text
	}

	for _, r := range refs {
		p.reference(id.Text, r, models.RefFile)
	}
	tags[id.Text] = models.TagEntry{
		Tag:      models.Tag{Name: name.Text, Color: color},
		FileRefs: texts(refs),
	}
}
