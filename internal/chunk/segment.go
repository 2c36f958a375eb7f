package chunk

import (
	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/lexer"
)

// IsHeader reports whether line starts with "#CHUNK".
func IsHeader(line []lexer.Token) bool {
	return startsWith(line, lexer.KwChunk)
}

// IsBranch reports whether line starts with "#BRANCH".
func IsBranch(line []lexer.Token) bool {
	return startsWith(line, lexer.KwBranch)
}

func startsWith(line []lexer.Token, kw lexer.Kind) bool {
	first, ok := lexer.TokenAt(line, 0)
	if !ok || first.Kind != lexer.Hash {
		return false
	}
	second, ok := lexer.TokenAt(line, 1)
	return ok && second.Kind == kw
}

// Segment partitions grouped lines into chunk blocks. Every line after a
// header, up to the next header, belongs to that header's block.
//
// Branch lines are document-level and never land in a block. Any other line
// before the first header is reported as ORPHAN_LINE.
func Segment(lines [][]lexer.Token, sink *diag.Sink) []Block {
	var blocks []Block
	current := -1

	for _, line := range lines {
		switch {
		case IsHeader(line):
			blocks = append(blocks, Block{Type: headerType(line), Header: line})
			current = len(blocks) - 1
		case IsBranch(line):
		case current < 0:
			sink.Report(diag.CodeOrphanLine, line[0].Pos(), "Line outside of any chunk")
		default:
			blocks[current].Lines = append(blocks[current].Lines, line)
		}
	}
	return blocks
}

func headerType(line []lexer.Token) string {
	if tok, ok := lexer.TokenAt(line, 2); ok && tok.Kind.IsValue() && tok.Kind != lexer.Range {
		return tok.Text
	}
	return ""
}
