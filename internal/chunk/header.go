package chunk

import (
	"strconv"
	"strings"

	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/lexer"
)

// ResolveHeader decodes a "#CHUNK <type> [<low>-<high>] @<offset>" token
// sequence. Range is nil when not declared. A missing type or offset is
// reported as INVALID_CHUNK_HEADER; the header is still returned.
func ResolveHeader(tokens []lexer.Token, sink *diag.Sink) Header {
	var h Header
	if len(tokens) > 0 {
		h.Pos = tokens[0].Pos()
	}

	i := 2
	if tok, ok := lexer.TokenAt(tokens, i); ok && tok.Kind.IsValue() && tok.Kind != lexer.Range {
		h.Type = tok.Text
		i++
	} else {
		sink.Report(diag.CodeInvalidChunkHeader, h.Pos, "Missing chunk type")
	}

	if r, n, ok := readRange(tokens, i, sink); ok {
		h.Range = &r
		i += n
	}

	at, hasAt := lexer.TokenAt(tokens, i)
	num, hasNum := lexer.TokenAt(tokens, i+1)
	if hasAt && at.Kind == lexer.At && hasNum && num.Kind == lexer.Number {
		if off, ok := atoi(num, sink); ok {
			h.Offset = &off
		}
		i += 2
	} else {
		sink.Report(diag.CodeInvalidChunkHeader, h.Pos, "Missing chunk offset")
	}

	if extra, ok := lexer.TokenAt(tokens, i); ok && h.Offset != nil {
		sink.Report(diag.CodeInvalidChunkHeader, extra.Pos(), "Unexpected token %q in chunk header", extra.Text)
	}
	return h
}

// readRange accepts either a single range token ("0-999") or the spaced
// form "0 - 999". It returns the number of tokens consumed.
func readRange(tokens []lexer.Token, i int, sink *diag.Sink) (Range, int, bool) {
	tok, ok := lexer.TokenAt(tokens, i)
	if !ok {
		return Range{}, 0, false
	}

	if tok.Kind == lexer.Range {
		lowText, highText, _ := strings.Cut(tok.Text, "-")
		low, errLow := strconv.Atoi(lowText)
		high, errHigh := strconv.Atoi(highText)
		if errLow != nil || errHigh != nil {
			sink.Report(diag.CodeInvalidNumber, tok.Pos(), "Invalid chunk range %q", tok.Text)
			return Range{}, 1, false
		}
		return Range{Low: low, High: high}, 1, true
	}

	dash, okDash := lexer.TokenAt(tokens, i+1)
	hi, okHi := lexer.TokenAt(tokens, i+2)
	if tok.Kind == lexer.Number && okDash && dash.Kind == lexer.Line && okHi && hi.Kind == lexer.Number {
		low, ok1 := atoi(tok, sink)
		high, ok2 := atoi(hi, sink)
		if !ok1 || !ok2 {
			return Range{}, 3, false
		}
		return Range{Low: low, High: high}, 3, true
	}
	return Range{}, 0, false
}

func atoi(tok lexer.Token, sink *diag.Sink) (int, bool) {
	n, err := strconv.Atoi(tok.Text)
	if err != nil {
		sink.Report(diag.CodeInvalidNumber, tok.Pos(), "Invalid number %q", tok.Text)
		return 0, false
	}
	return n, true
}
