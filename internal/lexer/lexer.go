// Package lexer turns Haven FS description text into tokens and line groups.
package lexer

import (
	"unicode/utf8"

	"github.com/starford/havenfs/internal/diag"
)

// Tokenize converts text into an ordered token sequence.
//
// At each position the rule table is tried in order and the first match
// wins. When nothing matches, an UNRECOGNIZED_TOKEN diagnostic is reported
// and one rune is skipped, so tokenizing always terminates.
func Tokenize(text string, sink *diag.Sink) []Token {
	var tokens []Token
	line, col := 1, 1
	rest := text

	for len(rest) > 0 {
		kind, lexeme, ok := match(rest)
		if !ok {
			r, size := utf8.DecodeRuneInString(rest)
			sink.Report(diag.CodeUnrecognizedToken, diag.Position{Line: line, Column: col},
				"Unrecognized token %q", r)
			rest = rest[size:]
			col++
			continue
		}

		width := utf8.RuneCountInString(lexeme)
		tokens = append(tokens, Token{
			Kind:        kind,
			Text:        lexeme,
			Line:        line,
			StartColumn: col,
			EndColumn:   col + width,
		})
		rest = rest[len(lexeme):]

		if kind == Newline {
			line++
			col = 1
		} else {
			col += width
		}
	}
	return tokens
}

func match(s string) (Kind, string, bool) {
	for _, r := range rules {
		m := r.re.FindStringSubmatchIndex(s)
		if m == nil {
			continue
		}
		lexeme := s[m[0]:m[1]]
		if len(m) >= 4 && m[2] >= 0 {
			lexeme = s[m[2]:m[3]]
		}
		if lexeme == "" {
			continue
		}
		return r.kind, lexeme, true
	}
	return Invalid, "", false
}
