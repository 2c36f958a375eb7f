package lexer

// GroupLines partitions tokens into lines split on newline tokens.
// Whitespace is layout only and is dropped; empty groups (blank lines,
// trailing newline) are discarded.
func GroupLines(tokens []Token) [][]Token {
	var lines [][]Token
	var current []Token

	for _, tok := range tokens {
		switch tok.Kind {
		case Newline:
			if len(current) > 0 {
				lines = append(lines, current)
				current = nil
			}
		case Whitespace:
		default:
			current = append(current, tok)
		}
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}
	return lines
}

// Index returns the index of the first token of kind k in line, or -1.
func Index(line []Token, k Kind) int {
	for i, tok := range line {
		if tok.Kind == k {
			return i
		}
	}
	return -1
}

// TokenAt returns the token at index i. It is total: out-of-range indexes
// (including those derived from a failed Index) report false.
func TokenAt(line []Token, i int) (Token, bool) {
	if i < 0 || i >= len(line) {
		return Token{}, false
	}
	return line[i], true
}

// ValueAfter finds the first token of kind k and returns the token that
// follows its "=" operator, when that token is a literal value.
func ValueAfter(line []Token, k Kind) (Token, bool) {
	i := Index(line, k)
	if i < 0 {
		return Token{}, false
	}
	if op, ok := TokenAt(line, i+1); !ok || op.Kind != Operator {
		return Token{}, false
	}
	v, ok := TokenAt(line, i+2)
	if !ok || !v.Kind.IsValue() {
		return Token{}, false
	}
	return v, true
}

// ListAfter returns the comma-separated values following the first token of
// kind k and its "=" operator, stopping at the first token that does not
// continue the list.
func ListAfter(line []Token, k Kind) ([]Token, bool) {
	i := Index(line, k)
	if i < 0 {
		return nil, false
	}
	if op, ok := TokenAt(line, i+1); !ok || op.Kind != Operator {
		return nil, true
	}
	return ListFrom(line, i+2), true
}

// ListFrom collects comma-separated values starting at index start.
func ListFrom(line []Token, start int) []Token {
	var out []Token
	for i := start; i < len(line); i++ {
		tok := line[i]
		if tok.Kind == Comma {
			continue
		}
		if !tok.Kind.IsValue() {
			break
		}
		out = append(out, tok)
		if next, ok := TokenAt(line, i+1); !ok || next.Kind != Comma {
			break
		}
	}
	return out
}
