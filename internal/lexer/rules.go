package lexer

import "regexp"

// rule maps a pattern anchored at the current position to a token kind.
// When the pattern has a capturing group, the token text is the first group
// and the rest of the match is only lookahead context.
type rule struct {
	kind Kind
	re   *regexp.Regexp
}

// nameChar is any rune that can continue a name: everything except layout,
// control characters and the structural = , : # @.
const nameChar = `[^\x00-\x20\x7f=,:#@]`

// valueEnd is the lookahead that terminates a literal value or keyword:
// anything that cannot continue a name, or end of input.
const valueEnd = `(?:[\x00-\x20\x7f=,:#@]|$)`

func keyword(kind Kind, word string) rule {
	return rule{kind, regexp.MustCompile(`^(` + word + `)` + valueEnd)}
}

func attribute(kind Kind, word string) rule {
	return rule{kind, regexp.MustCompile(`^(` + word + `)=`)}
}

func value(kind Kind, pattern string) rule {
	return rule{kind, regexp.MustCompile(`^(` + pattern + `)` + valueEnd)}
}

// rules are tried in order; the first match wins.
var rules = []rule{
	{Newline, regexp.MustCompile(`^\r?\n`)},
	{Whitespace, regexp.MustCompile(`^[ \t]+`)},

	{HexColor, regexp.MustCompile(`^(#[0-9A-Fa-f]{6}|#[0-9A-Fa-f]{3})(?:[^A-Za-z0-9_]|$)`)},

	{Hash, regexp.MustCompile(`^#`)},
	{At, regexp.MustCompile(`^@`)},
	{Line, regexp.MustCompile(`^-`)},
	{Operator, regexp.MustCompile(`^=`)},
	{Colon, regexp.MustCompile(`^:`)},
	{Comma, regexp.MustCompile(`^,`)},

	keyword(KwBranch, "BRANCH"),
	keyword(KwChunk, "CHUNK"),
	keyword(KwFile, "FILE"),
	keyword(KwMeta, "META"),
	keyword(KwLib, "LIB"),
	keyword(KwTag, "TAG"),
	keyword(KwDir, "DIR"),
	keyword(KwRef, "REF"),
	keyword(KwHist, "HIST"),
	attribute(KwFR, "FR"),

	attribute(AttBase, "base"),
	attribute(AttHead, "head"),
	attribute(AttParent, "parent"),
	attribute(AttName, "name"),
	attribute(AttSize, "size"),
	attribute(AttTags, "tags"),
	attribute(AttLibs, "libs"),
	attribute(AttModified, "modified"),
	attribute(AttCreated, "created"),
	attribute(AttUpdate, "update"),
	attribute(AttDeleted, "deleted"),
	attribute(AttRestored, "restored"),
	attribute(AttMimetype, "mimetype"),
	attribute(AttTo, "to"),
	attribute(AttType, "type"),
	attribute(AttContext, "context"),
	attribute(AttUser, "user"),
	attribute(AttAction, "action"),
	attribute(AttHash, "hash"),

	value(Timestamp, `[0-9]{8}T[0-9]{4,6}`),
	value(Range, `[0-9]+-[0-9]+`),
	value(MimeType, `[a-z]+/[a-z0-9.+\-]+`),
	value(Root, `root`),
	value(Identifier, `[0-9]+[a-z][a-z0-9]*|[a-z]+[0-9][a-z0-9]*`),
	value(Number, `[0-9]+`),
	{String, regexp.MustCompile(`^` + nameChar + `+`)},
}
