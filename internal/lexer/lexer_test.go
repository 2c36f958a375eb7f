package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/havenfs/internal/diag"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind == Whitespace {
			continue
		}
		out = append(out, t.Kind)
	}
	return out
}

func texts(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Text)
	}
	return out
}

func TestTokenize_Records(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Kind
	}{
		{
			name:  "branch header",
			input: "#BRANCH base=main parent=b0011 head=b0012",
			want: []Kind{Hash, KwBranch,
				AttBase, Operator, String,
				AttParent, Operator, Identifier,
				AttHead, Operator, Identifier},
		},
		{
			name:  "chunk header with range",
			input: "#CHUNK files 0-999 @0",
			want:  []Kind{Hash, KwChunk, String, Range, At, Number},
		},
		{
			name:  "chunk header without range",
			input: "#CHUNK libraries @3000",
			want:  []Kind{Hash, KwChunk, String, At, Number},
		},
		{
			name:  "file record",
			input: "FILE f1a7e parent=92e1f name=logo.png size=20320 tags=b400,b401",
			want: []Kind{KwFile, Identifier,
				AttParent, Operator, Identifier,
				AttName, Operator, String,
				AttSize, Operator, Number,
				AttTags, Operator, Identifier, Comma, Identifier},
		},
		{
			name:  "meta record",
			input: "META f1a7e modified=20240812T1419 created=1723472370 mimetype=image/png",
			want: []Kind{KwMeta, Identifier,
				AttModified, Operator, Timestamp,
				AttCreated, Operator, Number,
				AttMimetype, Operator, MimeType},
		},
		{
			name:  "dir record",
			input: "DIR 92e1f parent=root name=images",
			want:  []Kind{KwDir, Identifier, AttParent, Operator, Root, AttName, Operator, String},
		},
		{
			name:  "lib record",
			input: "LIB a300 info=b400,b401",
			want:  []Kind{KwLib, Identifier, String, Operator, Identifier, Comma, Identifier},
		},
		{
			name:  "tag record with color",
			input: "TAG b400 branding:#8E44AD FR=f1a7e",
			want:  []Kind{KwTag, Identifier, String, Colon, HexColor, KwFR, Operator, Identifier},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := diag.NewSink()
			got := Tokenize(tt.input, sink)
			assert.Equal(t, tt.want, kinds(got))
			assert.Zero(t, sink.Len(), "diagnostics: %v", sink.All())
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	sink := diag.NewSink()
	tokens := Tokenize("FILE f1a7e\nDIR 92e1f", sink)
	require.Len(t, tokens, 7)

	assert.Equal(t, Token{Kind: KwFile, Text: "FILE", Line: 1, StartColumn: 1, EndColumn: 5}, tokens[0])
	assert.Equal(t, Token{Kind: Identifier, Text: "f1a7e", Line: 1, StartColumn: 6, EndColumn: 11}, tokens[2])
	assert.Equal(t, Newline, tokens[3].Kind)
	assert.Equal(t, Token{Kind: KwDir, Text: "DIR", Line: 2, StartColumn: 1, EndColumn: 4}, tokens[4])
	assert.Equal(t, Token{Kind: Identifier, Text: "92e1f", Line: 2, StartColumn: 5, EndColumn: 10}, tokens[6])
}

func TestTokenize_AttributeNeedsOperator(t *testing.T) {
	sink := diag.NewSink()
	tokens := Tokenize("name type=x", sink)
	assert.Equal(t, []Kind{String, AttType, Operator, String}, kinds(tokens))
	assert.Equal(t, "type", tokens[2].Text)
}

func TestTokenize_ValueBoundaries(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{"20320", Number},
		{"b400", Identifier},
		{"92e1f", Identifier},
		{"cafe", String},
		{"a300.png", String},
		{"t4000", Identifier},
		{"logo2", Identifier},
		{"1abc.png", String},
		{"screenshot1.png", String},
		{"20240812T1419", Timestamp},
		{"image/png", MimeType},
		{"root", Root},
		{"rootdir", String},
		{"0-999", Range},
		{".github", String},
		{"café", String},
		{"photo_2024-07.jpeg", String},
		{"META-INF", String},
		{"FILE.txt", String},
		{"TAG-cloud.svg", String},
		{"LIBS", String},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := Tokenize(tt.input, diag.NewSink())
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.kind, tokens[0].Kind)
			assert.Equal(t, tt.input, tokens[0].Text)
		})
	}
}

func TestTokenize_UnrecognizedSkipsOneRune(t *testing.T) {
	sink := diag.NewSink()
	tokens := Tokenize("FILE \x01\x02 f1a7e", sink)

	assert.Equal(t, []Kind{KwFile, Identifier}, kinds(tokens))
	diags := sink.ByCode(diag.CodeUnrecognizedToken)
	require.Len(t, diags, 2)
	assert.Equal(t, diag.Position{Line: 1, Column: 6}, diags[0].Position)
	assert.Equal(t, diag.Position{Line: 1, Column: 7}, diags[1].Position)
	assert.Equal(t, 9, tokens[len(tokens)-1].StartColumn)
}

func TestTokenize_KeywordPrefixedNames(t *testing.T) {
	tests := []struct {
		input string
		name  string
	}{
		{"DIR d1a parent=root name=META-INF", "META-INF"},
		{"DIR d1a parent=root name=FILE.txt", "FILE.txt"},
		{"DIR d1a parent=root name=TAG-cloud.svg", "TAG-cloud.svg"},
		{"DIR d1a parent=root name=.github", ".github"},
		{"DIR d1a parent=root name=café", "café"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := diag.NewSink()
			tokens := Tokenize(tt.input, sink)

			assert.Zero(t, sink.Len(), "diagnostics: %v", sink.All())
			assert.Equal(t, []Kind{KwDir, Identifier, AttParent, Operator, Root, AttName, Operator, String}, kinds(tokens))
			last := tokens[len(tokens)-1]
			assert.Equal(t, tt.name, last.Text)
			assert.Equal(t, len([]rune(tt.input))+1, last.EndColumn)
		})
	}
}

func TestTokenize_StructuralCharactersSplitNames(t *testing.T) {
	tokens := Tokenize("name=a:b@c", diag.NewSink())
	assert.Equal(t, []Kind{AttName, Operator, String, Colon, String, At, String}, kinds(tokens))
}

func TestTokenize_CRLF(t *testing.T) {
	tokens := Tokenize("LIB a300 info=b400\r\nLIB a301 docs=b401\r\n", diag.NewSink())
	lines := GroupLines(tokens)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[1][0].Line)
}

func TestGroupLines(t *testing.T) {
	input := "#CHUNK tagmap @4000\n\n\nTAG b400 branding FR=f1a7e\n   \n"
	lines := GroupLines(Tokenize(input, diag.NewSink()))

	require.Len(t, lines, 2)
	assert.Equal(t, []string{"#", "CHUNK", "tagmap", "@", "4000"}, texts(lines[0]))
	assert.Equal(t, 4, lines[1][0].Line, "line numbers keep physical positions")
	for _, line := range lines {
		for _, tok := range line {
			assert.NotEqual(t, Whitespace, tok.Kind)
			assert.NotEqual(t, Newline, tok.Kind)
		}
	}
}

func TestGroupLines_Empty(t *testing.T) {
	assert.Empty(t, GroupLines(nil))
	assert.Empty(t, GroupLines(Tokenize("\n\n  \n", diag.NewSink())))
}

func TestTokenAt(t *testing.T) {
	lines := GroupLines(Tokenize("DIR 92e1f name=images", diag.NewSink()))
	require.Len(t, lines, 1)
	line := lines[0]

	tok, ok := TokenAt(line, 1)
	require.True(t, ok)
	assert.Equal(t, "92e1f", tok.Text)

	for _, i := range []int{-1, len(line), Index(line, AttParent)} {
		_, ok := TokenAt(line, i)
		assert.False(t, ok, "index %d", i)
	}

	v, ok := ValueAfter(line, AttName)
	require.True(t, ok)
	assert.Equal(t, "images", v.Text)
	_, ok = ValueAfter(line, AttSize)
	assert.False(t, ok)
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, KwFR.IsKeyword())
	assert.False(t, AttBase.IsKeyword())
	assert.True(t, AttHash.IsAttribute())
	assert.False(t, HexColor.IsAttribute())
	assert.True(t, Identifier.IsValue())
	assert.False(t, Operator.IsValue())
	assert.Equal(t, "identifier", Identifier.String())
}
