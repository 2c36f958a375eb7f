package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/lexer"
	"github.com/starford/havenfs/internal/models"
)

func linesOf(t *testing.T, text string) [][]lexer.Token {
	t.Helper()
	sink := diag.NewSink()
	lines := lexer.GroupLines(lexer.Tokenize(text, sink))
	require.Zero(t, sink.Len(), "tokenize diagnostics: %v", sink.All())
	return lines
}

func messages(sink *diag.Sink) []string {
	var out []string
	for _, d := range sink.All() {
		out = append(out, d.Message)
	}
	return out
}

func TestNodes_FileWithMeta(t *testing.T) {
	text := "FILE f1a7e parent=92e1f name=logo.png size=20320\n" +
		"META f1a7e modified=20240812T1419 created=1723472370 mimetype=image/png\n"

	sink := diag.NewSink()
	set := NewNodeSet()
	New(sink).Nodes("files", linesOf(t, text), set)

	require.Zero(t, sink.Len(), "diagnostics: %v", sink.All())
	require.Equal(t, 1, set.Len())

	node := set.Nodes()[0]
	assert.Equal(t, models.Node{
		ID:     "f1a7e",
		Type:   models.NodeFile,
		Parent: "92e1f",
		Name:   "logo.png",
		Size:   20320,
		Metadata: map[string]string{
			"modified": "20240812T1419",
			"created":  "1723472370",
			"mimetype": "image/png",
		},
	}, node)
	assert.Empty(t, node.Tags)
	assert.Empty(t, node.Libs)
}

func TestNodes_TagsAndLibs(t *testing.T) {
	sink := diag.NewSink()
	set := NewNodeSet()
	New(sink).Nodes("files", linesOf(t, "FILE f1a7e parent=root name=a.txt size=1 tags=b400,b401 libs=a300\n"), set)

	require.Zero(t, sink.Len())
	node, ok := set.Get("f1a7e")
	require.True(t, ok)
	assert.Equal(t, []string{"b400", "b401"}, node.Tags)
	assert.Equal(t, []string{"a300"}, node.Libs)
}

func TestNodes_PreservesOrder(t *testing.T) {
	text := "FILE f1a7e parent=root name=a size=1\n" +
		"FILE f1b88 parent=root name=b size=2\n" +
		"FILE f1c00 parent=root name=c size=3\n"

	set := NewNodeSet()
	New(diag.NewSink()).Nodes("files", linesOf(t, text), set)

	var ids []string
	for _, n := range set.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"f1a7e", "f1b88", "f1c00"}, ids)
}

func TestNodes_Directory(t *testing.T) {
	set := NewNodeSet()
	p := New(diag.NewSink())
	p.Nodes("directories", linesOf(t, "DIR 92e1f parent=root name=images\n"), set)

	node, ok := set.Get("92e1f")
	require.True(t, ok)
	assert.Equal(t, models.NodeDirectory, node.Type)
	assert.Equal(t, "images", node.Name)
	assert.Empty(t, p.References(), "root parent is not a reference")
}

func TestNodes_Defects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		nodes int
		code  diag.Code
		msg   string
	}{
		{
			name:  "missing size",
			input: "FILE f1a7e parent=root name=a.txt",
			code:  diag.CodeMissingToken,
			msg:   "Missing mandatory fields in FILE: size",
		},
		{
			name:  "missing id",
			input: "FILE parent=root name=a.txt size=3",
			code:  diag.CodeMissingToken,
			msg:   "Missing mandatory fields in FILE: id",
		},
		{
			name:  "dir missing name",
			input: "DIR 92e1f parent=root",
			code:  diag.CodeMissingToken,
			msg:   "Missing mandatory fields in DIR: name",
		},
		{
			name:  "size not a number",
			input: "FILE f1a7e parent=root name=a.txt size=big",
			code:  diag.CodeInvalidNumber,
			msg:   `Invalid size "big" in FILE f1a7e`,
		},
		{
			name:  "meta before file",
			input: "META f1a7e created=1\nFILE f1a7e parent=root name=a size=1",
			nodes: 1,
			code:  diag.CodeUnknownNode,
			msg:   `META refers to undeclared node "f1a7e"`,
		},
		{
			name:  "meta without fields",
			input: "FILE f1a7e parent=root name=a size=1\nMETA f1a7e",
			nodes: 1,
			code:  diag.CodeMissingToken,
			msg:   "Missing metadata fields in META f1a7e",
		},
		{
			name:  "duplicate id across kinds",
			input: "DIR 92e1f parent=root name=images\nFILE 92e1f parent=root name=a size=1",
			nodes: 1,
			code:  diag.CodeDuplicateNode,
			msg:   `Duplicate node id "92e1f"`,
		},
		{
			name:  "dir name cut by colon",
			input: "DIR 92e1f parent=root name=a:b",
			code:  diag.CodeInvalidName,
			msg:   `Malformed name "a" in DIR 92e1f: unexpected ":"`,
		},
		{
			name:  "file name cut by comma",
			input: "FILE f1a7e parent=root name=v1,2.png size=1",
			code:  diag.CodeInvalidName,
			msg:   `Malformed name "v1" in FILE f1a7e: unexpected ","`,
		},
		{
			name:  "foreign record",
			input: "LIB a300 info=b400",
			code:  diag.CodeUnexpectedRecord,
			msg:   "Unexpected LIB record in files chunk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := diag.NewSink()
			set := NewNodeSet()
			New(sink).Nodes("files", linesOf(t, tt.input), set)

			assert.Equal(t, tt.nodes, set.Len())
			require.Equal(t, 1, sink.Len(), "diagnostics: %v", sink.All())
			d := sink.All()[0]
			assert.Equal(t, tt.code, d.Code)
			assert.Equal(t, tt.msg, d.Message)
		})
	}
}

func TestNodes_NamesKeptWhole(t *testing.T) {
	text := "DIR d1a parent=root name=META-INF\n" +
		"DIR d1b parent=root name=.github\n" +
		"FILE f1a parent=d1a name=FILE.txt size=1\n" +
		"FILE f1b parent=d1b name=TAG-cloud.svg size=2\n" +
		"FILE f1c parent=root name=café.png size=3\n"
	sink := diag.NewSink()
	set := NewNodeSet()
	New(sink).Nodes("files", linesOf(t, text), set)

	require.Zero(t, sink.Len(), "diagnostics: %v", sink.All())
	var names []string
	for _, n := range set.Nodes() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"META-INF", ".github", "FILE.txt", "TAG-cloud.svg", "café.png"}, names)
}

func TestNodes_MalformedLineDoesNotStopChunk(t *testing.T) {
	text := "FILE f1a7e parent=root name=a\nFILE f1b88 parent=root name=b size=2\n"
	sink := diag.NewSink()
	set := NewNodeSet()
	New(sink).Nodes("files", linesOf(t, text), set)

	assert.Equal(t, 1, set.Len())
	assert.True(t, set.Has("f1b88"))
	d := sink.All()[0]
	assert.Equal(t, diag.Position{Line: 1, Column: 1}, d.Position)
}

func TestNodes_References(t *testing.T) {
	p := New(diag.NewSink())
	set := NewNodeSet()
	p.Nodes("files", linesOf(t, "FILE f1a7e parent=92e1f name=a size=1 tags=b400 libs=a300\n"), set)

	assert.Equal(t, []models.Reference{
		{From: "f1a7e", To: "92e1f", Type: models.RefParent, Position: diag.Position{Line: 1, Column: 19}},
		{From: "f1a7e", To: "b400", Type: models.RefTag, Position: diag.Position{Line: 1, Column: 44}},
		{From: "f1a7e", To: "a300", Type: models.RefLibrary, Position: diag.Position{Line: 1, Column: 54}},
	}, p.References())
}

func TestLibraries(t *testing.T) {
	sink := diag.NewSink()
	libs := models.Libraries{}
	New(sink).Libraries(linesOf(t, "LIB a300 name=b400,b401\n"), libs)

	require.Zero(t, sink.Len(), "diagnostics: %v", sink.All())
	assert.Equal(t, []models.Library{
		{ID: "a300", Name: "name", TagID: "b400"},
		{ID: "a300", Name: "name", TagID: "b401"},
	}, libs["a300"])
}

func TestLibraries_MergedByID(t *testing.T) {
	sink := diag.NewSink()
	libs := models.Libraries{}
	p := New(sink)
	p.Libraries(linesOf(t, "LIB a300 info=b400\n"), libs)
	p.Libraries(linesOf(t, "LIB a300 info=b401\nLIB a300 docs=b402\n"), libs)

	require.Zero(t, sink.Len(), "diagnostics: %v", sink.All())
	assert.Equal(t, []models.Library{
		{ID: "a300", Name: "info", TagID: "b400"},
		{ID: "a300", Name: "info", TagID: "b401"},
		{ID: "a300", Name: "docs", TagID: "b402"},
	}, libs["a300"])
}

func TestLibraries_PartialFailure(t *testing.T) {
	sink := diag.NewSink()
	libs := models.Libraries{}
	New(sink).Libraries(linesOf(t, "LIB a300 info=\nLIB a301 docs=b402\n"), libs)

	assert.Equal(t, []string{"Missing tags in LIB"}, messages(sink))
	assert.Len(t, libs, 1)
	assert.Equal(t, []models.Library{{ID: "a301", Name: "docs", TagID: "b402"}}, libs["a301"])
}

func TestLibraries_Defects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{name: "no id", input: "LIB info=b400", msg: "Missing mandatory fields in LIB"},
		{name: "no operator", input: "LIB a300 info b400", msg: "Missing mandatory fields in LIB"},
		{name: "no tags", input: "LIB a300 info=", msg: "Missing tags in LIB"},
		{name: "id after operator", input: "LIB info=a300,b400", msg: "Missing mandatory fields in LIB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := diag.NewSink()
			libs := models.Libraries{}
			New(sink).Libraries(linesOf(t, tt.input), libs)

			assert.Empty(t, libs)
			assert.Equal(t, []string{tt.msg}, messages(sink))
			assert.Equal(t, diag.CodeMissingToken, sink.All()[0].Code)
		})
	}
}

func TestTagmap(t *testing.T) {
	text := "TAG b400 branding:#8E44AD FR=f1a7e\n" +
		"TAG b402 favourite FR=f1b88\n" +
		"TAG b403 shared FR=f1a7e,f1b88\n"

	sink := diag.NewSink()
	tags := models.Tagmap{}
	New(sink).Tagmap(linesOf(t, text), tags)

	require.Zero(t, sink.Len(), "diagnostics: %v", sink.All())
	assert.Equal(t, models.TagEntry{
		Tag:      models.Tag{Name: "branding", Color: "#8E44AD"},
		FileRefs: []string{"f1a7e"},
	}, tags["b400"])
	assert.Equal(t, models.TagEntry{
		Tag:      models.Tag{Name: "favourite", Color: "#ffffff"},
		FileRefs: []string{"f1b88"},
	}, tags["b402"])
	assert.Equal(t, []string{"f1a7e", "f1b88"}, tags["b403"].FileRefs)
}

func TestTagmap_LastWriteWins(t *testing.T) {
	sink := diag.NewSink()
	tags := models.Tagmap{}
	New(sink).Tagmap(linesOf(t, "TAG b400 old FR=f1a7e\nTAG b400 new:#000 FR=f1b88\n"), tags)

	assert.Zero(t, sink.Len())
	assert.Equal(t, models.TagEntry{
		Tag:      models.Tag{Name: "new", Color: "#000"},
		FileRefs: []string{"f1b88"},
	}, tags["b400"])
}

func TestTagmap_Defects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{name: "no name", input: "TAG b400 FR=f1a7e", msg: "Missing mandatory fields in TAG"},
		{name: "no FR", input: "TAG b400 branding", msg: "Missing mandatory fields in TAG"},
		{name: "no id", input: "TAG branding FR=f1a7e", msg: "Missing mandatory fields in TAG"},
		{name: "empty refs", input: "TAG b400 branding FR=", msg: "Missing file reference in TAG"},
		{name: "FR without operator", input: "TAG b400 branding FR f1a7e", msg: "Missing mandatory fields in TAG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := diag.NewSink()
			tags := models.Tagmap{}
			New(sink).Tagmap(linesOf(t, tt.input), tags)

			assert.Empty(t, tags)
			assert.Equal(t, []string{tt.msg}, messages(sink))
		})
	}
}

func TestResolveBranch(t *testing.T) {
	sink := diag.NewSink()
	b := ResolveBranch(linesOf(t, "#BRANCH base=main parent=b0011 head=b0012\n"), sink)

	require.NotNil(t, b)
	assert.Zero(t, sink.Len())
	assert.Equal(t, "main", b.Base.Value)
	assert.Equal(t, "b0011", b.Parent.Value)
	assert.Equal(t, "b0012", b.Head.Value)
	assert.Equal(t, diag.Position{Line: 1, Column: 14}, b.Base.Position)
}

func TestResolveBranch_OrderIndependent(t *testing.T) {
	b := ResolveBranch(linesOf(t, "#BRANCH head=b0012 base=main parent=b0011\n"), diag.NewSink())
	require.NotNil(t, b)
	assert.Equal(t, "main", b.Base.Value)
	assert.Equal(t, "b0012", b.Head.Value)
}

func TestResolveBranch_MissingHead(t *testing.T) {
	sink := diag.NewSink()
	b := ResolveBranch(linesOf(t, "#BRANCH base=main parent=b0011\n"), sink)

	assert.Nil(t, b)
	diags := sink.ByCode(diag.CodeMissingBranchFields)
	require.Len(t, diags, 1)
	assert.Regexp(t, `Missing branch fields`, diags[0].Message)
}

func TestResolveBranch_EachMissingFieldReported(t *testing.T) {
	sink := diag.NewSink()
	b := ResolveBranch(linesOf(t, "#BRANCH\n"), sink)

	assert.Nil(t, b)
	assert.Equal(t, []string{
		"Missing branch fields: base",
		"Missing branch fields: parent",
		"Missing branch fields: head",
	}, messages(sink))
}

func TestResolveBranch_LastCompleteLineWins(t *testing.T) {
	text := "#BRANCH base=main parent=b0011 head=b0012\n" +
		"#CHUNK files @0\n" +
		"#BRANCH base=dev parent=b0012 head=b0013\n" +
		"#BRANCH base=broken\n"
	sink := diag.NewSink()
	b := ResolveBranch(linesOf(t, text), sink)

	require.NotNil(t, b)
	assert.Equal(t, "dev", b.Base.Value)
	assert.Equal(t, 2, sink.Len())
}

func TestResolveBranch_None(t *testing.T) {
	sink := diag.NewSink()
	assert.Nil(t, ResolveBranch(linesOf(t, "#CHUNK files @0\n"), sink))
	assert.Zero(t, sink.Len())
}
