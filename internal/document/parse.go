package document

import (
	"github.com/starford/havenfs/internal/chunk"
	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/models"
	"github.com/starford/havenfs/internal/parser"
)

// Result is the externally visible outcome of parsing one description.
type Result struct {
	Nodes       []models.Node     `json:"nodes"`
	Tags        models.Tagmap     `json:"tags"`
	Libraries   models.Libraries  `json:"libraries"`
	Branch      *models.Branch    `json:"branch"`
	Chunks      []chunk.Entry     `json:"chunks"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
}

// HasDiagnostics reports whether the run produced any diagnostic.
func (r *Result) HasDiagnostics() bool { return len(r.Diagnostics) > 0 }

// Parse runs the full pipeline over text. Nodes are returned in chunk then
// line order; library and tag indexes are merged by id.
//
// Result.Diagnostics holds only what this run reported, even if sink already
// carried earlier diagnostics. A nil sink is replaced by a fresh one.
func Parse(text string, sink *diag.Sink) Result {
	if sink == nil {
		sink = diag.NewSink()
	}
	before := sink.Len()

	doc := New(text, sink)
	doc.Run()

	p := parser.New(sink)
	nodes := parser.NewNodeSet()
	libs := models.Libraries{}
	tags := models.Tagmap{}

	for _, c := range doc.chunks {
		switch c.Type {
		case chunk.TypeFiles, chunk.TypeDirectories:
			p.Nodes(c.Type, c.Entries, nodes)
		case chunk.TypeLibraries:
			p.Libraries(c.Entries, libs)
		case chunk.TypeTagmap:
			p.Tagmap(c.Entries, tags)
		case "":
			// header without a type, already reported
		default:
			sink.Report(diag.CodeUnknownChunk, c.Pos, "Unknown chunk type %q", c.Type)
		}
	}

	checkReferences(p.References(), nodes, tags, libs, sink)

	chunks := doc.chunks
	if chunks == nil {
		chunks = []chunk.Entry{}
	}
	return Result{
		Nodes:       nodes.Nodes(),
		Tags:        tags,
		Libraries:   libs,
		Branch:      doc.branch,
		Chunks:      chunks,
		Diagnostics: sink.All()[before:],
	}
}

// checkReferences reports ids that resolve to nothing in the parsed result.
func checkReferences(refs []models.Reference, nodes *parser.NodeSet, tags models.Tagmap, libs models.Libraries, sink *diag.Sink) {
	for _, r := range refs {
		var found bool
		var what string
		switch r.Type {
		case models.RefParent:
			found, what = nodes.Has(r.To), "parent node"
		case models.RefFile:
			found, what = nodes.Has(r.To), "file"
		case models.RefTag:
			_, found = tags[r.To]
			what = "tag"
		case models.RefLibrary:
			_, found = libs[r.To]
			what = "library"
		}
		if !found {
			sink.Report(diag.CodeDanglingReference, r.Position, "%s references unknown %s %q", r.From, what, r.To)
		}
	}
}
