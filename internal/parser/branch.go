package parser

import (
	"github.com/starford/havenfs/internal/chunk"
	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/lexer"
	"github.com/starford/havenfs/internal/models"
)

// ResolveBranch scans all lines of a document for "#BRANCH" lines and
// returns the branch pointer of the last complete one, or nil.
//
// Each missing base/parent/head field is reported separately as
// MISSING_BRANCH_FIELDS and the line is ignored.
func ResolveBranch(lines [][]lexer.Token, sink *diag.Sink) *models.Branch {
	var branch *models.Branch
	for _, line := range lines {
		if !chunk.IsBranch(line) {
			continue
		}
		if b, ok := branchFrom(line, sink); ok {
			branch = &b
		}
	}
	return branch
}

func branchFrom(line []lexer.Token, sink *diag.Sink) (models.Branch, bool) {
	var b models.Branch
	fields := []struct {
		kind lexer.Kind
		dst  *models.Ref
	}{
		{lexer.AttBase, &b.Base},
		{lexer.AttParent, &b.Parent},
		{lexer.AttHead, &b.Head},
	}

	complete := true
	for _, f := range fields {
		v, ok := lexer.ValueAfter(line, f.kind)
		if !ok {
			pos := line[0].Pos()
			if i := lexer.Index(line, f.kind); i >= 0 {
				pos = line[i].Pos()
			}
			sink.Report(diag.CodeMissingBranchFields, pos, "Missing branch fields: %s", f.kind)
			complete = false
			continue
		}
		*f.dst = models.Ref{Value: v.Text, Position: v.Pos()}
	}
	return b, complete
}
