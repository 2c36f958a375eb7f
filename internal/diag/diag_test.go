package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink(t *testing.T) {
	s := NewSink()
	s.Report(CodeMissingToken, Position{Line: 2, Column: 1}, "Missing tags in LIB")
	s.Report(CodeUnrecognizedToken, Position{Line: 3, Column: 7}, "Unrecognized token %q", "~")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(CodeUnrecognizedToken))
	assert.False(t, s.Has(CodeMissingBranch))
	assert.Equal(t, `Unrecognized token "~"`, s.ByCode(CodeUnrecognizedToken)[0].Message)

	all := s.All()
	all[0].Message = "changed"
	assert.Equal(t, "Missing tags in LIB", s.All()[0].Message, "All returns a copy")

	s.Clear()
	assert.Zero(t, s.Len())
}

func TestSink_EscapedPercent(t *testing.T) {
	s := NewSink()
	s.Report(CodeMissingToken, Position{}, "100%% literal")
	s.Report(CodeMissingToken, Position{}, "%d%% of %s", 40, "f1a7e")
	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "100% literal", all[0].Message)
	assert.Equal(t, "40% of f1a7e", all[1].Message)
}

func TestSink_Nil(t *testing.T) {
	var s *Sink
	s.Report(CodeMissingToken, Position{}, "dropped")
	assert.Zero(t, s.Len())
	assert.Nil(t, s.All())
	assert.False(t, s.Has(CodeMissingToken))
}

func TestSummary(t *testing.T) {
	got := Summary([]Diagnostic{
		{Message: "Missing branch fields: head", Position: Position{Line: 1, Column: 1}, Code: CodeMissingBranchFields},
	})
	assert.Equal(t, "1:1: Missing branch fields: head [MISSING_BRANCH_FIELDS]\n", got)
}
