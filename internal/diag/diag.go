// Package diag collects position-annotated parse diagnostics.
//
// Every stage of the Haven FS pipeline reports defects into a Sink owned by
// the caller instead of returning errors, so one malformed line never stops
// the rest of the document from being parsed.
package diag

import (
	"fmt"
	"strings"
)

// Code identifies a class of diagnostic. Codes are stable strings.
type Code string

const (
	CodeUnrecognizedToken   Code = "UNRECOGNIZED_TOKEN"
	CodeMissingToken        Code = "MISSING_TOKEN"
	CodeMissingBranchFields Code = "MISSING_BRANCH_FIELDS"
	CodeMissingBranch       Code = "MISSING_BRANCH"
	CodeEmptyChunks         Code = "EMPTY_CHUNKS"

	CodeInvalidChunkHeader Code = "INVALID_CHUNK_HEADER"
	CodeDuplicateChunk     Code = "DUPLICATE_CHUNK"
	CodeOverlappingRange   Code = "OVERLAPPING_RANGE"
	CodeInvalidRange       Code = "INVALID_RANGE"
	CodeDuplicateOffset    Code = "DUPLICATE_OFFSET"
	CodeOrphanLine         Code = "ORPHAN_LINE"
	CodeUnknownChunk       Code = "UNKNOWN_CHUNK"
	CodeUnexpectedRecord   Code = "UNEXPECTED_RECORD"
	CodeDuplicateNode      Code = "DUPLICATE_NODE"
	CodeUnknownNode        Code = "UNKNOWN_NODE"
	CodeInvalidNumber      Code = "INVALID_NUMBER"
	CodeInvalidName        Code = "INVALID_NAME"
	CodeDanglingReference  Code = "DANGLING_REFERENCE"
)

// Position is a 1-based line/column location in the source document.
// The zero Position means "no location".
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Diagnostic is a single non-fatal parse defect.
type Diagnostic struct {
	Message  string   `json:"message"`
	Position Position `json:"position"`
	Code     Code     `json:"code"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s [%s]", d.Position, d.Message, d.Code)
}

// Sink is an append-only diagnostics collector.
//
// A Sink is created empty, appended to during one parse run and cleared by
// the caller between independent runs. It is not safe for concurrent use.
type Sink struct {
	items []Diagnostic
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Report appends a diagnostic whose message is format expanded with args,
// as by fmt.Sprintf. A nil Sink discards it.
func (s *Sink) Report(code Code, pos Position, format string, args ...any) {
	if s == nil {
		return
	}
	s.items = append(s.items, Diagnostic{Message: fmt.Sprintf(format, args...), Position: pos, Code: code})
}

// All returns a copy of the collected diagnostics in report order.
func (s *Sink) All() []Diagnostic {
	if s == nil {
		return nil
	}
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of collected diagnostics.
func (s *Sink) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Clear drops every collected diagnostic.
func (s *Sink) Clear() {
	if s == nil {
		return
	}
	s.items = s.items[:0]
}

// Has reports whether at least one diagnostic with code was collected.
func (s *Sink) Has(code Code) bool {
	return len(s.ByCode(code)) > 0
}

// ByCode returns the diagnostics with the given code.
func (s *Sink) ByCode(code Code) []Diagnostic {
	if s == nil {
		return nil
	}
	var out []Diagnostic
	for _, d := range s.items {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Summary renders the diagnostics one per line, suitable for CLI output.
func Summary(ds []Diagnostic) string {
	var b strings.Builder
	for _, d := range ds {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.String()
}
