// Package chunk segments grouped lines into chunk blocks, resolves chunk
// headers and checks the chunk sequence for structural consistency.
package chunk

import (
	"fmt"

	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/lexer"
)

// Well-known chunk types.
const (
	TypeFiles       = "files"
	TypeDirectories = "directories"
	TypeLibraries   = "libraries"
	TypeTagmap      = "tagmap"
)

// Block is one raw chunk: its header tokens and the body lines up to the
// next header or end of input.
type Block struct {
	Type   string
	Header []lexer.Token
	Lines  [][]lexer.Token
}

// Range is an inclusive low-high interval declared by a chunk header.
type Range struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Overlaps reports whether r and o share at least one value.
func (r Range) Overlaps(o Range) bool {
	return r.Low <= o.High && o.Low <= r.High
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Low, r.High)
}

// Header is the decoded form of a "#CHUNK <type> [<low>-<high>] @<offset>" line.
type Header struct {
	Type   string
	Range  *Range
	Offset *int
	Pos    diag.Position
}

// Entry is a resolved chunk addressable by type. Entries aliases the body
// lines of the originating Block.
type Entry struct {
	Type    string          `json:"type"`
	Range   *Range          `json:"range,omitempty"`
	Offset  *int            `json:"offset,omitempty"`
	Entries [][]lexer.Token `json:"-"`
	Pos     diag.Position   `json:"position"`
}

// Map resolves every block header into an Entry, in block order.
func Map(blocks []Block, sink *diag.Sink) []Entry {
	out := make([]Entry, 0, len(blocks))
	for _, b := range blocks {
		h := ResolveHeader(b.Header, sink)
		out = append(out, Entry{
			Type:    h.Type,
			Range:   h.Range,
			Offset:  h.Offset,
			Entries: b.Lines,
			Pos:     h.Pos,
		})
	}
	return out
}

// Headers extracts the headers of resolved entries.
func Headers(entries []Entry) []Header {
	out := make([]Header, len(entries))
	for i, e := range entries {
		out[i] = Header{Type: e.Type, Range: e.Range, Offset: e.Offset, Pos: e.Pos}
	}
	return out
}

// Find returns every entry of the given type, in document order.
func Find(entries []Entry, typ string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
