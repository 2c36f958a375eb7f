package lexer

import (
	"fmt"

	"github.com/starford/havenfs/internal/diag"
)

// Kind is the closed set of token kinds produced by the tokenizer.
type Kind int

const (
	Invalid Kind = iota

	Hash     // #
	At       // @
	Line     // -
	Operator // =
	Colon    // :
	Comma    // ,

	KwBranch
	KwChunk
	KwFile
	KwMeta
	KwLib
	KwTag
	KwFR
	KwDir
	KwRef
	KwHist

	AttBase
	AttHead
	AttParent
	AttName
	AttSize
	AttTags
	AttLibs
	AttModified
	AttCreated
	AttUpdate
	AttDeleted
	AttRestored
	AttMimetype
	AttTo
	AttType
	AttContext
	AttUser
	AttAction
	AttHash
	HexColor

	Identifier // f1a7e, 92e1f
	Root       // root
	String     // logo.png, main
	Number     // 20320
	Range      // 0-999
	Timestamp  // 20250701T1021
	MimeType   // image/png
	List       // reserved; id lists are lexed as Identifier/Comma sequences

	Newline
	Whitespace
)

var kindNames = [...]string{
	Invalid:     "invalid",
	Hash:        "#",
	At:          "@",
	Line:        "-",
	Operator:    "=",
	Colon:       ":",
	Comma:       ",",
	KwBranch:    "BRANCH",
	KwChunk:     "CHUNK",
	KwFile:      "FILE",
	KwMeta:      "META",
	KwLib:       "LIB",
	KwTag:       "TAG",
	KwFR:        "FR",
	KwDir:       "DIR",
	KwRef:       "REF",
	KwHist:      "HIST",
	AttBase:     "base",
	AttHead:     "head",
	AttParent:   "parent",
	AttName:     "name",
	AttSize:     "size",
	AttTags:     "tags",
	AttLibs:     "libs",
	AttModified: "modified",
	AttCreated:  "created",
	AttUpdate:   "update",
	AttDeleted:  "deleted",
	AttRestored: "restored",
	AttMimetype: "mimetype",
	AttTo:       "to",
	AttType:     "type",
	AttContext:  "context",
	AttUser:     "user",
	AttAction:   "action",
	AttHash:     "hash",
	HexColor:    "hexColor",
	Identifier:  "identifier",
	Root:        "root",
	String:      "string",
	Number:      "number",
	Range:       "range",
	Timestamp:   "timestamp",
	MimeType:    "mimeType",
	List:        "list",
	Newline:     "newline",
	Whitespace:  "whitespace",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether k is a record keyword (FILE, LIB, ...).
func (k Kind) IsKeyword() bool {
	return k >= KwBranch && k <= KwHist
}

// IsAttribute reports whether k is an attribute keyword (base=, name=, ...).
func (k Kind) IsAttribute() bool {
	return k >= AttBase && k <= AttHash
}

// IsValue reports whether k is a literal that can stand as an attribute value.
func (k Kind) IsValue() bool {
	return k >= Identifier && k <= List
}

// Token is one lexeme with its source span. Columns are 1-based and EndColumn
// is exclusive.
type Token struct {
	Kind        Kind
	Text        string
	Line        int
	StartColumn int
	EndColumn   int
}

// Pos returns the start position of the token.
func (t Token) Pos() diag.Position {
	return diag.Position{Line: t.Line, Column: t.StartColumn}
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d %s %q", t.Line, t.StartColumn, t.Kind, t.Text)
}
