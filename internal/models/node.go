// Package models defines the domain types for Haven FS descriptions.
package models

import (
	"encoding/json"

	"github.com/starford/havenfs/internal/diag"
)

// RootID is the sentinel parent of top-level nodes.
const RootID = "root"

// DefaultTagColor is used when a TAG record declares no color.
const DefaultTagColor = "#ffffff"

// NodeType distinguishes files from directories.
type NodeType string

const (
	NodeFile      NodeType = "file"
	NodeDirectory NodeType = "directory"
)

// Node is one file or directory of the described tree. Files and
// directories share one id space.
type Node struct {
	ID       string
	Type     NodeType
	Parent   string
	Name     string
	Size     int64
	Tags     []string
	Libs     []string
	Metadata map[string]string
}

// IsFile reports whether n is a file node.
func (n *Node) IsFile() bool { return n.Type == NodeFile }

// MergeMetadata adds key/value pairs to the node metadata; later values win.
func (n *Node) MergeMetadata(m map[string]string) {
	if len(m) == 0 {
		return
	}
	if n.Metadata == nil {
		n.Metadata = make(map[string]string, len(m))
	}
	for k, v := range m {
		n.Metadata[k] = v
	}
}

type fileJSON struct {
	ID       string            `json:"id"`
	Type     NodeType          `json:"type"`
	Parent   string            `json:"parent"`
	Name     string            `json:"name"`
	Size     int64             `json:"size"`
	Tags     []string          `json:"tags"`
	Libs     []string          `json:"libs"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type dirJSON struct {
	ID       string            `json:"id"`
	Type     NodeType          `json:"type"`
	Parent   string            `json:"parent"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// MarshalJSON emits size/tags/libs only for files; tags and libs are always
// arrays for files, never null.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.Type == NodeDirectory {
		return json.Marshal(dirJSON{ID: n.ID, Type: n.Type, Parent: n.Parent, Name: n.Name, Metadata: n.Metadata})
	}
	return json.Marshal(fileJSON{
		ID:       n.ID,
		Type:     n.Type,
		Parent:   n.Parent,
		Name:     n.Name,
		Size:     n.Size,
		Tags:     nonNil(n.Tags),
		Libs:     nonNil(n.Libs),
		Metadata: n.Metadata,
	})
}

// UnmarshalJSON accepts both the file and the directory shape.
func (n *Node) UnmarshalJSON(data []byte) error {
	var v fileJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Node{
		ID:       v.ID,
		Type:     v.Type,
		Parent:   v.Parent,
		Name:     v.Name,
		Size:     v.Size,
		Tags:     v.Tags,
		Libs:     v.Libs,
		Metadata: v.Metadata,
	}
	return nil
}

// Library is one (library, tag) association. A LIB record with k tag ids
// yields k Library values sharing ID and Name.
type Library struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	TagID string `json:"tagId"`
}

// Tag is a label with its display color.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TagEntry is the tag index value for one tag id.
type TagEntry struct {
	Tag      Tag      `json:"tag"`
	FileRefs []string `json:"fileRefs"`
}

// Libraries indexes library associations by library id.
type Libraries map[string][]Library

// Tagmap indexes tag entries by tag id.
type Tagmap map[string]TagEntry

// Ref is a token-level value with the position it was read from.
type Ref struct {
	Value    string        `json:"value"`
	Position diag.Position `json:"position"`
}

// Branch is the lineage pointer of the described snapshot.
type Branch struct {
	Base   Ref `json:"base"`
	Parent Ref `json:"parent"`
	Head   Ref `json:"head"`
}

// ReferenceType names the relation a Reference expresses.
type ReferenceType string

const (
	RefParent  ReferenceType = "parent"
	RefTag     ReferenceType = "tag"
	RefLibrary ReferenceType = "library"
	RefFile    ReferenceType = "file"
)

// Reference is a directed id reference found while parsing records, kept
// for the post-parse cross-reference check.
type Reference struct {
	From     string        `json:"from"`
	To       string        `json:"to"`
	Type     ReferenceType `json:"type"`
	Position diag.Position `json:"position"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
