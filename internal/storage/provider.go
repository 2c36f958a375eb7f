// Package storage defines the workspace file-system abstraction.
package storage

import "github.com/starford/havenfs/internal/models"

// Provider is the interface for workspace file operations. Paths are
// relative to the workspace root.
type Provider interface {
	// Extension returns the suffix of description files, e.g. ".havenfs".
	Extension() string
	// List returns metadata for every description file under dir.
	List(dir string) ([]models.DocumentMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
