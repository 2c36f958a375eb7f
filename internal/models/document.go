package models

import "time"

// DocumentMetadata describes one description file in the workspace.
type DocumentMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
