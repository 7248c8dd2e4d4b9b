// Package models defines the domain types shared by the app layer.
package models

import (
	"path"
	"strings"
	"time"
)

// FileMetadata describes a vault file as returned by list operations.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Link is a directed edge from a page to a wiki target. Resolved is the
// vault path the target points at, empty when it points nowhere.
type Link struct {
	Source   string `json:"source"`
	Raw      string `json:"raw"`
	Target   string `json:"target"`
	Resolved string `json:"resolved,omitempty"`
	Embed    bool   `json:"embed"`
}

// IsNote reports whether p names a Markdown note.
func IsNote(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".mdx":
		return true
	}
	return false
}
