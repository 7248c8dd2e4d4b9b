// Package storage defines the vault file-system abstraction.
package storage

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/starford/wikimark/internal/models"
)

// Provider is the interface for vault file operations. Paths are relative
// to the vault root and use forward slashes.
type Provider interface {
	// List returns metadata for every note under dir.
	List(dir string) ([]models.FileMetadata, error)
	// Files returns metadata for every regular file under dir, notes included.
	Files(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Root returns the absolute vault directory.
	Root() string
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
