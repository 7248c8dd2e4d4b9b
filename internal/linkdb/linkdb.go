package linkdb

import "github.com/starford/wikimark/internal/models"

// Store defines the page and link storage operations. Consumers depend on
// this interface rather than the concrete *DB type.
type Store interface {
	UpsertPage(p PageRow, body string, links []models.Link) error
	DeletePage(path string) error
	GetChecksum(path string) (string, error)
	GetPage(path string) (*PageRow, error)
	PageByURL(url string) (*PageRow, error)
	ListPages(limit, offset int, tag string) ([]PageRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Backlinks(path string) ([]models.Link, error)
	Unresolved() ([]models.Link, error)
	SourcesResolvingTo(path string) ([]string, error)
	SourcesWithUnresolved() ([]string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ Store = (*DB)(nil)
