package linkdb

import (
	"log/slog"

	"github.com/starford/wikimark/internal/storage"
)

// Indexer applies vault changes. Paths are relative to the vault root.
type Indexer interface {
	// IndexPage renders and stores a note.
	IndexPage(path string, data []byte) error
	// AddFile makes any file, note or asset, resolvable.
	AddFile(path string)
	// RemoveFile forgets a file and, for notes, its page.
	RemoveFile(path string) error
}

// Sync walks the vault and brings the index up to date:
//   - every file is registered with the indexer
//   - new/changed notes are rendered and upserted
//   - notes removed from disk are dropped
func Sync(db Store, store storage.Provider, idx Indexer, logger *slog.Logger) error {
	files, err := store.Files("")
	if err != nil {
		return err
	}
	for _, f := range files {
		idx.AddFile(f.Path)
	}

	metas, err := store.List("")
	if err != nil {
		return err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := idx.IndexPage(m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := idx.RemoveFile(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("path", p))
		}
	}

	logger.Info("sync: done", slog.Int("files", len(files)), slog.Int("pages", len(metas)))
	return nil
}
