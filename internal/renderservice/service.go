// Package renderservice renders vault notes and keeps the resolver index
// and the link database in step with the vault.
package renderservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/starford/wikimark/internal/apperr"
	"github.com/starford/wikimark/internal/callout"
	"github.com/starford/wikimark/internal/htmlrender"
	"github.com/starford/wikimark/internal/linkdb"
	"github.com/starford/wikimark/internal/markdown"
	"github.com/starford/wikimark/internal/models"
	"github.com/starford/wikimark/internal/resolver"
	"github.com/starford/wikimark/internal/storage"
	"github.com/starford/wikimark/internal/transform"
)

// Options configures rendering.
type Options struct {
	ContentRootURLPrefix string
	BaseURL              string
	// Manifest entries use paths relative to the vault root.
	Manifest []transform.ManifestFile
	Callout  callout.Options
	// Parser configures wiki link and autolink syntax.
	Parser []markdown.Option
	// UnsafeHTML keeps raw HTML and javascript: style URLs in the output.
	UnsafeHTML bool
	Logger     *slog.Logger
}

// PageDetail is the full representation of a rendered note.
type PageDetail struct {
	Path        string         `json:"path"`
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	Tags        []string       `json:"tags"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	HTML        string         `json:"html"`
	Links       []models.Link  `json:"links"`
	Backlinks   []models.Link  `json:"backlinks"`
	Checksum    string         `json:"checksum,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// PageItem is a lightweight item in a list response.
type PageItem struct {
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage, the resolver index and the link database.
// It implements linkdb.Indexer.
type Service struct {
	store  storage.Provider
	db     linkdb.Store
	root   string
	index  *resolver.Index
	proc   *transform.Processor
	opts   Options
	logger *slog.Logger
}

var _ linkdb.Indexer = (*Service)(nil)

// New indexes every visible vault file and returns a ready Service.
func New(store storage.Provider, db linkdb.Store, opts Options) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:  store,
		db:     db,
		root:   strings.TrimSuffix(resolver.NormalizePath(filepath.ToSlash(store.Root())), "/"),
		opts:   opts,
		logger: logger,
	}

	files, err := store.Files("")
	if err != nil {
		return nil, fmt.Errorf("renderservice: list files: %w", err)
	}
	s.index = resolver.NewIndex()
	s.index.SetRoot(s.root)
	for _, f := range files {
		s.index.AddFile(s.abs(f.Path))
	}

	manifest := make([]transform.ManifestFile, len(opts.Manifest))
	for i, m := range opts.Manifest {
		m.File = s.abs(m.File)
		manifest[i] = m
	}

	s.proc = transform.NewProcessor(transform.New(transform.Options{
		ContentRoot:          s.root,
		ContentRootURLPrefix: opts.ContentRootURLPrefix,
		BaseURL:              opts.BaseURL,
		MarkdownFiles:        manifest,
		Index:                s.index,
		Callout:              opts.Callout,
		LoadNote:             s.loadNote,
		Parser:               markdown.NewParser(opts.Parser...),
		Logger:               logger,
	}), htmlrender.WithUnsafe(opts.UnsafeHTML))
	return s, nil
}

// abs maps a vault path to its index key.
func (s *Service) abs(rel string) string {
	return s.root + "/" + strings.TrimPrefix(resolver.NormalizePath(rel), "/")
}

// rel maps an index key back to a vault path.
func (s *Service) rel(abs string) string {
	return strings.TrimPrefix(abs, s.root+"/")
}

func (s *Service) loadNote(abs string) ([]byte, bool) {
	data, err := s.store.Read(s.rel(abs))
	if err != nil {
		s.logger.Debug("renderservice: load embedded note", slog.String("path", abs), slog.String("error", err.Error()))
		return nil, false
	}
	return data, true
}

// URL returns the URL a vault file is served at.
func (s *Service) URL(rel string) string {
	return s.proc.Transformer().PageURL(s.abs(rel))
}

// RenderPage reads, renders and returns the note at path with its backlinks.
func (s *Service) RenderPage(_ context.Context, path string) (*PageDetail, error) {
	if !models.IsNote(path) {
		return nil, fmt.Errorf("renderservice: %s is not a note: %w", path, apperr.ErrNotFound)
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("renderservice: read %s: %w", path, apperr.ErrNotFound)
		}
		return nil, err
	}
	res, err := s.proc.ProcessPage(s.abs(path), data)
	if err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(path)
	if err != nil {
		return nil, err
	}

	updated := time.Now()
	if row, err := s.db.GetPage(path); err == nil {
		updated = row.UpdatedAt
	}
	return &PageDetail{
		Path:        path,
		URL:         s.URL(path),
		Title:       res.Title,
		Tags:        nonNilSlice(res.Tags),
		Frontmatter: res.Frontmatter,
		HTML:        res.HTML,
		Links:       s.links(path, res.Links),
		Backlinks:   nonNilSlice(bl),
		Checksum:    storage.Checksum(data),
		UpdatedAt:   updated,
	}, nil
}

// RenderSource renders Markdown that is not stored in the vault. Links
// still resolve against the vault.
func (s *Service) RenderSource(_ context.Context, src []byte) (*PageDetail, error) {
	res, err := s.proc.Process(src)
	if err != nil {
		return nil, err
	}
	return &PageDetail{
		Title:       res.Title,
		Tags:        nonNilSlice(res.Tags),
		Frontmatter: res.Frontmatter,
		HTML:        res.HTML,
		Links:       s.links("", res.Links),
		Backlinks:   []models.Link{},
		UpdatedAt:   time.Now(),
	}, nil
}

// PageForURL renders the note served at url.
func (s *Service) PageForURL(ctx context.Context, url string) (*PageDetail, error) {
	row, err := s.db.PageByURL(url)
	if err != nil {
		return nil, err
	}
	return s.RenderPage(ctx, row.Path)
}

// AssetForURL returns the vault path of the non-note file served at url.
func (s *Service) AssetForURL(url string) (string, bool) {
	rel := strings.TrimPrefix(url, "/")
	if pre := strings.Trim(s.opts.ContentRootURLPrefix, "/"); pre != "" {
		var ok bool
		if rel, ok = strings.CutPrefix(rel, pre+"/"); !ok {
			return "", false
		}
	}
	rel = path.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "../") || models.IsNote(rel) || !s.index.Has(s.abs(rel)) {
		return "", false
	}
	return rel, true
}

// Read returns the raw bytes of a vault file.
func (s *Service) Read(path string) ([]byte, error) {
	data, err := s.store.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("renderservice: read %s: %w", path, apperr.ErrNotFound)
	}
	return data, err
}

// Resolve resolves a wiki target against the vault. Paths in the result
// are relative to the vault root.
func (s *Service) Resolve(_ context.Context, target string) (transform.Resolution, error) {
	res, err := s.proc.Transformer().Resolve(target)
	if err != nil {
		return res, fmt.Errorf("renderservice: resolve %q: %w", target, err)
	}
	for i, c := range res.Candidates {
		res.Candidates[i] = s.rel(c)
	}
	if res.ResolvedPath != "" {
		res.ResolvedPath = s.rel(res.ResolvedPath)
	}
	return res, nil
}

// ListPages returns paginated pages with optional tag filter.
func (s *Service) ListPages(_ context.Context, limit, offset int, tag string) ([]PageItem, int, error) {
	rows, total, err := s.db.ListPages(limit, offset, tag)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PageItem, len(rows))
	for i, r := range rows {
		items[i] = PageItem{
			Path:      r.Path,
			URL:       r.URL,
			Title:     r.Title,
			Checksum:  r.Checksum,
			Tags:      nonNilSlice(r.Tags),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Backlinks returns every link that resolves to path.
func (s *Service) Backlinks(_ context.Context, path string) ([]models.Link, error) {
	return s.db.Backlinks(path)
}

// Unresolved returns every link whose target matched no vault file.
func (s *Service) Unresolved(_ context.Context) ([]models.Link, error) {
	return s.db.Unresolved()
}

// Search delegates full-text search to the link database.
func (s *Service) Search(_ context.Context, query string, limit int) ([]linkdb.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Sync brings the index and the link database up to date with the vault.
func (s *Service) Sync() error {
	return linkdb.Sync(s.db, s.store, s, s.logger)
}

// IndexPage renders data and upserts the page and its links.
func (s *Service) IndexPage(path string, data []byte) error {
	res, err := s.proc.ProcessPage(s.abs(path), data)
	if err != nil {
		return err
	}
	return s.db.UpsertPage(linkdb.PageRow{
		Path:      path,
		URL:       s.URL(path),
		Title:     res.Title,
		Checksum:  storage.Checksum(data),
		Tags:      nonNilSlice(res.Tags),
		UpdatedAt: time.Now(),
	}, string(res.Body), s.links(path, res.Links))
}

// AddFile makes path resolvable. Pages with dangling links are re-indexed
// since the new file may be what they point at, and so are pages linking
// to a file with the same basename, which the new file may outrank.
func (s *Service) AddFile(path string) {
	abs := s.abs(path)
	if s.index.Has(abs) {
		return
	}
	s.index.AddFile(abs)

	sources, err := s.db.SourcesWithUnresolved()
	if err != nil {
		s.logger.Warn("renderservice: unresolved sources", slog.String("error", err.Error()))
		return
	}
	for _, sib := range s.index.Siblings(abs) {
		linking, err := s.db.SourcesResolvingTo(s.rel(sib))
		if err != nil {
			s.logger.Warn("renderservice: linking sources", slog.String("path", sib), slog.String("error", err.Error()))
			continue
		}
		sources = append(sources, linking...)
	}
	slices.Sort(sources)
	s.reindex(slices.Compact(sources), path)
}

// RemoveFile forgets path and re-indexes the pages that linked to it.
func (s *Service) RemoveFile(path string) error {
	s.index.RemoveFile(s.abs(path))
	if models.IsNote(path) {
		if err := s.db.DeletePage(path); err != nil {
			return err
		}
	}

	sources, err := s.db.SourcesResolvingTo(path)
	if err != nil {
		return err
	}
	s.reindex(sources, path)
	return nil
}

func (s *Service) reindex(sources []string, skip string) {
	for _, src := range sources {
		if src == skip {
			continue
		}
		data, err := s.store.Read(src)
		if err != nil {
			continue
		}
		if err := s.IndexPage(src, data); err != nil {
			s.logger.Warn("renderservice: reindex failed", slog.String("path", src), slog.String("error", err.Error()))
			continue
		}
		s.logger.Debug("renderservice: reindexed", slog.String("path", src))
	}
}

func (s *Service) links(source string, recs []transform.LinkRecord) []models.Link {
	out := make([]models.Link, 0, len(recs))
	for _, r := range recs {
		l := models.Link{Source: source, Raw: r.Raw, Target: r.Target, Embed: r.Embed}
		if r.ResolvedPath != "" {
			l.Resolved = s.rel(r.ResolvedPath)
		}
		out = append(out, l)
	}
	return out
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
