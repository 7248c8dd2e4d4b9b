package renderservice

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/starford/wikimark/internal/models"
	"github.com/starford/wikimark/internal/resolver"
	"github.com/starford/wikimark/internal/storage"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article data-path="{{.Path}}">
{{.Body}}
</article>
</body>
</html>
`))

// WriteDocument writes page as a standalone HTML document.
func WriteDocument(w io.Writer, page *PageDetail) error {
	title := page.Title
	if title == "" {
		title = page.Path
	}
	err := pageTmpl.Execute(w, struct {
		Title string
		Path  string
		Body  template.HTML
	}{Title: title, Path: page.Path, Body: template.HTML(page.HTML)})
	if err != nil {
		return fmt.Errorf("renderservice: page template: %w", err)
	}
	return nil
}

// BuildStats counts the files written by Build.
type BuildStats struct {
	Pages  int64 `json:"pages"`
	Assets int64 `json:"assets"`
}

// Build renders every indexed note to out as <url>/index.html and copies
// every other indexed file to its asset URL. Up to concurrency files are
// processed at once.
func (s *Service) Build(ctx context.Context, out storage.Provider, concurrency int) (BuildStats, error) {
	files := s.index.Paths()

	var pages, assets atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for _, f := range files {
		rel := s.rel(f)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if models.IsNote(rel) {
				if err := s.buildPage(ctx, out, rel); err != nil {
					return err
				}
				pages.Add(1)
				return nil
			}
			if err := s.copyAsset(out, rel); err != nil {
				return err
			}
			assets.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BuildStats{}, err
	}

	stats := BuildStats{Pages: pages.Load(), Assets: assets.Load()}
	s.logger.Info("build: done", slog.Int64("pages", stats.Pages), slog.Int64("assets", stats.Assets))
	return stats, nil
}

func (s *Service) buildPage(ctx context.Context, out storage.Provider, path string) error {
	page, err := s.RenderPage(ctx, path)
	if err != nil {
		return fmt.Errorf("build: render %s: %w", path, err)
	}
	var buf bytes.Buffer
	if err := WriteDocument(&buf, page); err != nil {
		return fmt.Errorf("build: %s: %w", path, err)
	}

	target := "index.html"
	if dir := strings.Trim(page.URL, "/"); dir != "" {
		target = dir + "/index.html"
	}
	if err := out.Write(target, buf.Bytes()); err != nil {
		return fmt.Errorf("build: write %s: %w", target, err)
	}
	s.logger.Debug("build: page", slog.String("path", path), slog.String("out", target))
	return nil
}

func (s *Service) copyAsset(out storage.Provider, path string) error {
	data, err := s.store.Read(path)
	if err != nil {
		return fmt.Errorf("build: read %s: %w", path, err)
	}
	target := strings.TrimPrefix(resolver.ResolveURL(s.abs(path), s.root, s.opts.ContentRootURLPrefix, true), "/")
	if err := out.Write(target, data); err != nil {
		return fmt.Errorf("build: write %s: %w", target, err)
	}
	return nil
}
