package renderservice

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/starford/wikimark/internal/apperr"
	"github.com/starford/wikimark/internal/storage"
	"github.com/starford/wikimark/internal/testutil"
	"github.com/starford/wikimark/internal/transform"
)

var vault = map[string]string{
	"a.md":        "# Alpha\n\nSee [[b]] and [[ghost]].\n",
	"notes/b.md":  "# Beta\n\n#tag1 body\n",
	"img/pic.png": "png",
}

func newService(t *testing.T, opts Options) (*Service, storage.Provider) {
	t.Helper()
	_, store := testutil.TestVault(t)
	testutil.WriteFiles(t, store, vault)
	opts.Logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	svc, err := New(store, testutil.TestDB(t), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := svc.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	return svc, store
}

func TestRenderPage(t *testing.T) {
	svc, _ := newService(t, Options{})
	ctx := context.Background()

	page, err := svc.RenderPage(ctx, "a.md")
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if page.Title != "Alpha" || page.URL != "/a" {
		t.Errorf("page = %+v", page)
	}
	if !strings.Contains(page.HTML, `<a href="/notes/b" title="b">b</a>`) {
		t.Errorf("html missing resolved link: %s", page.HTML)
	}
	if !strings.Contains(page.HTML, `class="not-found"`) {
		t.Errorf("html missing not-found link: %s", page.HTML)
	}
	if len(page.Links) != 2 || page.Links[0].Resolved != "notes/b.md" || page.Links[1].Resolved != "" {
		t.Errorf("links = %+v", page.Links)
	}

	b, err := svc.RenderPage(ctx, "notes/b.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Backlinks) != 1 || b.Backlinks[0].Source != "a.md" {
		t.Errorf("backlinks = %+v", b.Backlinks)
	}
	if len(b.Tags) != 1 || b.Tags[0] != "tag1" {
		t.Errorf("tags = %v", b.Tags)
	}
}

func TestRenderPage_NotFound(t *testing.T) {
	svc, _ := newService(t, Options{})
	for _, p := range []string{"missing.md", "img/pic.png"} {
		if _, err := svc.RenderPage(context.Background(), p); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("RenderPage(%q) err = %v, want ErrNotFound", p, err)
		}
	}
}

func TestListPagesAndUnresolved(t *testing.T) {
	svc, _ := newService(t, Options{ContentRootURLPrefix: "/docs"})
	ctx := context.Background()

	items, total, err := svc.ListPages(ctx, 0, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || items[1].URL != "/docs/notes/b" {
		t.Errorf("items = %+v", items)
	}

	un, err := svc.Unresolved(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(un) != 1 || un[0].Target != "ghost" || un[0].Source != "a.md" {
		t.Errorf("unresolved = %+v", un)
	}
}

func TestAddFileResolvesDanglingLinks(t *testing.T) {
	svc, store := newService(t, Options{})
	ctx := context.Background()

	testutil.WriteFiles(t, store, map[string]string{"ghost.md": "# Ghost"})
	svc.AddFile("ghost.md")

	if un, _ := svc.Unresolved(ctx); len(un) != 0 {
		t.Errorf("unresolved after add = %+v", un)
	}
	if bl, _ := svc.Backlinks(ctx, "ghost.md"); len(bl) != 1 || bl[0].Source != "a.md" {
		t.Errorf("backlinks = %+v", bl)
	}
}

func TestAddFileRetargetsTieBreak(t *testing.T) {
	svc, store := newService(t, Options{})
	ctx := context.Background()

	// b.md sorts before notes/b.md and takes over the [[b]] link from a.md.
	testutil.WriteFiles(t, store, map[string]string{"b.md": "# Root B"})
	svc.AddFile("b.md")

	if bl, _ := svc.Backlinks(ctx, "b.md"); len(bl) != 1 || bl[0].Source != "a.md" {
		t.Errorf("backlinks of b.md = %+v", bl)
	}
	if bl, _ := svc.Backlinks(ctx, "notes/b.md"); len(bl) != 0 {
		t.Errorf("stale backlinks of notes/b.md = %+v", bl)
	}
}

func TestRemoveFileUpdatesLinkingPages(t *testing.T) {
	svc, store := newService(t, Options{})
	ctx := context.Background()

	if err := store.Delete("notes/b.md"); err != nil {
		t.Fatal(err)
	}
	if err := svc.RemoveFile("notes/b.md"); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}

	un, _ := svc.Unresolved(ctx)
	if len(un) != 2 {
		t.Errorf("unresolved = %+v, want b and ghost", un)
	}
	if _, err := svc.db.GetPage("notes/b.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("removed page still stored: %v", err)
	}
}

func TestResolve(t *testing.T) {
	svc, _ := newService(t, Options{})

	res, err := svc.Resolve(context.Background(), "b#Intro")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.ResolvedPath != "notes/b.md" || res.URL != "/notes/b#intro" {
		t.Errorf("resolution = %+v", res)
	}
	if len(res.Candidates) != 1 || res.Candidates[0] != "notes/b.md" {
		t.Errorf("candidates = %v", res.Candidates)
	}

	if _, err := svc.Resolve(context.Background(), ""); !errors.Is(err, apperr.ErrEmptyTarget) {
		t.Errorf("err = %v, want ErrEmptyTarget", err)
	}
}

func TestNoteEmbedLoadsFromVault(t *testing.T) {
	svc, _ := newService(t, Options{})

	page, err := svc.RenderSource(context.Background(), []byte("![[b]]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page.HTML, `class="embed-note"`) || !strings.Contains(page.HTML, "Beta") {
		t.Errorf("html = %s", page.HTML)
	}
	if len(page.Links) != 1 || !page.Links[0].Embed || page.Links[0].Resolved != "notes/b.md" {
		t.Errorf("links = %+v", page.Links)
	}
}

func TestAssetForURL(t *testing.T) {
	svc, _ := newService(t, Options{ContentRootURLPrefix: "/docs"})

	if p, ok := svc.AssetForURL("/docs/img/pic.png"); !ok || p != "img/pic.png" {
		t.Errorf("AssetForURL = %q, %v", p, ok)
	}
	for _, u := range []string{"/img/pic.png", "/docs/a.md", "/docs/../img/pic.png", "/docs/"} {
		if _, ok := svc.AssetForURL(u); ok {
			t.Errorf("AssetForURL(%q) should miss", u)
		}
	}
}

func TestManifestPermalink(t *testing.T) {
	svc, _ := newService(t, Options{Manifest: []transform.ManifestFile{{File: "a.md", Permalink: "/alpha/"}}})

	page, err := svc.PageForURL(context.Background(), "/alpha/")
	if err != nil {
		t.Fatalf("PageForURL: %v", err)
	}
	if page.Path != "a.md" {
		t.Errorf("path = %q", page.Path)
	}
	if _, err := svc.PageForURL(context.Background(), "/nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBuild(t *testing.T) {
	svc, _ := newService(t, Options{})
	outDir := t.TempDir()
	out, err := storage.NewFS(outDir)
	if err != nil {
		t.Fatal(err)
	}

	stats, err := svc.Build(context.Background(), out, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.Pages != 2 || stats.Assets != 1 {
		t.Errorf("stats = %+v", stats)
	}

	html, err := out.Read("notes/b/index.html")
	if err != nil {
		t.Fatalf("page not written: %v", err)
	}
	if !strings.Contains(string(html), "<title>Beta</title>") {
		t.Errorf("page = %s", html)
	}
	if data, err := out.Read("img/pic.png"); err != nil || string(data) != "png" {
		t.Errorf("asset = %q, %v", data, err)
	}
}

func TestRenderSource_RawHTML(t *testing.T) {
	src := []byte("[x](javascript:alert(1))\n\n<script>alert(2)</script>\n")

	safe, _ := newService(t, Options{})
	page, err := safe.RenderSource(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(page.HTML, "<script>") || strings.Contains(page.HTML, "javascript:") {
		t.Errorf("unsafe markup kept: %s", page.HTML)
	}

	unsafe, _ := newService(t, Options{UnsafeHTML: true})
	page, err = unsafe.RenderSource(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page.HTML, "<script>alert(2)</script>") {
		t.Errorf("raw HTML dropped in unsafe mode: %s", page.HTML)
	}
}
