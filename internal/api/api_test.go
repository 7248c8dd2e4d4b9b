package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/starford/wikimark/internal/renderservice"
	"github.com/starford/wikimark/internal/testutil"
)

var testVault = map[string]string{
	"hello.md":       "---\ntags: [greeting]\n---\n# Hello\n\nSee [[World#Intro|the world]] and [[Nowhere]].\n",
	"notes/World.md": "# World\n\n## Intro\n\n> [!tip] Remember\n> ==bright== idea\n",
	"img/pic.png":    "png-bytes",
}

// testService sets up a temp vault, SQLite DB and a synced render service.
func testService(t *testing.T) *renderservice.Service {
	t.Helper()
	_, store := testutil.TestVault(t)
	testutil.WriteFiles(t, store, testVault)

	svc, err := renderservice.New(store, testutil.TestDB(t), renderservice.Options{
		Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	})
	if err != nil {
		t.Fatalf("renderservice.New: %v", err)
	}
	if err := svc.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	return svc
}

// testEnv returns an API router. An empty token means disabled auth mode.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	return NewRouter(testService(t), authToken != "", authToken, nil)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetPage(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/pages/hello.md")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", w.Code, w.Body.String())
	}
	var page PageDetail
	_ = json.Unmarshal(w.Body.Bytes(), &page)
	if page.Path != "hello.md" || page.Title != "Hello" {
		t.Errorf("page = %+v", page)
	}
	if !strings.Contains(page.HTML, `<a href="/notes/World#intro" title="the world">the world</a>`) {
		t.Errorf("html = %s", page.HTML)
	}
	if len(page.Tags) != 1 || page.Tags[0] != "greeting" {
		t.Errorf("tags = %v", page.Tags)
	}
}

func TestGetPage_EncodedSlash(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/pages/notes%2FWorld.md")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var page PageDetail
	_ = json.Unmarshal(w.Body.Bytes(), &page)
	if !strings.Contains(page.HTML, "<mark>bright</mark>") || !strings.Contains(page.HTML, "Callout") {
		t.Errorf("html = %s", page.HTML)
	}
	if len(page.Backlinks) != 1 || page.Backlinks[0].Source != "hello.md" {
		t.Errorf("backlinks = %+v", page.Backlinks)
	}
}

func TestGetPage_NotFound(t *testing.T) {
	router := testEnv(t, "")

	if w := get(t, router, "/pages/nope.md"); w.Code != http.StatusNotFound {
		t.Errorf("missing page = %d, want 404", w.Code)
	}
	if w := get(t, router, "/pages/..%2F..%2Fetc%2Fpasswd.md"); w.Code != http.StatusBadRequest {
		t.Errorf("traversal = %d, want 400", w.Code)
	}
}

func TestListPages(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/pages?tag=greeting")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var resp PageListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Pages[0].Path != "hello.md" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestRender(t *testing.T) {
	router := testEnv(t, "")

	body, _ := json.Marshal(RenderRequest{Content: "Go to [[World]] or ![[pic.png]]"})
	req := httptest.NewRequest(http.MethodPost, "/render", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("render status = %d, body = %s", w.Code, w.Body.String())
	}
	var page PageDetail
	_ = json.Unmarshal(w.Body.Bytes(), &page)
	if !strings.Contains(page.HTML, `href="/notes/World"`) || !strings.Contains(page.HTML, `src="/img/pic.png"`) {
		t.Errorf("html = %s", page.HTML)
	}

	req = httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(`{"content":""}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty render = %d, want 400", w.Code)
	}
}

func TestResolve(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/resolve?target="+"World%23Intro")
	if w.Code != http.StatusOK {
		t.Fatalf("resolve status = %d", w.Code)
	}
	var res Resolution
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if !res.Found || res.ResolvedPath != "notes/World.md" || res.URL != "/notes/World#intro" {
		t.Errorf("resolution = %+v", res)
	}

	if w := get(t, router, "/resolve"); w.Code != http.StatusBadRequest {
		t.Errorf("missing target = %d, want 400", w.Code)
	}
	if w := get(t, router, "/resolve?target=%20%20"); w.Code != http.StatusBadRequest {
		t.Errorf("blank target = %d, want 400", w.Code)
	}
}

func TestUnresolvedAndBacklinks(t *testing.T) {
	router := testEnv(t, "")

	var links LinksResponse
	_ = json.Unmarshal(get(t, router, "/links/unresolved").Body.Bytes(), &links)
	if len(links.Links) != 1 || links.Links[0].Target != "Nowhere" {
		t.Errorf("unresolved = %+v", links)
	}

	var bl BacklinksResponse
	_ = json.Unmarshal(get(t, router, "/backlinks/notes/World.md").Body.Bytes(), &bl)
	if bl.Path != "notes/World.md" || len(bl.Backlinks) != 1 {
		t.Errorf("backlinks = %+v", bl)
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/search?q=bright")
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Path != "notes/World.md" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	router := testEnv(t, "")

	if w := get(t, router, "/search"); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/pages", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123")

	if w := get(t, router, "/pages"); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/pages", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "")

	if w := get(t, router, "/pages"); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret")

	if w := get(t, router, "/events"); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	router := testEnvWithSSE(t, false, "")

	// Disabled mode → should not 401. SSE handler will write 200 and block,
	// so we cancel the context after a short time.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

// testEnvWithSSE creates a router with a dummy SSE handler to test auth on /events.
func testEnvWithSSE(t *testing.T, authEnabled bool, token string) http.Handler {
	t.Helper()

	// Minimal SSE handler stub: writes headers and blocks until the context is done.
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
	return NewRouter(testService(t), authEnabled, token, sseHandler)
}
