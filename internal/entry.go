// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/wikimark/internal/api"
	"github.com/starford/wikimark/internal/linkdb"
	"github.com/starford/wikimark/internal/mcpserver"
	"github.com/starford/wikimark/internal/renderservice"
	"github.com/starford/wikimark/internal/sse"
	"github.com/starford/wikimark/internal/storage"
	"github.com/starford/wikimark/internal/transform"
)

// runtime is the state shared by every command: storage, link database
// and a synced render service.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	store  storage.Provider
	db     *linkdb.DB
	svc    *renderservice.Service
}

func (rt *runtime) Close() error {
	return rt.db.Close()
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// bootstrap opens the vault and the link database and brings both up to
// date. The caller closes the runtime.
func bootstrap(app *application) (*runtime, error) {
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("url_prefix", cfg.Render.ContentRootURLPrefix),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	manifest, err := readManifest(cfg.Render.Manifest)
	if err != nil {
		return nil, err
	}

	db, err := linkdb.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init link db: %w", err)
	}

	svc, err := renderservice.New(store, db, renderservice.Options{
		ContentRootURLPrefix: cfg.Render.ContentRootURLPrefix,
		BaseURL:              cfg.Render.BaseURL,
		Manifest:             manifest,
		Callout:              cfg.Render.Callout,
		Parser:               cfg.Render.ParserOptions(),
		UnsafeHTML:           cfg.Render.Unsafe,
		Logger:               logger,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init render service: %w", err)
	}

	// Run initial sync.
	if err := svc.Sync(); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &runtime{cfg: cfg, logger: logger, store: store, db: db, svc: svc}, nil
}

func readManifest(path string) ([]transform.ManifestFile, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	return transform.ReadManifest(f)
}

// Run starts the preview server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg, logger, svc := rt.cfg, rt.logger, rt.svc

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.LinksThrottle, cfg.Events.Heartbeat)
	defer broker.Close()

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api, rendered pages and assets everywhere else.
	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))
	r.Mount("/", api.NewSiteRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		return linkdb.Watch(gCtx, rt.db, rt.store, svc, logger, func(kind, path string) {
			broker.PublishPageEvent(kind, path, svc.URL(path))
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// Build renders the whole vault into cfg.Build.OutDir.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer rt.Close()

	outDir := rt.cfg.Build.OutDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}
	out, err := storage.NewFS(outDir)
	if err != nil {
		return fmt.Errorf("init out dir: %w", err)
	}

	start := time.Now()
	stats, err := rt.svc.Build(ctx, out, rt.cfg.Build.Concurrency)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	rt.logger.Info("Build finished",
		slog.String("out_dir", outDir),
		slog.Int64("pages", stats.Pages),
		slog.Int64("assets", stats.Assets),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// ServeMCP serves the MCP tools on stdin/stdout while watching the vault.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	rt, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer rt.Close()

	srv := mcpserver.New(rt.svc, app.version)

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gCtx)

	g.Go(func() error {
		return linkdb.Watch(watchCtx, rt.db, rt.store, rt.svc, rt.logger, nil)
	})
	g.Go(func() error {
		defer stopWatch()
		rt.logger.Info("MCP server starting on stdio")
		return srv.ServeStdio()
	})
	return g.Wait()
}

// RenderFile renders the Markdown file at path to w. Links resolve
// against the configured vault.
func RenderFile(ctx context.Context, path string, w io.Writer, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	rt, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer rt.Close()

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	page, err := rt.svc.RenderSource(ctx, src)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, page.HTML)
	return err
}
