package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/serene/internal/config"
	"github.com/hpungsan/serene/internal/kv"
	"github.com/hpungsan/serene/internal/ops"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Options configures NewServer.
type Options struct {
	Version string
	Bind    string
	Port    int
	Logger  *zap.Logger
	Now     func() time.Time
}

// NewServer creates and configures the HTTP server for the Serene web UI.
// It owns the session for store: the collector resumes from the persisted
// snapshot and lives as long as the server.
func NewServer(ctx context.Context, store kv.Store, cfg *config.Config, opts Options) *http.Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	env := ops.NewEnv(ctx, store, cfg, ops.EnvOptions{
		Notifier: Navigator(),
		Logger:   logger,
		Now:      opts.Now,
	})

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Bind, opts.Port),
		Handler:           NewHandler(env, opts.Version, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewHandler builds the routed, header-wrapped handler over env.
// env should carry Navigator() as its notifier so submits redirect to the
// requested results section.
func NewHandler(env *ops.Env, version string, logger *zap.Logger) http.Handler {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		logger.Fatal("failed to create template sub-FS", zap.Error(err))
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		logger.Fatal("failed to create static sub-FS", zap.Error(err))
	}

	h := &Handlers{
		env:      env,
		renderer: NewRenderer(templateSub, version, logger),
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/assessment", http.StatusFound)
	})
	mux.HandleFunc("GET /assessment", h.HandleAssessment)
	mux.HandleFunc("POST /assessment/answer", h.HandleAnswer)
	mux.HandleFunc("POST /assessment/next", h.HandleNext)
	mux.HandleFunc("POST /assessment/back", h.HandleBack)
	mux.HandleFunc("POST /assessment/retake", h.HandleRetake)
	mux.HandleFunc("POST /assessment/submit", h.HandleSubmit)
	mux.HandleFunc("GET /results", h.HandleResults)
	mux.HandleFunc("GET /calendar", h.HandleCalendar)
	mux.HandleFunc("GET /calendar/week", h.HandleWeek)
	mux.HandleFunc("GET /journal/{date}", h.HandleJournal)
	mux.HandleFunc("POST /journal/{date}", h.HandleJournalSave)
	mux.HandleFunc("POST /journal/{date}/delete", h.HandleJournalDelete)

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	// Wrap with security headers
	return securityHeaders(mux)
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *zap.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("Serene UI running", zap.String("url", "http://"+srv.Addr))

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
