package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gmelani/medtrack/internal/config"
	"github.com/gmelani/medtrack/internal/insights"
	"github.com/gmelani/medtrack/internal/reconcile"
	"github.com/gmelani/medtrack/internal/record"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer creates and configures the HTTP server for the medtrack web UI.
func NewServer(db *sql.DB, cfg *config.Config, baseDir, version, bind string, port int) *http.Server {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		log.Fatalf("failed to create template sub-FS: %v", err)
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to create static sub-FS: %v", err)
	}

	renderer := NewRenderer(templateSub, version)

	h := &Handlers{
		db:       db,
		cfg:      cfg,
		baseDir:  baseDir,
		renderer: renderer,
		gen:      &record.ClockIDGenerator{},
		reg:      reconcile.NewRegistry(),
		insights: insights.NewClient(cfg.APIKey(), cfg.GeminiModel),
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
	mux.HandleFunc("GET /dashboard", h.HandleDashboard)
	mux.HandleFunc("GET /visits", h.HandleVisits)
	mux.HandleFunc("POST /visits", h.HandleVisitAdd)
	mux.HandleFunc("DELETE /visits/{id}", h.HandleVisitDelete)
	mux.HandleFunc("GET /exams", h.HandleExams)
	mux.HandleFunc("POST /exams", h.HandleExamAdd)
	mux.HandleFunc("DELETE /exams/{id}", h.HandleExamDelete)
	mux.HandleFunc("POST /specialists", h.HandleSpecialistAdd)
	mux.HandleFunc("DELETE /specialists/{id}", h.HandleSpecialistDelete)
	mux.HandleFunc("POST /import/preview", h.HandleImportPreview)
	mux.HandleFunc("POST /import/commit", h.HandleImportCommit)
	mux.HandleFunc("POST /export", h.HandleExport)
	mux.HandleFunc("GET /insights", h.HandleInsights)

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	// Wrap with security headers
	handler := securityHeaders(mux)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: handler,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("medtrack UI running at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Printf("WARNING: Server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
