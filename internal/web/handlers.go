package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/justbelka/VSFI2024/internal/query"
)

//go:embed templates/*.html
var templateFS embed.FS

// SnapshotProvider serves the analytics snapshot rendered on the page.
type SnapshotProvider interface {
	Dashboard(ctx context.Context) (query.Snapshot, error)
}

// Pinger reports storage connectivity for the health probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	snapshots SnapshotProvider
	db        Pinger
	templates *template.Template
	logger    *slog.Logger
}

func NewHandlers(snapshots SnapshotProvider, db Pinger, logger *slog.Logger) (*Handlers, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Handlers{
		snapshots: snapshots,
		db:        db,
		templates: tmpl,
		logger:    logger,
	}, nil
}

func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard snapshot", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "index.html", snap); err != nil {
		h.logger.Error("failed to render dashboard", "error", err)
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Error("failed to ping database", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) Ready(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
