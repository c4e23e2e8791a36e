// Package handlers implements HTTP request handlers for the campaignlens API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dwsmith1983/campaignlens/internal/cache"
	"github.com/dwsmith1983/campaignlens/internal/filter"
	"github.com/dwsmith1983/campaignlens/internal/provider"
	"github.com/dwsmith1983/campaignlens/internal/publish"
	"github.com/dwsmith1983/campaignlens/internal/store"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// ReloadFunc loads a fresh snapshot from the configured source.
type ReloadFunc func(ctx context.Context) (*store.Snapshot, error)

// Deps are the collaborators the handlers serve from.
type Deps struct {
	Snapshot  *store.Snapshot
	Source    provider.Source
	Reload    ReloadFunc
	Reports   *cache.Reports
	Publisher *publish.Dispatcher
	// ExportFileName overrides the bundle file name of published exports.
	ExportFileName string
	Logger         *slog.Logger
	Now            func() time.Time
}

// Handlers contains all HTTP handler dependencies.
type Handlers struct {
	snap      atomic.Pointer[store.Snapshot]
	source    provider.Source
	reload    ReloadFunc
	reports   *cache.Reports
	publisher *publish.Dispatcher
	fileName  string
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a new Handlers instance.
func New(d Deps) *Handlers {
	h := &Handlers{
		source:    d.Source,
		reload:    d.Reload,
		reports:   d.Reports,
		publisher: d.Publisher,
		fileName:  d.ExportFileName,
		logger:    d.Logger,
		now:       d.Now,
	}
	if h.reports == nil {
		h.reports = cache.New(nil)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.now == nil {
		h.now = time.Now
	}
	h.snap.Store(d.Snapshot)
	return h
}

// Snapshot returns the snapshot currently served.
func (h *Handlers) Snapshot() *store.Snapshot { return h.snap.Load() }

// selection resolves the request's filter parameters against snap.
func selection(r *http.Request, snap *store.Snapshot) types.Selection {
	q := r.URL.Query()
	return filter.Resolve(snap.Options(), func(d types.Dimension) ([]string, bool) {
		v, ok := q[string(d)]
		return v, ok
	})
}

// report builds or fetches the report for the request's selection.
func (h *Handlers) report(r *http.Request) (types.Report, error) {
	snap := h.Snapshot()
	return h.reports.Get(r.Context(), snap, selection(r, snap))
}

// writeError logs the internal error and returns a sanitized JSON error to the client.
func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		h.logger.Error(msg, "error", err, "status", status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
