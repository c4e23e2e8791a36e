package handlers

import (
	"encoding/json"
	"net/http"
)

// Health returns the server health status.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.source != nil {
		if err := h.source.Ping(r.Context()); err != nil {
			h.logger.Warn("source ping failed", "source", h.source.Name(), "error", err)
			status = "degraded"
		}
	}

	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":         status,
		"datasetVersion": h.Snapshot().Version(),
	}); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
}

// Reload replaces the served snapshot with a fresh load from the source.
func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request) {
	if h.reload == nil {
		h.writeError(w, http.StatusNotImplemented, "reload not configured", nil)
		return
	}
	snap, err := h.reload(r.Context())
	if err != nil {
		h.writeError(w, http.StatusBadGateway, "failed to reload dataset", err)
		return
	}
	h.snap.Store(snap)
	h.logger.Info("dataset reloaded", "version", snap.Version())
	_ = json.NewEncoder(w).Encode(map[string]string{"datasetVersion": snap.Version()})
}
