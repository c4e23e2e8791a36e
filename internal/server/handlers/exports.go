package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dwsmith1983/campaignlens/internal/export"
	"github.com/dwsmith1983/campaignlens/internal/metrics"
	"github.com/dwsmith1983/campaignlens/internal/publish"
)

// Export streams every table of the requested selection as one ZIP.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	rep, err := h.report(r)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to build report", err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteZip(&buf, rep); err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to build export", err)
		return
	}
	metrics.ExportsBuilt.Inc(r.Context())

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", attachment(export.BundleFileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// PublishExport builds the ZIP for the requested selection and delivers it
// through the configured sinks.
func (h *Handlers) PublishExport(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil || h.publisher.Len() == 0 {
		h.writeError(w, http.StatusServiceUnavailable, "no export sinks configured", nil)
		return
	}
	rep, err := h.report(r)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to build report", err)
		return
	}
	b, err := publish.NewBundle(rep, h.fileName, h.now())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to build export", err)
		return
	}
	metrics.ExportsBuilt.Inc(r.Context())

	if err := h.publisher.Dispatch(r.Context(), b); err != nil {
		h.logger.Error("export publish incomplete", "bundle", b.ID, "error", err)
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(publishResult{Bundle: b, Error: deliveryError(err)})
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(publishResult{Bundle: b})
}

type publishResult struct {
	Bundle *publish.Bundle `json:"bundle"`
	Error  string          `json:"error,omitempty"`
}

// deliveryError reports how many sinks failed without leaking sink errors.
func deliveryError(err error) string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return strconv.Itoa(len(joined.Unwrap())) + " sink(s) failed"
	}
	return "sink failed"
}
