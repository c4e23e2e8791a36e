package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dwsmith1983/campaignlens/internal/export"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Options returns the distinct observed values of every filter dimension.
func (h *Handlers) Options(w http.ResponseWriter, _ *http.Request) {
	_ = json.NewEncoder(w).Encode(h.Snapshot().Options())
}

// Report returns the full report for the requested selection.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	rep, err := h.report(r)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to build report", err)
		return
	}
	_ = json.NewEncoder(w).Encode(rep)
}

// Table returns one report table as JSON rows, display strings
// (?display=true) or CSV (?format=csv).
func (h *Handlers) Table(w http.ResponseWriter, r *http.Request) {
	name, err := types.ParseTableName(chi.URLParam(r, "table"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, "unknown table", nil)
		return
	}
	rep, err := h.report(r)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to build report", err)
		return
	}

	q := r.URL.Query()
	switch q.Get("format") {
	case "", "json":
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment(export.FileName(name)))
		if err := export.WriteCSV(w, rep, name); err != nil {
			h.logger.Error("writing csv", "table", name, "error", err)
		}
		return
	default:
		h.writeError(w, http.StatusBadRequest, "format must be json or csv", nil)
		return
	}

	if display, _ := strconv.ParseBool(q.Get("display")); display {
		tbl, err := export.Display(rep, name)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, "failed to format table", err)
			return
		}
		_ = json.NewEncoder(w).Encode(tbl)
		return
	}
	_ = json.NewEncoder(w).Encode(tableRows(rep, name))
}

func tableRows(rep types.Report, t types.TableName) any {
	switch t {
	case types.TableCampaignSummary:
		return rep.CampaignSummary
	case types.TableTopInfluencers:
		return rep.TopInfluencers
	case types.TableBottomInfluencers:
		return rep.BottomInfluencers
	case types.TablePersonaSummary:
		return rep.PersonaSummary
	case types.TablePostEngagement:
		return rep.PostEngagement
	case types.TablePayoutSummary:
		return rep.PayoutSummary
	}
	return nil
}

func attachment(name string) string {
	return `attachment; filename="` + name + `"`
}
