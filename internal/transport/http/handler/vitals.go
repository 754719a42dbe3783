package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/portfolio-api/internal/application/vitals"
	"github.com/portfolio-api/internal/domain"
)

// VitalHandler handles the public ingest beacon and the admin summary.
type VitalHandler struct {
	svc vitals.Service
}

func NewVitalHandler(svc vitals.Service) *VitalHandler {
	return &VitalHandler{svc: svc}
}

func (h *VitalHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req domain.IngestVitalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := h.svc.Ingest(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	// Beacons are fire-and-forget: the client only needs the status.
	w.WriteHeader(http.StatusAccepted)
}

func (h *VitalHandler) Summary(w http.ResponseWriter, r *http.Request) {
	days := 7
	if q := r.URL.Query().Get("days"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil || parsed < 1 || parsed > 90 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 90")
			return
		}
		days = parsed
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	summaries, err := h.svc.Summary(r.Context(), since)
	if err != nil {
		httpError(w, err)
		return
	}
	if summaries == nil {
		summaries = []domain.VitalSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}
