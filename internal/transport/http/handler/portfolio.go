package handler

import (
	"net/http"

	"github.com/portfolio-api/internal/application/content"
)

// PortfolioHandler serves the read-only aggregate for the public site.
type PortfolioHandler struct {
	svc content.Service
}

func NewPortfolioHandler(svc content.Service) *PortfolioHandler {
	return &PortfolioHandler{svc: svc}
}

func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Portfolio(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
