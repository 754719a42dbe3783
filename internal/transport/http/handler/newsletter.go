package handler

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/portfolio-api/internal/application/newsletter"
	"github.com/portfolio-api/internal/domain"
)

// NewsletterHandler handles the admin broadcast endpoints.
type NewsletterHandler struct {
	svc newsletter.Service
}

func NewNewsletterHandler(svc newsletter.Service) *NewsletterHandler {
	return &NewsletterHandler{svc: svc}
}

// DispatchAll kicks off a full broadcast run. The response always carries the
// delivery accounting, including partial results if the run was interrupted.
func (h *NewsletterHandler) DispatchAll(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBroadcast(w, r)
	if !ok {
		return
	}
	result, err := h.svc.DispatchToAll(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *NewsletterHandler) DispatchOne(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBroadcast(w, r)
	if !ok {
		return
	}
	if err := h.svc.DispatchToOne(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "delivered"})
}

func (h *NewsletterHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		broadcastBody
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := mail.ParseAddress(body.Email); err != nil {
		writeError(w, http.StatusBadRequest, "valid email required")
		return
	}
	req, ok := toBroadcast(w, body.broadcastBody)
	if !ok {
		return
	}
	if err := h.svc.SendTest(r.Context(), body.Email, req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "test email sent"})
}

func (h *NewsletterHandler) Preview(w http.ResponseWriter, r *http.Request) {
	preview, err := h.svc.Preview(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// broadcastBody is the wire form of a broadcast: the dedup window comes in as
// a duration string ("24h", "90m") rather than raw nanoseconds.
type broadcastBody struct {
	Subject            string            `json:"subject"`
	HTML               string            `json:"html"`
	TemplateID         string            `json:"template_id"`
	Substitutions      map[string]string `json:"substitutions"`
	SkipNotifiedWithin string            `json:"skip_notified_within"`
}

func decodeBroadcast(w http.ResponseWriter, r *http.Request) (domain.BroadcastRequest, bool) {
	var body broadcastBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return domain.BroadcastRequest{}, false
	}
	return toBroadcast(w, body)
}

func toBroadcast(w http.ResponseWriter, body broadcastBody) (domain.BroadcastRequest, bool) {
	if body.Subject == "" {
		writeError(w, http.StatusBadRequest, "subject required")
		return domain.BroadcastRequest{}, false
	}
	req := domain.BroadcastRequest{
		Subject:       body.Subject,
		HTML:          body.HTML,
		TemplateID:    body.TemplateID,
		Substitutions: body.Substitutions,
	}
	if body.SkipNotifiedWithin != "" {
		d, err := time.ParseDuration(body.SkipNotifiedWithin)
		if err != nil || d < 0 {
			writeError(w, http.StatusBadRequest, "skip_notified_within must be a duration like \"24h\"")
			return domain.BroadcastRequest{}, false
		}
		req.SkipNotifiedWithin = d
	}
	return req, true
}
