package handlers

import (
	"net/http"

	"formwizard-go/middleware"
	"formwizard-go/models"
	"formwizard-go/processing"
)

type sessionResponse struct {
	SessionID  string              `json:"session_id"`
	Token      string              `json:"token,omitempty"`
	Record     models.PersonRecord `json:"record"`
	Version    uint64              `json:"version"`
	Step       stepResponse        `json:"step"`
	Submission *processing.State   `json:"submission,omitempty"`
}

func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.registry.Create()

	token, err := h.issuer.Issue(s.ID)
	if err != nil {
		_ = h.registry.End(s.ID)
		sendError(w, http.StatusInternalServerError, "Failed to issue session token", nil)
		return
	}

	h.logAudit(s.ID, "CREATE", "SESSION", "Wizard session started", r)

	sendJSON(w, http.StatusCreated, sessionResponse{
		SessionID: s.ID,
		Token:     token,
		Record:    s.Store.Snapshot(),
		Version:   s.Store.Version(),
		Step:      newStepResponse(s.Steps),
	})
}

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}

	rec, version := s.Store.Current()
	submission := s.Submitter.State()
	sendJSON(w, http.StatusOK, sessionResponse{
		SessionID:  s.ID,
		Record:     rec,
		Version:    version,
		Step:       newStepResponse(s.Steps),
		Submission: &submission,
	})
}

func (h *Handlers) EndSession(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}

	if err := h.registry.End(s.ID); err != nil {
		sendError(w, http.StatusNotFound, "Session not found", nil)
		return
	}
	h.logAudit(s.ID, "DELETE", "SESSION", "Wizard session ended", r)
	w.WriteHeader(http.StatusNoContent)
}
