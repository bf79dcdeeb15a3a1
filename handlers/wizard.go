package handlers

import (
	"net/http"

	"formwizard-go/middleware"
	"formwizard-go/preview"
	"formwizard-go/state"
	"formwizard-go/utils"
)

type stepResponse struct {
	Current int        `json:"current"`
	Total   int        `json:"total"`
	Step    state.Step `json:"step"`
}

func newStepResponse(seq *state.Sequencer) stepResponse {
	return stepResponse{Current: seq.Current(), Total: seq.Total(), Step: seq.Step()}
}

type previewResponse struct {
	Document preview.Document  `json:"document"`
	Missing  map[string]string `json:"missing"`
	Version  uint64            `json:"version"`
}

// Preview renders the current snapshot. Missing lists advisory required-field
// gaps; it never blocks the preview.
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}

	rec, version := s.Store.Current()
	sendJSON(w, http.StatusOK, previewResponse{
		Document: h.formatter.Build(rec),
		Missing:  utils.MissingFields(rec),
		Version:  version,
	})
}

func (h *Handlers) GetStep(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}
	sendJSON(w, http.StatusOK, newStepResponse(s.Steps))
}

func (h *Handlers) NextStep(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}
	s.Steps.Next()
	sendJSON(w, http.StatusOK, newStepResponse(s.Steps))
}

func (h *Handlers) PrevStep(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}
	s.Steps.Prev()
	sendJSON(w, http.StatusOK, newStepResponse(s.Steps))
}
