package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"formwizard-go/middleware"
	"formwizard-go/session"
	"formwizard-go/utils"
)

type recordResponse struct {
	Record  interface{} `json:"record"`
	Version uint64      `json:"version"`
}

// fieldUpdate addresses one field, optionally inside a nested object of the
// section or list element.
type fieldUpdate struct {
	Nested string      `json:"nested"`
	Field  string      `json:"field" validate:"required"`
	Value  interface{} `json:"value"`
}

func (h *Handlers) sendRecord(w http.ResponseWriter, s *session.Session) {
	rec, version := s.Store.Current()
	sendJSON(w, http.StatusOK, recordResponse{Record: rec, Version: version})
}

// ReplaceSection applies the store's merge rule: the personal group is merged
// field by field from a JSON object, any other section is replaced by the
// body, a JSON array for list sections.
func (h *Handlers) ReplaceSection(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}
	section := mux.Vars(r)["section"]

	var payload interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := s.Store.ApplyUpdate(section, payload); err != nil {
		h.log.WithError(err).WithField("section", section).Debug("Section update rejected")
		sendStateError(w, err)
		return
	}

	h.sendRecord(w, s)
}

func (h *Handlers) PatchSection(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}
	section := mux.Vars(r)["section"]

	var req fieldUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		sendError(w, http.StatusBadRequest, "Validation failed", utils.FormatValidationError(err))
		return
	}

	var err error
	if req.Nested != "" {
		err = s.Store.PatchNested(section, req.Nested, req.Field, req.Value)
	} else {
		err = s.Store.PatchField(section, req.Field, req.Value)
	}
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"section": section,
			"field":   fieldLabel(req),
		}).Debug("Field update rejected")
		sendStateError(w, err)
		return
	}

	h.sendRecord(w, s)
}

func fieldLabel(req fieldUpdate) string {
	if req.Nested == "" {
		return req.Field
	}
	return fmt.Sprintf("%s.%s", req.Nested, req.Field)
}
