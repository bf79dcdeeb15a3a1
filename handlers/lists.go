package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"formwizard-go/middleware"
)

// listUpdate is fieldUpdate without the required field: an empty field
// replaces the whole element, which is how witness names are edited.
type listUpdate struct {
	Nested string      `json:"nested"`
	Field  string      `json:"field"`
	Value  interface{} `json:"value"`
}

func (h *Handlers) AppendItem(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}
	list := mux.Vars(r)["list"]

	if err := s.Store.Append(list); err != nil {
		sendStateError(w, err)
		return
	}
	h.sendRecord(w, s)
}

func (h *Handlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}
	list := mux.Vars(r)["list"]
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		sendError(w, http.StatusBadRequest, "Invalid index", mux.Vars(r)["index"])
		return
	}

	var req listUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Nested != "" && req.Field == "" {
		sendError(w, http.StatusBadRequest, "Validation failed", map[string]string{"field": "field is required with nested"})
		return
	}

	if req.Nested != "" {
		err = s.Store.UpdateAtNested(list, index, req.Nested, req.Field, req.Value)
	} else {
		err = s.Store.UpdateAt(list, index, req.Field, req.Value)
	}
	if err != nil {
		h.log.WithError(err).WithField("list", fmt.Sprintf("%s[%d]", list, index)).Debug("List update rejected")
		sendStateError(w, err)
		return
	}
	h.sendRecord(w, s)
}

func (h *Handlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}
	list := mux.Vars(r)["list"]
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		sendError(w, http.StatusBadRequest, "Invalid index", mux.Vars(r)["index"])
		return
	}

	if err := s.Store.RemoveAt(list, index); err != nil {
		sendStateError(w, err)
		return
	}
	h.sendRecord(w, s)
}
