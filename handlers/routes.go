package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"formwizard-go/middleware"
)

// Router builds the API routes. Session routes require the bearer token
// returned by POST /api/sessions.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions", h.CreateSession).Methods(http.MethodPost)

	auth := middleware.SessionAuth(h.issuer, h.registry, h.log)
	r.Handle("/api/session", auth(http.HandlerFunc(h.GetSession))).Methods(http.MethodGet)
	r.Handle("/api/session", auth(http.HandlerFunc(h.EndSession))).Methods(http.MethodDelete)

	protected := r.PathPrefix("/api/session").Subrouter()
	protected.Use(auth)

	protected.HandleFunc("/sections/{section}", h.ReplaceSection).Methods(http.MethodPut)
	protected.HandleFunc("/sections/{section}", h.PatchSection).Methods(http.MethodPatch)

	protected.HandleFunc("/lists/{list}", h.AppendItem).Methods(http.MethodPost)
	protected.HandleFunc("/lists/{list}/{index}", h.UpdateItem).Methods(http.MethodPatch)
	protected.HandleFunc("/lists/{list}/{index}", h.RemoveItem).Methods(http.MethodDelete)

	protected.HandleFunc("/preview", h.Preview).Methods(http.MethodGet)
	protected.HandleFunc("/step", h.GetStep).Methods(http.MethodGet)
	protected.HandleFunc("/step/next", h.NextStep).Methods(http.MethodPost)
	protected.HandleFunc("/step/prev", h.PrevStep).Methods(http.MethodPost)

	protected.HandleFunc("/submit", h.Submit).Methods(http.MethodPost)
	protected.HandleFunc("/submission", h.GetSubmission).Methods(http.MethodGet)
	protected.HandleFunc("/download/{filename}", h.Download).Methods(http.MethodGet)
	protected.HandleFunc("/history", h.GetHistory).Methods(http.MethodGet)

	return r
}
