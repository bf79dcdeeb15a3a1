package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"formwizard-go/middleware"
	"formwizard-go/models"
	"formwizard-go/processing"
	"formwizard-go/utils"
)

type submitResponse struct {
	processing.State
	Missing map[string]string `json:"missing,omitempty"`
}

// Submit sends the current snapshot to the processing backend and waits for
// the result. Edits made while the request is in flight do not reach the
// backend.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}

	record := s.Store.Snapshot()
	missing := utils.MissingFields(record)
	if h.config.EnforceRequiredFields && len(missing) > 0 {
		sendError(w, http.StatusUnprocessableEntity, "Required fields missing", missing)
		return
	}

	// The submission outlives the client connection.
	st, err := s.Submitter.Submit(context.WithoutCancel(r.Context()), record)
	if errors.Is(err, processing.ErrSubmissionInProgress) {
		sendError(w, http.StatusConflict, "Submission already in progress", nil)
		return
	}

	h.recordSubmission(s.ID, record, st)

	if err != nil {
		h.log.WithError(err).WithField("session_id", s.ID).Error("Submission failed")
		h.logAudit(s.ID, "SUBMIT", "FORMS", "Submission failed: "+st.Error, r)
		sendError(w, http.StatusBadGateway, st.Error, submitResponse{State: st, Missing: missing})
		return
	}

	h.logAudit(s.ID, "SUBMIT", "FORMS", fmt.Sprintf("Generated %d documents", len(st.Files)), r)
	sendJSON(w, http.StatusOK, submitResponse{State: st, Missing: missing})
}

func (h *Handlers) recordSubmission(sessionID string, record models.PersonRecord, st processing.State) {
	entry := models.SubmissionLog{
		SessionID:     sessionID,
		ApplicantName: record.Name,
		Status:        string(st.Status),
		Error:         st.Error,
	}
	entry.Files = strings.Join(st.Filenames(), ",")

	var err error
	if entry.PANCard, err = h.cipher.Encrypt(record.PANCard); err != nil {
		h.log.WithError(err).Error("Failed to encrypt PAN for submission log")
		entry.PANCard = ""
	}
	if entry.AadharCard, err = h.cipher.Encrypt(record.AadharCard); err != nil {
		h.log.WithError(err).Error("Failed to encrypt Aadhaar for submission log")
		entry.AadharCard = ""
	}

	if err := h.db.Create(&entry).Error; err != nil {
		h.log.WithError(err).WithField("session_id", sessionID).Warn("Failed to write submission log")
	}
}

func (h *Handlers) GetSubmission(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}
	sendJSON(w, http.StatusOK, s.Submitter.State())
}

// Download relays a document generated by this session's last submission.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}
	filename := mux.Vars(r)["filename"]

	if !s.Submitter.HasFile(filename) {
		sendError(w, http.StatusNotFound, "File not found: "+filename, nil)
		return
	}

	dl, err := h.client.Download(r.Context(), filename)
	if err != nil {
		var be *processing.BackendError
		if errors.As(err, &be) && be.StatusCode == http.StatusNotFound {
			sendError(w, http.StatusNotFound, be.Message, nil)
			return
		}
		h.log.WithError(err).WithField("filename", filename).Error("Download failed")
		sendError(w, http.StatusBadGateway, "Failed to download file", err.Error())
		return
	}
	defer dl.Body.Close()

	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if dl.Disposition != "" {
		w.Header().Set("Content-Disposition", dl.Disposition)
	} else {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	if dl.ContentLength >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(dl.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, dl.Body); err != nil {
		h.log.WithError(err).WithField("filename", filename).Warn("Download interrupted")
	}
}
