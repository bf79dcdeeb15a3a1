package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"formwizard-go/config"
	"formwizard-go/models"
	"formwizard-go/preview"
	"formwizard-go/processing"
	"formwizard-go/session"
	"formwizard-go/state"
	"formwizard-go/utils"
)

// ErrorResponse represents a standardized error response
// Status: HTTP status code
// Error: Error message
// Details: Additional details about the error
// Timestamp: When the error occurred
type ErrorResponse struct {
	Status    int         `json:"status"`
	Error     string      `json:"error"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func sendError(w http.ResponseWriter, status int, err string, details interface{}) {
	sendJSON(w, status, ErrorResponse{
		Status:    status,
		Error:     err,
		Details:   details,
		Timestamp: time.Now(),
	})
}

func sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// sendStateError maps record-store failures onto HTTP statuses. The record is
// unchanged in every case.
func sendStateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, state.ErrIndexOutOfRange):
		sendError(w, http.StatusUnprocessableEntity, "Index out of range", err.Error())
	case errors.Is(err, state.ErrUnknownSection):
		sendError(w, http.StatusBadRequest, "Unknown section", err.Error())
	case errors.Is(err, state.ErrUnknownField):
		sendError(w, http.StatusBadRequest, "Unknown field", err.Error())
	case errors.Is(err, state.ErrFieldType), errors.Is(err, state.ErrNotStruct):
		sendError(w, http.StatusBadRequest, "Invalid value", err.Error())
	default:
		sendError(w, http.StatusInternalServerError, "Failed to update record", err.Error())
	}
}

type Handlers struct {
	db        *gorm.DB
	config    *config.Config
	registry  *session.Registry
	issuer    *utils.TokenIssuer
	client    *processing.Client
	cipher    *utils.Cipher
	formatter *preview.Formatter
	log       logrus.FieldLogger
}

func NewHandlers(db *gorm.DB, cfg *config.Config, registry *session.Registry, issuer *utils.TokenIssuer,
	client *processing.Client, cipher *utils.Cipher, log logrus.FieldLogger) *Handlers {
	return &Handlers{
		db:        db,
		config:    cfg,
		registry:  registry,
		issuer:    issuer,
		client:    client,
		cipher:    cipher,
		formatter: preview.NewFormatter(cfg.DateDisplayLayout),
		log:       log,
	}
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "FormWizard",
		"version":   "1.0.0",
		"sessions":  h.registry.Len(),
	})
}

func (h *Handlers) logAudit(sessionID, action, resource, details string, r *http.Request) {
	audit := models.AuditLog{
		SessionID: sessionID,
		Action:    action,
		Resource:  resource,
		Details:   details,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
	if err := h.db.Create(&audit).Error; err != nil {
		h.log.WithError(err).WithField("session_id", sessionID).Warn("Failed to write audit log")
	}
}
