package handlers

import (
	"net/http"
	"strconv"

	"formwizard-go/middleware"
	"formwizard-go/models"
)

type historyResponse struct {
	Submissions []models.SubmissionLog `json:"submissions"`
	AuditLogs   []models.AuditLog      `json:"audit_logs"`
}

// GetHistory lists this session's submission attempts and audit trail,
// newest first.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r)
	if s == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	resp := historyResponse{
		Submissions: []models.SubmissionLog{},
		AuditLogs:   []models.AuditLog{},
	}
	if err := h.db.Where("session_id = ?", s.ID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&resp.Submissions).Error; err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to fetch submissions", err.Error())
		return
	}
	if err := h.db.Where("session_id = ?", s.ID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&resp.AuditLogs).Error; err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to fetch audit logs", err.Error())
		return
	}

	sendJSON(w, http.StatusOK, resp)
}
