package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"formwizard-go/config"
	"formwizard-go/database"
	"formwizard-go/models"
	"formwizard-go/processing"
	"formwizard-go/session"
	"formwizard-go/utils"
)

const testKey = "0123456789abcdef0123456789abcdef"

type HandlersTestSuite struct {
	suite.Suite

	backend     *httptest.Server
	backendFail atomic.Bool
	db          *gorm.DB
	cfg         *config.Config
	cipher      *utils.Cipher
	router      *mux.Router
	token       string
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) SetupTest() {
	s.backendFail.Store(false)
	s.backend = httptest.NewServer(http.HandlerFunc(s.fakeBackend))

	var err error
	s.db, err = database.Initialize(filepath.Join(s.T().TempDir(), "test.db"), false)
	s.Require().NoError(err)

	s.cfg = &config.Config{
		Environment:          "test",
		SessionSecret:        testKey,
		EncryptionKey:        testKey,
		SessionTTL:           time.Hour,
		ProcessingBackendURL: s.backend.URL,
		DateDisplayLayout:    "1/2/2006",
	}

	log, _ := test.NewNullLogger()
	client := processing.NewClient(s.backend.URL, 5*time.Second, 0, log)
	registry := session.NewRegistry(client, s.cfg.SessionTTL, log)
	issuer, err := utils.NewTokenIssuer(s.cfg.SessionSecret, s.cfg.SessionTTL)
	s.Require().NoError(err)
	s.cipher, err = utils.NewCipher(s.cfg.EncryptionKey)
	s.Require().NoError(err)

	s.router = NewHandlers(s.db, s.cfg, registry, issuer, client, s.cipher, log).Router()

	var created sessionResponse
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/sessions", nil, &created))
	s.Require().NotEmpty(created.Token)
	s.token = created.Token
}

func (s *HandlersTestSuite) TearDownTest() {
	s.backend.Close()
}

func (s *HandlersTestSuite) fakeBackend(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/process-forms" && s.backendFail.Load():
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(models.ProcessResponse{Error: "Template not found"})
	case r.URL.Path == "/api/process-forms":
		var rec models.PersonRecord
		_ = json.NewDecoder(r.Body).Decode(&rec)
		_ = json.NewEncoder(w).Encode(models.ProcessResponse{
			Success:       true,
			Message:       "Forms processed successfully",
			DownloadLinks: []models.DownloadLink{{Filename: "BGV_" + rec.Name + ".docx"}},
		})
	case r.URL.Path == "/api/download/BGV_Asha.docx":
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.WriteString(w, "document")
	default:
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "File not found"})
	}
}

// do sends body as JSON with the session token and decodes the response
// into out when out is non-nil.
func (s *HandlersTestSuite) do(method, path string, body interface{}, out interface{}) int {
	rr := s.raw(method, path, body, s.token)
	if out != nil {
		s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), out), rr.Body.String())
	}
	return rr.Code
}

func (s *HandlersTestSuite) raw(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

type testRecord struct {
	Record  models.PersonRecord `json:"record"`
	Version uint64              `json:"version"`
}

func (s *HandlersTestSuite) record() testRecord {
	var got testRecord
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/session", nil, &got))
	return got
}

func (s *HandlersTestSuite) TestHealthCheck() {
	var body map[string]interface{}
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/health", nil, &body))
	s.Equal("healthy", body["status"])
	s.Equal(float64(1), body["sessions"])
}

func (s *HandlersTestSuite) TestRequiresToken() {
	s.Equal(http.StatusUnauthorized, s.raw(http.MethodGet, "/api/session", nil, "").Code)
	s.Equal(http.StatusUnauthorized, s.raw(http.MethodGet, "/api/session/preview", nil, "bogus").Code)
}

func (s *HandlersTestSuite) TestNewSessionHasDefaultRecord() {
	got := s.record()
	s.Equal(models.DefaultRecord(), got.Record)
	s.Equal(uint64(0), got.Version)
}

func (s *HandlersTestSuite) TestPersonalMerge() {
	s.Equal(http.StatusOK, s.do(http.MethodPut, "/api/session/sections/personal",
		map[string]string{"name": "Asha", "father_name": "Ravi"}, nil))
	s.Equal(http.StatusOK, s.do(http.MethodPatch, "/api/session/sections/personal",
		map[string]string{"field": "name", "value": "Asha K"}, nil))

	got := s.record().Record
	s.Equal("Asha K", got.Name)
	s.Equal("Ravi", got.FatherName)
}

func (s *HandlersTestSuite) TestSectionReplaceAndPatch() {
	s.Equal(http.StatusOK, s.do(http.MethodPut, "/api/session/sections/current_employment",
		map[string]interface{}{"employee_code": "E123", "can_verify": true}, nil))
	s.Equal(http.StatusOK, s.do(http.MethodPatch, "/api/session/sections/current_employment",
		map[string]interface{}{"field": "employment_period", "value": map[string]string{"start": "2020-01-01"}}, nil))
	s.Equal(http.StatusOK, s.do(http.MethodPatch, "/api/session/sections/current_employment",
		map[string]interface{}{"nested": "employment_period", "field": "end", "value": "2023-06-30"}, nil))

	got := s.record()
	s.Equal("E123", got.Record.CurrentEmployment.EmployeeCode)
	s.Equal(models.Period{Start: "2020-01-01", End: "2023-06-30"}, got.Record.CurrentEmployment.EmploymentPeriod)
	s.Equal(uint64(3), got.Version)
}

func (s *HandlersTestSuite) TestUpdateErrors() {
	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"unknown section", http.MethodPut, "/api/session/sections/hobbies", map[string]string{}, http.StatusBadRequest},
		{"unknown personal key", http.MethodPut, "/api/session/sections/personal", map[string]string{"favourite_colour": "blue"}, http.StatusBadRequest},
		{"flat period key", http.MethodPatch, "/api/session/sections/current_employment", map[string]string{"field": "employment_period_start", "value": "2020-01-01"}, http.StatusBadRequest},
		{"wrong type", http.MethodPatch, "/api/session/sections/gaps", map[string]interface{}{"field": "reason", "value": 42}, http.StatusBadRequest},
		{"missing field", http.MethodPatch, "/api/session/sections/gaps", map[string]string{"value": "x"}, http.StatusBadRequest},
		{"list as object", http.MethodPatch, "/api/session/sections/references", map[string]string{"field": "name", "value": "x"}, http.StatusBadRequest},
		{"out of range", http.MethodPatch, "/api/session/lists/references/0", map[string]string{"field": "name", "value": "x"}, http.StatusUnprocessableEntity},
		{"bad index", http.MethodDelete, "/api/session/lists/references/first", nil, http.StatusBadRequest},
		{"unknown list", http.MethodPost, "/api/session/lists/pets", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			var resp ErrorResponse
			s.Equal(tt.status, s.do(tt.method, tt.path, tt.body, &resp))
			s.Equal(tt.status, resp.Status)
		})
	}

	got := s.record()
	s.Equal(models.DefaultRecord(), got.Record)
	s.Equal(uint64(0), got.Version)
}

func (s *HandlersTestSuite) TestListLifecycle() {
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api/session/lists/employment_history", nil, nil))
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api/session/lists/employment_history", nil, nil))
	s.Equal(http.StatusOK, s.do(http.MethodPatch, "/api/session/lists/employment_history/1",
		map[string]string{"field": "employee_code", "value": "E9"}, nil))
	s.Equal(http.StatusOK, s.do(http.MethodPatch, "/api/session/lists/employment_history/1",
		map[string]string{"nested": "employment_period", "field": "raw", "value": "2015 to 2018"}, nil))

	history := s.record().Record.EmploymentHistory
	s.Require().Len(history, 2)
	s.True(history[0].CanVerify)
	s.Equal("E9", history[1].EmployeeCode)
	s.Equal("2015 to 2018", history[1].EmploymentPeriod.Raw)

	var resp ErrorResponse
	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodDelete, "/api/session/lists/employment_history/2", nil, &resp))
	s.Len(s.record().Record.EmploymentHistory, 2)

	s.Equal(http.StatusOK, s.do(http.MethodDelete, "/api/session/lists/employment_history/0", nil, nil))
	history = s.record().Record.EmploymentHistory
	s.Require().Len(history, 1)
	s.Equal("E9", history[0].EmployeeCode)
}

func (s *HandlersTestSuite) TestWitnesses() {
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api/session/lists/epf_and_gratuity.witnesses", nil, nil))
	s.Equal(http.StatusOK, s.do(http.MethodPatch, "/api/session/lists/epf_and_gratuity.witnesses/0",
		map[string]string{"value": "Meera"}, nil))

	s.Equal([]string{"Meera"}, s.record().Record.EPFAndGratuity.Witnesses)
}

func (s *HandlersTestSuite) TestStepNavigation() {
	var step stepResponse
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api/session/step/prev", nil, &step))
	s.Equal(1, step.Current)
	s.Equal("Personal Info", step.Step.Name)

	for i := 0; i < 12; i++ {
		s.do(http.MethodPost, "/api/session/step/next", nil, &step)
	}
	s.Equal(9, step.Current)
	s.Equal(9, step.Total)
	s.Equal("Process", step.Step.Name)

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/session/step", nil, &step))
	s.Equal(9, step.Current)
}

func (s *HandlersTestSuite) TestPreview() {
	s.do(http.MethodPut, "/api/session/sections/personal", map[string]string{"name": "Asha", "date_of_birth": "1990-05-17"}, nil)

	var got previewResponse
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/session/preview", nil, &got))
	s.Require().NotEmpty(got.Document.Sections)

	personal := got.Document.Sections[0]
	s.Require().NotEmpty(personal.Groups)
	values := map[string]string{}
	for _, f := range personal.Groups[0].Fields {
		values[f.Label] = f.Value
	}
	s.Equal("Asha", values["Name"])
	s.Equal("5/17/1990", values["Date of Birth"])
	s.Contains(got.Missing, "father_name")
	s.NotContains(got.Missing, "name")
}

func (s *HandlersTestSuite) TestSubmitAndDownload() {
	s.do(http.MethodPut, "/api/session/sections/personal", map[string]string{"name": "Asha", "pan_card": "ABCDE1234F"}, nil)

	var resp submitResponse
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api/session/submit", nil, &resp))
	s.Equal(processing.StatusCompleted, resp.Status)
	s.Require().Len(resp.Files, 1)
	s.Equal("BGV_Asha.docx", resp.Files[0].Filename)

	var st processing.State
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/session/submission", nil, &st))
	s.Equal(processing.StatusCompleted, st.Status)

	rr := s.raw(http.MethodGet, "/api/session/download/BGV_Asha.docx", nil, s.token)
	s.Equal(http.StatusOK, rr.Code)
	s.Equal("document", rr.Body.String())
	s.Contains(rr.Header().Get("Content-Disposition"), "BGV_Asha.docx")

	s.Equal(http.StatusNotFound, s.raw(http.MethodGet, "/api/session/download/other.docx", nil, s.token).Code)

	var logs []models.SubmissionLog
	s.Require().NoError(s.db.Find(&logs).Error)
	s.Require().Len(logs, 1)
	s.Equal(models.SubmissionCompleted, logs[0].Status)
	s.Equal("BGV_Asha.docx", logs[0].Files)
	s.NotEqual("ABCDE1234F", logs[0].PANCard)
	pan, err := s.cipher.Decrypt(logs[0].PANCard)
	s.Require().NoError(err)
	s.Equal("ABCDE1234F", pan)
}

func (s *HandlersTestSuite) TestSubmitFailureKeepsRecord() {
	s.backendFail.Store(true)
	s.do(http.MethodPut, "/api/session/sections/personal", map[string]string{"name": "Asha"}, nil)
	before := s.record()

	var resp ErrorResponse
	s.Equal(http.StatusBadGateway, s.do(http.MethodPost, "/api/session/submit", nil, &resp))
	s.Equal("Template not found", resp.Error)

	var st processing.State
	s.do(http.MethodGet, "/api/session/submission", nil, &st)
	s.Equal(processing.StatusFailed, st.Status)
	s.Equal("Template not found", st.Error)
	s.Equal(before, s.record())

	var history historyResponse
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/session/history", nil, &history))
	s.Require().Len(history.Submissions, 1)
	s.Equal(models.SubmissionFailed, history.Submissions[0].Status)
	s.NotEmpty(history.AuditLogs)

	s.backendFail.Store(false)
	var ok submitResponse
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api/session/submit", nil, &ok))
	s.Equal(processing.StatusCompleted, ok.Status)
}

func (s *HandlersTestSuite) TestSubmitEnforcesRequiredFields() {
	s.cfg.EnforceRequiredFields = true

	var resp ErrorResponse
	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodPost, "/api/session/submit", nil, &resp))
	details, ok := resp.Details.(map[string]interface{})
	s.Require().True(ok)
	s.Contains(details, "name")

	var st processing.State
	s.do(http.MethodGet, "/api/session/submission", nil, &st)
	s.Equal(processing.StatusIdle, st.Status)
}

func (s *HandlersTestSuite) TestEndSession() {
	s.Equal(http.StatusNoContent, s.raw(http.MethodDelete, "/api/session", nil, s.token).Code)
	s.Equal(http.StatusUnauthorized, s.raw(http.MethodGet, "/api/session", nil, s.token).Code)
}

func (s *HandlersTestSuite) TestReplaceListSection() {
	s.Equal(http.StatusOK, s.do(http.MethodPut, "/api/session/sections/employment_history",
		[]map[string]interface{}{{"employee_code": "E1", "can_verify": true}, {"employee_code": "E2"}}, nil))

	history := s.record().Record.EmploymentHistory
	s.Require().Len(history, 2)
	s.Equal("E1", history[0].EmployeeCode)
	s.True(history[0].CanVerify)
	s.Equal("E2", history[1].EmployeeCode)

	var resp ErrorResponse
	s.Equal(http.StatusBadRequest, s.do(http.MethodPut, "/api/session/sections/personal", []string{"Asha"}, &resp))
	s.Len(s.record().Record.EmploymentHistory, 2)
}

func (s *HandlersTestSuite) TestPartialSectionReplaceKeepsWitnessList() {
	s.Equal(http.StatusOK, s.do(http.MethodPut, "/api/session/sections/epf_and_gratuity",
		map[string]string{"pf_account_no": "MH/1"}, nil))

	rr := s.raw(http.MethodGet, "/api/session", nil, s.token)
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), `"witnesses":[]`)
}
