package processing

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"formwizard-go/models"
)

var ErrSubmissionInProgress = errors.New("submission already in progress")

type Status string

const (
	StatusIdle       Status = "idle"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// State is what the wizard shows on its final step.
type State struct {
	Status  Status                `json:"status"`
	Message string                `json:"message,omitempty"`
	Files   []models.DownloadLink `json:"files,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// Filenames lists the generated documents in the order the backend returned them.
func (s State) Filenames() []string {
	names := make([]string, 0, len(s.Files))
	for _, f := range s.Files {
		names = append(names, f.Filename)
	}
	return names
}

// Processor is the backend call a Submitter drives; *Client implements it.
type Processor interface {
	ProcessForms(ctx context.Context, record models.PersonRecord) (*models.ProcessResponse, error)
}

// Submitter allows one submission at a time for a session. It never touches
// the record: a failed submission can be retried as is.
type Submitter struct {
	processor Processor

	mu    sync.Mutex
	state State
}

func NewSubmitter(processor Processor) *Submitter {
	return &Submitter{processor: processor, state: State{Status: StatusIdle}}
}

// Submit sends record, which the caller snapshots beforehand so later edits
// do not leak into an in-flight request.
func (s *Submitter) Submit(ctx context.Context, record models.PersonRecord) (State, error) {
	s.mu.Lock()
	if s.state.Status == StatusInProgress {
		s.mu.Unlock()
		return State{Status: StatusInProgress}, ErrSubmissionInProgress
	}
	s.state = State{Status: StatusInProgress}
	s.mu.Unlock()

	resp, err := s.processor.ProcessForms(ctx, record)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = State{Status: StatusFailed, Error: err.Error()}
		return s.state, err
	}
	s.state = State{Status: StatusCompleted, Message: resp.Message, Files: resp.DownloadLinks}
	return s.state, nil
}

func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy reports whether a submission is in flight.
func (s *Submitter) Busy() bool {
	return s.State().Status == StatusInProgress
}

// HasFile reports whether filename was returned by the last completed submission.
func (s *Submitter) HasFile(filename string) bool {
	state := s.State()
	for _, f := range state.Files {
		if f.Filename == filename {
			return true
		}
	}
	return false
}
