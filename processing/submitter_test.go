package processing

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formwizard-go/models"
)

type fakeProcessor struct {
	started chan models.PersonRecord
	release chan struct{}
	resp    *models.ProcessResponse
	err     error
}

func (f *fakeProcessor) ProcessForms(ctx context.Context, record models.PersonRecord) (*models.ProcessResponse, error) {
	if f.started != nil {
		f.started <- record
	}
	if f.release != nil {
		<-f.release
	}
	return f.resp, f.err
}

func TestSubmitterCompleted(t *testing.T) {
	s := NewSubmitter(&fakeProcessor{resp: &models.ProcessResponse{
		Success:       true,
		Message:       "done",
		DownloadLinks: []models.DownloadLink{{Filename: "bgv.docx"}},
	}})
	assert.Equal(t, StatusIdle, s.State().Status)

	state, err := s.Submit(context.Background(), models.DefaultRecord())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, state.Status)
	assert.Equal(t, "done", state.Message)
	assert.Equal(t, []string{"bgv.docx"}, state.Filenames())
	assert.True(t, s.HasFile("bgv.docx"))
	assert.False(t, s.HasFile("other.docx"))
}

func TestSubmitterFailedCanRetry(t *testing.T) {
	p := &fakeProcessor{err: &BackendError{StatusCode: 500, Message: "template missing"}}
	s := NewSubmitter(p)

	state, err := s.Submit(context.Background(), models.DefaultRecord())
	require.Error(t, err)
	assert.Equal(t, StatusFailed, state.Status)
	assert.Equal(t, "template missing", state.Error)
	assert.False(t, s.Busy())

	p.err = nil
	p.resp = &models.ProcessResponse{Success: true}
	state, err = s.Submit(context.Background(), models.DefaultRecord())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, state.Status)
	assert.Empty(t, state.Error)
	assert.Empty(t, state.Filenames())
}

func TestSubmitterRejectsConcurrentSubmit(t *testing.T) {
	p := &fakeProcessor{
		started: make(chan models.PersonRecord, 1),
		release: make(chan struct{}),
		resp:    &models.ProcessResponse{Success: true},
	}
	s := NewSubmitter(p)

	rec := models.DefaultRecord()
	rec.Name = "Asha"

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), rec)
		done <- err
	}()

	sent := <-p.started
	assert.Equal(t, "Asha", sent.Name)
	assert.True(t, s.Busy())

	state, err := s.Submit(context.Background(), rec)
	assert.True(t, errors.Is(err, ErrSubmissionInProgress))
	assert.Equal(t, StatusInProgress, state.Status)

	close(p.release)
	require.NoError(t, <-done)
	assert.Equal(t, StatusCompleted, s.State().Status)
}
