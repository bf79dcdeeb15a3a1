package session

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formwizard-go/models"
	"formwizard-go/state"
)

type stubProcessor struct {
	release chan struct{}
}

func (p *stubProcessor) ProcessForms(ctx context.Context, record models.PersonRecord) (*models.ProcessResponse, error) {
	if p.release != nil {
		<-p.release
	}
	return &models.ProcessResponse{Success: true}, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestRegistry(ttl time.Duration, p *stubProcessor) (*Registry, *clock) {
	log, _ := test.NewNullLogger()
	r := NewRegistry(p, ttl, log)
	c := &clock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	r.now = c.now
	return r, c
}

func TestCreateGetEnd(t *testing.T) {
	r, _ := newTestRegistry(time.Hour, &stubProcessor{})

	s := r.Create()
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, s.Steps.Current())
	assert.Equal(t, len(state.Steps), s.Steps.Total())
	assert.Equal(t, models.DefaultRecord(), s.Store.Snapshot())

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	other := r.Create()
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, 2, r.Len())

	require.NoError(t, r.End(s.ID))
	_, err = r.Get(s.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(r.End(s.ID), ErrNotFound))
	assert.Equal(t, 1, r.Len())
}

func TestSessionsAreIsolated(t *testing.T) {
	r, _ := newTestRegistry(time.Hour, &stubProcessor{})
	a, b := r.Create(), r.Create()

	require.NoError(t, a.Store.ApplyUpdate(state.SectionPersonal, map[string]any{"name": "Asha"}))
	a.Steps.Next()

	assert.Equal(t, "Asha", a.Store.Snapshot().Name)
	assert.Empty(t, b.Store.Snapshot().Name)
	assert.Equal(t, 1, b.Steps.Current())
}

func TestExpiry(t *testing.T) {
	r, c := newTestRegistry(30*time.Minute, &stubProcessor{})
	idle := r.Create()
	active := r.Create()

	c.t = c.t.Add(20 * time.Minute)
	_, err := r.Get(active.ID)
	require.NoError(t, err)

	c.t = c.t.Add(15 * time.Minute)
	_, err = r.Get(idle.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())
	_, err = r.Get(active.ID)
	assert.NoError(t, err)
}

func TestSweepKeepsBusySession(t *testing.T) {
	p := &stubProcessor{release: make(chan struct{})}
	r, c := newTestRegistry(time.Minute, p)
	s := r.Create()

	done := make(chan struct{})
	go func() {
		_, _ = s.Submitter.Submit(context.Background(), s.Store.Snapshot())
		close(done)
	}()
	require.Eventually(t, s.Submitter.Busy, time.Second, time.Millisecond)

	c.t = c.t.Add(time.Hour)
	assert.Equal(t, 0, r.Sweep())

	close(p.release)
	<-done
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 0, r.Len())
}

func TestRunStopsWithContext(t *testing.T) {
	r, _ := newTestRegistry(time.Minute, &stubProcessor{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
