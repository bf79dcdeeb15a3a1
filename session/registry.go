// Package session keeps the wizard sessions served by this process.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"formwizard-go/processing"
	"formwizard-go/state"
)

var ErrNotFound = errors.New("session not found")

// Session is one applicant filling in the wizard.
type Session struct {
	ID        string
	CreatedAt time.Time

	Store     *state.Store
	Steps     *state.Sequencer
	Submitter *processing.Submitter

	lastSeen atomic.Int64
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// Registry holds sessions in memory. Sessions idle for longer than the TTL
// are dropped by Sweep; nothing survives a restart.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	processor processing.Processor
	ttl       time.Duration
	now       func() time.Time
	log       logrus.FieldLogger
}

func NewRegistry(processor processing.Processor, ttl time.Duration, log logrus.FieldLogger) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		processor: processor,
		ttl:       ttl,
		now:       time.Now,
		log:       log,
	}
}

func (r *Registry) Create() *Session {
	now := r.now()
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		Store:     state.NewStore(),
		Steps:     state.NewSequencer(len(state.Steps)),
		Submitter: processing.NewSubmitter(r.processor),
	}
	s.touch(now)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.log.WithField("session_id", s.ID).Info("Session created")
	return s
}

// Get returns the session and marks it as active. An expired session that
// has not been swept yet is reported as not found.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "session %s", id)
	}

	now := r.now()
	if r.expired(s, now) {
		return nil, errors.Wrapf(ErrNotFound, "session %s expired", id)
	}
	s.touch(now)
	return s, nil
}

func (r *Registry) End(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return errors.Wrapf(ErrNotFound, "session %s", id)
	}
	delete(r.sessions, id)
	r.log.WithField("session_id", id).Info("Session ended")
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes idle sessions and returns how many were removed. A session
// with a submission in flight is kept until the submission finishes.
func (r *Registry) Sweep() int {
	now := r.now()
	removed := 0

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if r.expired(s, now) && !s.Submitter.Busy() {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		r.log.WithField("removed", removed).Info("Expired sessions removed")
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) expired(s *Session, now time.Time) bool {
	return r.ttl > 0 && now.Sub(s.LastSeen()) > r.ttl
}
