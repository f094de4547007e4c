package handlers

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/openmohaa/hiscores-dash/internal/selection"
	"github.com/openmohaa/hiscores-dash/internal/worker"
)

var errTooManySessions = errors.New("session limit reached")

var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dashboard_sessions_active",
	Help: "Number of live dashboard sessions",
})

type session struct {
	ctrl    *selection.Controller
	created time.Time
}

// sessionStore owns one selection controller per browser session.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	max      int
}

func newSessionStore(max int) *sessionStore {
	return &sessionStore{sessions: make(map[string]*session), max: max}
}

func (s *sessionStore) add(ctrl *selection.Controller) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.max {
		return "", errTooManySessions
	}
	id := uuid.New().String()
	s.sessions[id] = &session{ctrl: ctrl, created: time.Now()}
	activeSessions.Set(float64(len(s.sessions)))
	return id, nil
}

func (s *sessionStore) get(id string) (*selection.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.ctrl, true
}

func (s *sessionStore) remove(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	activeSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	if ok {
		sess.ctrl.Close()
	}
	return ok
}

func (s *sessionStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *sessionStore) closeAll() int {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*session)
	activeSessions.Set(0)
	s.mu.Unlock()

	for _, sess := range all {
		sess.ctrl.Close()
	}
	return len(all)
}

// Targets lists live sessions for the background refresh pool.
func (h *Handler) Targets() []worker.Target {
	h.sessions.mu.RLock()
	defer h.sessions.mu.RUnlock()

	out := make([]worker.Target, 0, len(h.sessions.sessions))
	for id, sess := range h.sessions.sessions {
		out = append(out, worker.Target{ID: id, Refresher: sess.ctrl})
	}
	return out
}
