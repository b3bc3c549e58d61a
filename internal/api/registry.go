package api

import (
	"sync"

	"scriptdna/internal/pipeline"
	"scriptdna/internal/services"
)

const defaultMaxSessions = 64

// registry holds the live sessions.
type registry struct {
	mu       sync.RWMutex
	sessions map[string]*pipeline.Session
	max      int
}

func newRegistry(max int) *registry {
	if max <= 0 {
		max = defaultMaxSessions
	}
	return &registry{sessions: make(map[string]*pipeline.Session), max: max}
}

func (r *registry) add(session *pipeline.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) >= r.max {
		return services.Wrap(services.ErrBusy, "api", "create session", "session limit reached; delete an existing session first", nil)
	}
	r.sessions[session.ID()] = session
	return nil
}

func (r *registry) get(id string) (*pipeline.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

// remove resets and forgets a session so any in-flight result is dropped.
func (r *registry) remove(id string) bool {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		session.Reset()
	}
	return ok
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
