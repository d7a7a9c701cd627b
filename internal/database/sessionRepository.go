package database

import (
	"time"

	"github.com/ds124wfegd/gradphoto/internal/entity"
)

func NewSessionRepository() SessionRepository {
	return &memorySessionRepository{sessions: make(map[string]*Session)}
}

func (r *memorySessionRepository) Save(session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = session
	return nil
}

func (r *memorySessionRepository) FindByID(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return session, nil
}

func (r *memorySessionRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return entity.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *memorySessionRepository) DeleteIdle(cutoff time.Time) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []*Session
	for id, session := range r.sessions {
		if session.LastSeen().Before(cutoff) {
			removed = append(removed, session)
			delete(r.sessions, id)
		}
	}
	return removed
}

func (r *memorySessionRepository) DeleteAll() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		removed = append(removed, session)
	}
	r.sessions = make(map[string]*Session)
	return removed
}

func (r *memorySessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
