package database

import (
	"sync"
	"time"

	"github.com/ds124wfegd/gradphoto/internal/workflow"
)

// Session ties a workflow machine to the id handed to the client.
type Session struct {
	ID        string
	Machine   *workflow.Machine
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func NewSession(id string, machine *workflow.Machine, now time.Time) *Session {
	return &Session{ID: id, Machine: machine, CreatedAt: now, lastSeen: now}
}

func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type SessionRepository interface {
	Save(session *Session) error
	FindByID(id string) (*Session, error)
	Delete(id string) error
	// DeleteIdle removes sessions not seen since cutoff and returns them.
	DeleteIdle(cutoff time.Time) []*Session
	DeleteAll() []*Session
	Count() int
}

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}
