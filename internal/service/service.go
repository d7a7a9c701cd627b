package service

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/ds124wfegd/gradphoto/internal/database"
	"github.com/ds124wfegd/gradphoto/internal/entity"
	"github.com/ds124wfegd/gradphoto/internal/workflow"
)

type SessionService interface {
	CreateSession() (entity.SessionResponse, error)
	GetSession(id string) (entity.SessionResponse, error)
	DeleteSession(id string) error

	SelectFile(id string, file *multipart.FileHeader) (entity.SessionResponse, error)
	SetCaption(id, caption string) (entity.SessionResponse, error)
	Generate(id string) (entity.SessionResponse, error)
	Retry(id string) (entity.SessionResponse, error)
	Reset(id string) (entity.SessionResponse, error)

	FinalImage(id string) (data []byte, mimeType, filename string, err error)
	DataURL(id string) (entity.DataURLResponse, error)
	Share(id string) (entity.ShareResponse, error)
	Mailto(id string) (entity.MailtoResponse, error)

	// CleanupIdle closes and forgets sessions idle longer than ttl.
	CleanupIdle(now time.Time, ttl time.Duration) int
	// CloseAll forgets every session and waits, until ctx is done, for
	// in-flight generations to report back.
	CloseAll(ctx context.Context) (int, error)
}

// MachineFactory builds the workflow for a new session.
type MachineFactory func(sessionID string) *workflow.Machine

type sessionService struct {
	repo           database.SessionRepository
	newMachine     MachineFactory
	maxUploadBytes int64
	now            func() time.Time
}

func NewSessionService(repo database.SessionRepository, newMachine MachineFactory, maxUploadBytes int64) SessionService {
	return &sessionService{
		repo:           repo,
		newMachine:     newMachine,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}
