package worker

import (
	"context"
	"testing"
	"time"

	"github.com/ds124wfegd/gradphoto/internal/database"
	"github.com/ds124wfegd/gradphoto/internal/service"
	"github.com/ds124wfegd/gradphoto/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdleService(t *testing.T, sessions int) (service.SessionService, database.SessionRepository) {
	t.Helper()
	repo := database.NewSessionRepository()
	svc := service.NewSessionService(repo, func(id string) *workflow.Machine {
		return workflow.NewMachine(nil, nil, workflow.Options{SessionID: id})
	}, 1<<20)

	for i := 0; i < sessions; i++ {
		_, err := svc.CreateSession()
		require.NoError(t, err)
	}
	return svc, repo
}

func TestCleanupIdleSessions(t *testing.T) {
	svc, repo := newIdleService(t, 3)
	w := NewSessionCleanupWorker(svc, time.Minute, 30*time.Minute)

	// свежие сессии не трогаем
	assert.Equal(t, 0, w.cleanupIdleSessions(time.Now()))
	assert.Equal(t, 3, repo.Count())

	assert.Equal(t, 3, w.cleanupIdleSessions(time.Now().Add(time.Hour)))
	assert.Equal(t, 0, repo.Count())
}

func TestSessionCleanupWorker_StopsOnCancel(t *testing.T) {
	svc, repo := newIdleService(t, 1)
	w := NewSessionCleanupWorker(svc, 10*time.Millisecond, time.Nanosecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return repo.Count() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

func TestSessionCleanupWorker_Disabled(t *testing.T) {
	svc, repo := newIdleService(t, 1)
	w := NewSessionCleanupWorker(svc, 0, time.Minute)

	// без интервала Start сразу возвращается
	w.Start(context.Background())
	assert.Equal(t, 1, repo.Count())
}
