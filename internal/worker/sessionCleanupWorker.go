package worker

import (
	"context"
	"time"

	"github.com/ds124wfegd/gradphoto/internal/service"

	"github.com/sirupsen/logrus"
)

type SessionCleanupWorker struct {
	sessionService service.SessionService
	interval       time.Duration
	ttl            time.Duration
}

func NewSessionCleanupWorker(sessionService service.SessionService, interval, ttl time.Duration) *SessionCleanupWorker {
	return &SessionCleanupWorker{
		sessionService: sessionService,
		interval:       interval,
		ttl:            ttl,
	}
}

// Start blocks until ctx is cancelled.
func (w *SessionCleanupWorker) Start(ctx context.Context) {
	if w.interval <= 0 || w.ttl <= 0 {
		logrus.Warn("Session cleanup worker disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Session cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Session cleanup worker stopped")
			return
		case now := <-ticker.C:
			w.cleanupIdleSessions(now)
		}
	}
}

// cleanupIdleSessions удаляет сессии, к которым давно не обращались
func (w *SessionCleanupWorker) cleanupIdleSessions(now time.Time) int {
	removed := w.sessionService.CleanupIdle(now, w.ttl)
	if removed == 0 {
		logrus.Debug("No idle sessions found for cleanup")
		return 0
	}

	logrus.Infof("Idle sessions cleanup completed: %d removed", removed)
	return removed
}
