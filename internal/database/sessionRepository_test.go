package database

import (
	"testing"
	"time"

	"github.com/ds124wfegd/gradphoto/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository(t *testing.T) {
	repo := NewSessionRepository()
	now := time.Now()

	require.NoError(t, repo.Save(NewSession("a", nil, now)))
	require.NoError(t, repo.Save(NewSession("b", nil, now)))
	assert.Equal(t, 2, repo.Count())

	s, err := repo.FindByID("a")
	require.NoError(t, err)
	assert.Equal(t, "a", s.ID)

	_, err = repo.FindByID("missing")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	require.NoError(t, repo.Delete("a"))
	assert.ErrorIs(t, repo.Delete("a"), entity.ErrSessionNotFound)
	assert.Equal(t, 1, repo.Count())
}

func TestSessionRepositoryDeleteIdle(t *testing.T) {
	repo := NewSessionRepository()
	start := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)

	idle := NewSession("idle", nil, start)
	active := NewSession("active", nil, start)
	active.Touch(start.Add(20 * time.Minute))
	require.NoError(t, repo.Save(idle))
	require.NoError(t, repo.Save(active))

	removed := repo.DeleteIdle(start.Add(10 * time.Minute))
	require.Len(t, removed, 1)
	assert.Equal(t, "idle", removed[0].ID)

	_, err := repo.FindByID("active")
	assert.NoError(t, err)
	assert.Equal(t, 1, repo.Count())
}

func TestSessionRepositoryDeleteAll(t *testing.T) {
	repo := NewSessionRepository()
	now := time.Now()

	require.NoError(t, repo.Save(NewSession("a", nil, now)))
	require.NoError(t, repo.Save(NewSession("b", nil, now.Add(time.Hour))))

	assert.Len(t, repo.DeleteAll(), 2)
	assert.Equal(t, 0, repo.Count())
	assert.Empty(t, repo.DeleteAll())
}
