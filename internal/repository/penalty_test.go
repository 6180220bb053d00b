package repository

import (
	"context"
	"testing"
	"time"

	"warden/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPenalty(t *testing.T, repo PenaltyRepository, userID uint, kind models.PenaltyKind, created time.Time, expires *time.Time) *models.Penalty {
	t.Helper()
	p := &models.Penalty{
		UserID:    userID,
		Kind:      kind,
		Reason:    "test",
		IssuedBy:  1,
		CreatedAt: created,
		ExpiresAt: expires,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	require.NotZero(t, p.ID)
	return p
}

func TestPenaltyRepository_ActiveScope(t *testing.T) {
	repo := NewPenaltyRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	past := now.Add(-2 * time.Hour)
	future := now.Add(48 * time.Hour)

	seedPenalty(t, repo, 5, models.PenaltyWarning, now.Add(-4*time.Hour), nil)
	seedPenalty(t, repo, 5, models.PenaltyTimed, now.Add(-3*time.Hour), &past)
	active := seedPenalty(t, repo, 5, models.PenaltyTimed, now.Add(-1*time.Hour), &future)
	seedPenalty(t, repo, 6, models.PenaltyPermanent, now.Add(-1*time.Hour), nil)

	list, err := repo.ListActive(ctx, 5, now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)

	list, err = repo.ListActive(ctx, 6, now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.PenaltyPermanent, list[0].Kind)

	deleted, err := repo.DeleteActive(ctx, 5, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	history, err := repo.ListByUser(ctx, 5)
	require.NoError(t, err)
	require.Len(t, history, 2, "warnings and expired penalties stay in history")
	assert.Equal(t, models.PenaltyTimed, history[0].Kind, "newest first")
	assert.Equal(t, models.PenaltyWarning, history[1].Kind)
}

func TestPenaltyRepository_ListExpiredBetween(t *testing.T) {
	repo := NewPenaltyRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	before := base.Add(-time.Hour)
	inside := base.Add(3 * time.Minute)
	edge := base.Add(5 * time.Minute)
	after := base.Add(time.Hour)

	seedPenalty(t, repo, 1, models.PenaltyTimed, base.Add(-24*time.Hour), &before)
	in := seedPenalty(t, repo, 2, models.PenaltyTimed, base.Add(-24*time.Hour), &inside)
	onEdge := seedPenalty(t, repo, 3, models.PenaltyTimed, base.Add(-24*time.Hour), &edge)
	seedPenalty(t, repo, 4, models.PenaltyTimed, base.Add(-24*time.Hour), &after)
	seedPenalty(t, repo, 5, models.PenaltyPermanent, base.Add(-24*time.Hour), nil)

	expired, err := repo.ListExpiredBetween(ctx, base, base.Add(5*time.Minute))
	require.NoError(t, err)
	require.Len(t, expired, 2)
	assert.Equal(t, in.ID, expired[0].ID)
	assert.Equal(t, onEdge.ID, expired[1].ID)
}
