package repository

import (
	"context"
	"testing"
	"time"

	"warden/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewContentRepository(db)
	reports := NewReportRepository(db)
	ctx := context.Background()
	target := models.ContentTarget{Type: models.TargetCommunityPost, ID: 12}

	exists, err := repo.Exists(ctx, target)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Get(ctx, target)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	require.NoError(t, repo.Create(ctx, &models.Content{
		TargetType: target.Type,
		TargetID:   target.ID,
		AuthorID:   3,
		Body:       "hello there",
	}))

	exists, err = repo.Exists(ctx, target)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.UpdateBody(ctx, target, "hello again", 2))
	content, err := repo.Get(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, "hello again", content.Body)
	assert.Equal(t, 2, content.ImageCount)
	assert.False(t, content.Concealed)

	require.NoError(t, repo.SetConcealed(ctx, target, true))
	require.NoError(t, repo.SetConcealed(ctx, target, true), "concealing twice is harmless")
	content, err = repo.Get(ctx, target)
	require.NoError(t, err)
	assert.True(t, content.Concealed)

	fileReport(t, reports, target, 8, models.ReasonSpam)
	require.NoError(t, repo.Delete(ctx, target))

	exists, err = repo.Exists(ctx, target)
	require.NoError(t, err)
	assert.False(t, exists)
	left, err := reports.ListByTarget(ctx, target)
	require.NoError(t, err)
	assert.Empty(t, left, "reports are removed with the content")

	err = repo.Delete(ctx, target)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	err = repo.UpdateBody(ctx, target, "gone", 0)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestContentRepository_RecentBodiesByAuthor(t *testing.T) {
	repo := NewContentRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

	rows := []models.Content{
		{TargetType: models.TargetPost, TargetID: 1, AuthorID: 4, Body: "old", CreatedAt: now.Add(-48 * time.Hour)},
		{TargetType: models.TargetPost, TargetID: 2, AuthorID: 4, Body: "recent", CreatedAt: now.Add(-2 * time.Hour)},
		{TargetType: models.TargetComment, TargetID: 3, AuthorID: 4, Body: "newest", CreatedAt: now.Add(-time.Hour)},
		{TargetType: models.TargetPost, TargetID: 4, AuthorID: 5, Body: "someone else", CreatedAt: now.Add(-time.Hour)},
	}
	for i := range rows {
		require.NoError(t, repo.Create(ctx, &rows[i]))
	}

	bodies, err := repo.RecentBodiesByAuthor(ctx, 4, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "recent"}, bodies)
}
