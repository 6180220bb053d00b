package repository

import (
	"context"
	"testing"

	"warden/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBannedTermRepository(t *testing.T) {
	repo := NewBannedTermRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Add(ctx, "  scam  ", 1)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Add(ctx, "scam", 2)
	require.NoError(t, err)
	assert.False(t, created, "terms are unique")

	_, err = repo.Add(ctx, "alpha", 1)
	require.NoError(t, err)

	_, err = repo.Add(ctx, "   ", 1)
	assert.True(t, models.HasCode(err, models.CodeValidation))

	terms, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, "alpha", terms[0].Term)
	assert.Equal(t, "scam", terms[1].Term)

	removed, err := repo.Remove(ctx, "scam")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove(ctx, "scam")
	require.NoError(t, err)
	assert.False(t, removed)
}
