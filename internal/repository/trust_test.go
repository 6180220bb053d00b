package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrustRepository_GetDefaultsToZero(t *testing.T) {
	repo := NewTrustRepository(newTestDB(t))

	standing, err := repo.Get(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, uint(77), standing.UserID)
	assert.Zero(t, standing.FalseReportCount)
}

func TestTrustRepository_IncrementFalseReports(t *testing.T) {
	repo := NewTrustRepository(newTestDB(t))
	ctx := context.Background()

	counts, err := repo.IncrementFalseReports(ctx, []uint{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{1: 1, 2: 1}, counts)

	counts, err = repo.IncrementFalseReports(ctx, []uint{1})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{1: 2}, counts)

	standing, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, standing.FalseReportCount)

	standing, err = repo.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, standing.FalseReportCount)
}

func TestTrustRepository_IncrementNothing(t *testing.T) {
	repo := NewTrustRepository(newTestDB(t))

	counts, err := repo.IncrementFalseReports(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestTrustRepository_GetPropagatesErrors(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTrustRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "trust_standings"`).WillReturnError(errors.New("timeout"))

	standing, err := repo.Get(context.Background(), 3)
	assert.Nil(t, standing)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
