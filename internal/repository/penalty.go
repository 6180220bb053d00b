package repository

import (
	"context"
	"time"

	"warden/internal/models"
	"warden/internal/observability"

	"gorm.io/gorm"
)

// PenaltyRepository stores issued sanctions.
type PenaltyRepository interface {
	Create(ctx context.Context, penalty *models.Penalty) error
	// ListActive returns the permanent penalties and unexpired timed penalties at now.
	ListActive(ctx context.Context, userID uint, now time.Time) ([]models.Penalty, error)
	// DeleteActive removes the penalties ListActive would return.
	DeleteActive(ctx context.Context, userID uint, now time.Time) (int64, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Penalty, error)
	// ListExpiredBetween returns timed penalties whose expiry falls in (from, to].
	ListExpiredBetween(ctx context.Context, from, to time.Time) ([]models.Penalty, error)
}

type penaltyRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPenaltyRepository creates a new penalty repository
func NewPenaltyRepository(db *gorm.DB) PenaltyRepository {
	return &penaltyRepository{db: db, log: observability.NewRepoLogger("penalties")}
}

func activeScope(db *gorm.DB, userID uint, now time.Time) *gorm.DB {
	return db.Where("user_id = ?", userID).
		Where("kind = ? OR (kind = ? AND expires_at > ?)", models.PenaltyPermanent, models.PenaltyTimed, now.UTC())
}

func (r *penaltyRepository) Create(ctx context.Context, penalty *models.Penalty) error {
	defer track("insert", "penalties")()

	if penalty.CreatedAt.IsZero() {
		penalty.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(penalty).Error; err != nil {
		return logErr(ctx, r.log, wrap(err, "create penalty"), "create")
	}
	r.log.LogCreate(ctx, map[string]any{
		"penalty_id": penalty.ID,
		"user_id":    penalty.UserID,
		"kind":       penalty.Kind,
	})
	return nil
}

func (r *penaltyRepository) ListActive(ctx context.Context, userID uint, now time.Time) ([]models.Penalty, error) {
	defer track("select", "penalties")()

	var penalties []models.Penalty
	err := activeScope(r.db.WithContext(ctx), userID, now).
		Order("created_at DESC, id DESC").
		Find(&penalties).Error
	return penalties, wrap(err, "active penalties for user %d", userID)
}

func (r *penaltyRepository) DeleteActive(ctx context.Context, userID uint, now time.Time) (int64, error) {
	defer track("delete", "penalties")()

	res := activeScope(r.db.WithContext(ctx), userID, now).Delete(&models.Penalty{})
	if res.Error != nil {
		return 0, logErr(ctx, r.log, wrap(res.Error, "revoke penalties for user %d", userID), "delete")
	}
	r.log.LogDelete(ctx, map[string]any{"user_id": userID, "deleted": res.RowsAffected})
	return res.RowsAffected, nil
}

func (r *penaltyRepository) ListByUser(ctx context.Context, userID uint) ([]models.Penalty, error) {
	defer track("select", "penalties")()

	var penalties []models.Penalty
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&penalties).Error
	return penalties, wrap(err, "penalty history for user %d", userID)
}

func (r *penaltyRepository) ListExpiredBetween(ctx context.Context, from, to time.Time) ([]models.Penalty, error) {
	defer track("select", "penalties")()

	var penalties []models.Penalty
	err := r.db.WithContext(ctx).
		Where("kind = ? AND expires_at > ? AND expires_at <= ?", models.PenaltyTimed, from.UTC(), to.UTC()).
		Order("expires_at ASC").
		Find(&penalties).Error
	return penalties, wrap(err, "expired penalties")
}
