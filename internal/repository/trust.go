package repository

import (
	"context"
	"errors"
	"time"

	"warden/internal/models"
	"warden/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrustRepository tracks false-report counters per user.
type TrustRepository interface {
	// Get returns the user's standing, or a zero standing if none was recorded.
	Get(ctx context.Context, userID uint) (*models.TrustStanding, error)
	// IncrementFalseReports adds one to each listed user's counter and returns
	// the counts after the increment.
	IncrementFalseReports(ctx context.Context, userIDs []uint) (map[uint]int, error)
}

type trustRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewTrustRepository creates a new trust standing repository
func NewTrustRepository(db *gorm.DB) TrustRepository {
	return &trustRepository{db: db, log: observability.NewRepoLogger("trust_standings")}
}

func (r *trustRepository) Get(ctx context.Context, userID uint) (*models.TrustStanding, error) {
	defer track("select", "trust_standings")()

	var standing models.TrustStanding
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&standing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.TrustStanding{UserID: userID}, nil
	}
	if err != nil {
		return nil, wrap(err, "trust standing for user %d", userID)
	}
	return &standing, nil
}

func (r *trustRepository) IncrementFalseReports(ctx context.Context, userIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}
	defer track("upsert", "trust_standings")()

	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range userIDs {
			standing := models.TrustStanding{UserID: id, FalseReportCount: 1, UpdatedAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"false_report_count": gorm.Expr("trust_standings.false_report_count + 1"),
					"updated_at":         now,
				}),
			}).Create(&standing).Error
			if err != nil {
				return err
			}
		}

		var standings []models.TrustStanding
		if err := tx.Where("user_id IN ?", userIDs).Find(&standings).Error; err != nil {
			return err
		}
		for _, s := range standings {
			counts[s.UserID] = s.FalseReportCount
		}
		return nil
	})
	if err != nil {
		return nil, logErr(ctx, r.log, wrap(err, "increment false reports"), "increment")
	}

	r.log.LogUpdate(ctx, map[string]any{"users": len(userIDs), "op": "false_report_increment"})
	return counts, nil
}
