package repository

import (
	"context"
	"strings"

	"warden/internal/models"
	"warden/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BannedTermRepository manages the administrator-maintained block list.
type BannedTermRepository interface {
	List(ctx context.Context) ([]models.BannedTerm, error)
	// Add inserts term; created is false when it was already listed.
	Add(ctx context.Context, term string, createdBy uint) (created bool, err error)
	Remove(ctx context.Context, term string) (bool, error)
}

type bannedTermRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewBannedTermRepository creates a new banned term repository
func NewBannedTermRepository(db *gorm.DB) BannedTermRepository {
	return &bannedTermRepository{db: db, log: observability.NewRepoLogger("banned_terms")}
}

func (r *bannedTermRepository) List(ctx context.Context) ([]models.BannedTerm, error) {
	defer track("select", "banned_terms")()

	var terms []models.BannedTerm
	err := r.db.WithContext(ctx).Order("term ASC").Find(&terms).Error
	return terms, wrap(err, "list banned terms")
}

func (r *bannedTermRepository) Add(ctx context.Context, term string, createdBy uint) (bool, error) {
	defer track("insert", "banned_terms")()

	term = strings.TrimSpace(term)
	if term == "" {
		return false, models.NewValidationError("term is required")
	}
	row := models.BannedTerm{Term: term, CreatedBy: createdBy}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, logErr(ctx, r.log, wrap(res.Error, "add banned term"), "create")
	}
	if res.RowsAffected > 0 {
		r.log.LogCreate(ctx, map[string]any{"term_id": row.ID, "created_by": createdBy})
	}
	return res.RowsAffected > 0, nil
}

func (r *bannedTermRepository) Remove(ctx context.Context, term string) (bool, error) {
	defer track("delete", "banned_terms")()

	res := r.db.WithContext(ctx).Where("term = ?", strings.TrimSpace(term)).Delete(&models.BannedTerm{})
	if res.Error != nil {
		return false, logErr(ctx, r.log, wrap(res.Error, "remove banned term"), "delete")
	}
	if res.RowsAffected > 0 {
		r.log.LogDelete(ctx, map[string]any{"deleted": res.RowsAffected})
	}
	return res.RowsAffected > 0, nil
}
