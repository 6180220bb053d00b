package repository

import (
	"context"
	"time"

	"warden/internal/models"
	"warden/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PendingGroupRow is one row of the moderation queue: a target with at least
// one pending report.
type PendingGroupRow struct {
	TargetType     models.TargetType
	TargetID       uint
	Count          int64
	LatestReportID uint
}

// Target returns the grouped target.
func (r PendingGroupRow) Target() models.ContentTarget {
	return models.ContentTarget{Type: r.TargetType, ID: r.TargetID}
}

// ReportRepository defines data operations for user reports.
type ReportRepository interface {
	// CreatePending inserts a pending report. It returns false without error
	// when the reporter already has a pending report on the same target.
	CreatePending(ctx context.Context, report *models.Report) (bool, error)
	PendingByTarget(ctx context.Context, target models.ContentTarget) ([]models.Report, error)
	CountPending(ctx context.Context, target models.ContentTarget) (int64, error)
	// ResolvePending moves every pending report on target to status and returns
	// the rows this call transitioned. Rows resolved concurrently are skipped.
	ResolvePending(ctx context.Context, target models.ContentTarget, status models.ReportStatus, adminID uint, at time.Time) ([]models.Report, error)
	ListPendingGroups(ctx context.Context, limit, offset int) ([]PendingGroupRow, int64, error)
	ListByTarget(ctx context.Context, target models.ContentTarget) ([]models.Report, error)
	ListByReporter(ctx context.Context, reporterID uint, limit int) ([]models.Report, error)
	DeleteByTarget(ctx context.Context, target models.ContentTarget) (int64, error)
}

type reportRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db, log: observability.NewRepoLogger("reports")}
}

func (r *reportRepository) CreatePending(ctx context.Context, report *models.Report) (bool, error) {
	defer track("insert", "reports")()

	report.Status = models.ReportStatusPending
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	// The partial unique index on (reporter, target) WHERE pending turns a
	// duplicate into a no-op insert.
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(report)
	if res.Error != nil {
		return false, logErr(ctx, r.log, wrap(res.Error, "create report"), "create")
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	r.log.LogCreate(ctx, map[string]any{
		"report_id":   report.ID,
		"target":      report.Target().String(),
		"reporter_id": report.ReporterID,
	})
	return true, nil
}

func (r *reportRepository) PendingByTarget(ctx context.Context, target models.ContentTarget) ([]models.Report, error) {
	defer track("select", "reports")()

	var reports []models.Report
	err := whereTarget(r.db.WithContext(ctx), target).
		Where("status = ?", models.ReportStatusPending).
		Order("created_at ASC, id ASC").
		Find(&reports).Error
	return reports, wrap(err, "pending reports for %s", target)
}

func (r *reportRepository) CountPending(ctx context.Context, target models.ContentTarget) (int64, error) {
	defer track("count", "reports")()

	var n int64
	err := whereTarget(r.db.WithContext(ctx).Model(&models.Report{}), target).
		Where("status = ?", models.ReportStatusPending).
		Count(&n).Error
	return n, wrap(err, "count pending reports for %s", target)
}

func (r *reportRepository) ResolvePending(ctx context.Context, target models.ContentTarget, status models.ReportStatus, adminID uint, at time.Time) ([]models.Report, error) {
	defer track("update", "reports")()

	at = at.UTC()
	var resolved []models.Report
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending []models.Report
		if err := whereTarget(tx, target).
			Where("status = ?", models.ReportStatusPending).
			Order("id ASC").
			Find(&pending).Error; err != nil {
			return err
		}

		for _, report := range pending {
			res := tx.Model(&models.Report{}).
				Where("id = ? AND status = ?", report.ID, models.ReportStatusPending).
				Updates(map[string]interface{}{
					"status":              status,
					"resolved_at":         at,
					"resolved_by_user_id": adminID,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			report.Status = status
			report.ResolvedAt = &at
			resolver := adminID
			report.ResolvedByUserID = &resolver
			resolved = append(resolved, report)
		}
		return nil
	})
	if err != nil {
		return nil, logErr(ctx, r.log, wrap(err, "resolve reports for %s", target), "resolve")
	}

	r.log.LogUpdate(ctx, map[string]any{
		"target":   target.String(),
		"status":   status,
		"resolved": len(resolved),
		"admin_id": adminID,
	})
	return resolved, nil
}

func (r *reportRepository) ListPendingGroups(ctx context.Context, limit, offset int) ([]PendingGroupRow, int64, error) {
	defer track("select", "reports")()

	db := r.db.WithContext(ctx)
	grouped := db.Model(&models.Report{}).
		Select("target_type, target_id").
		Where("status = ?", models.ReportStatusPending).
		Group("target_type, target_id")

	var total int64
	if err := db.Table("(?) AS grouped", grouped).Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "count report groups")
	}

	var rows []PendingGroupRow
	err := db.Model(&models.Report{}).
		Select("target_type, target_id, COUNT(*) AS count, MAX(id) AS latest_report_id").
		Where("status = ?", models.ReportStatusPending).
		Group("target_type, target_id").
		Order("count DESC, latest_report_id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, wrap(err, "list report groups")
	}
	return rows, total, nil
}

func (r *reportRepository) ListByTarget(ctx context.Context, target models.ContentTarget) ([]models.Report, error) {
	defer track("select", "reports")()

	var reports []models.Report
	err := whereTarget(r.db.WithContext(ctx), target).
		Order("created_at DESC, id DESC").
		Find(&reports).Error
	return reports, wrap(err, "reports for %s", target)
}

func (r *reportRepository) ListByReporter(ctx context.Context, reporterID uint, limit int) ([]models.Report, error) {
	defer track("select", "reports")()

	var reports []models.Report
	q := r.db.WithContext(ctx).
		Where("reporter_id = ?", reporterID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&reports).Error
	return reports, wrap(err, "reports by user %d", reporterID)
}

func (r *reportRepository) DeleteByTarget(ctx context.Context, target models.ContentTarget) (int64, error) {
	defer track("delete", "reports")()

	res := whereTarget(r.db.WithContext(ctx), target).Delete(&models.Report{})
	if res.Error != nil {
		return 0, logErr(ctx, r.log, wrap(res.Error, "delete reports for %s", target), "delete")
	}
	r.log.LogDelete(ctx, map[string]any{"target": target.String(), "deleted": res.RowsAffected})
	return res.RowsAffected, nil
}
