package repository

import (
	"context"
	"time"

	"warden/internal/models"
	"warden/internal/observability"

	"gorm.io/gorm"
)

// ContentRepository stores the engine's copy of published submissions.
type ContentRepository interface {
	Create(ctx context.Context, content *models.Content) error
	UpdateBody(ctx context.Context, target models.ContentTarget, body string, imageCount int) error
	Get(ctx context.Context, target models.ContentTarget) (*models.Content, error)
	Exists(ctx context.Context, target models.ContentTarget) (bool, error)
	// RecentBodiesByAuthor returns bodies the author published since the given
	// time, newest first.
	RecentBodiesByAuthor(ctx context.Context, authorID uint, since time.Time) ([]string, error)
	// SetConcealed is idempotent.
	SetConcealed(ctx context.Context, target models.ContentTarget, concealed bool) error
	// Delete removes the content together with every report about it.
	Delete(ctx context.Context, target models.ContentTarget) error
}

type contentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db, log: observability.NewRepoLogger("contents")}
}

func (r *contentRepository) Create(ctx context.Context, content *models.Content) error {
	defer track("insert", "contents")()

	if err := r.db.WithContext(ctx).Create(content).Error; err != nil {
		return logErr(ctx, r.log, wrap(err, "create content %s", content.Target()), "create")
	}
	r.log.LogCreate(ctx, map[string]any{"target": content.Target().String(), "author_id": content.AuthorID})
	return nil
}

func (r *contentRepository) UpdateBody(ctx context.Context, target models.ContentTarget, body string, imageCount int) error {
	defer track("update", "contents")()

	res := whereTarget(r.db.WithContext(ctx).Model(&models.Content{}), target).
		Updates(map[string]interface{}{
			"body":        body,
			"image_count": imageCount,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return logErr(ctx, r.log, wrap(res.Error, "update content %s", target), "update")
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Content", target.String())
	}
	r.log.LogUpdate(ctx, map[string]any{"target": target.String()})
	return nil
}

func (r *contentRepository) Get(ctx context.Context, target models.ContentTarget) (*models.Content, error) {
	defer track("select", "contents")()

	var content models.Content
	if err := whereTarget(r.db.WithContext(ctx), target).First(&content).Error; err != nil {
		return nil, notFound(err, "Content", target.String())
	}
	return &content, nil
}

func (r *contentRepository) Exists(ctx context.Context, target models.ContentTarget) (bool, error) {
	defer track("count", "contents")()

	var n int64
	err := whereTarget(r.db.WithContext(ctx).Model(&models.Content{}), target).Count(&n).Error
	return n > 0, wrap(err, "content exists %s", target)
}

func (r *contentRepository) RecentBodiesByAuthor(ctx context.Context, authorID uint, since time.Time) ([]string, error) {
	defer track("select", "contents")()

	var bodies []string
	err := r.db.WithContext(ctx).Model(&models.Content{}).
		Where("author_id = ? AND created_at >= ?", authorID, since.UTC()).
		Order("created_at DESC").
		Pluck("body", &bodies).Error
	return bodies, wrap(err, "recent content by user %d", authorID)
}

func (r *contentRepository) SetConcealed(ctx context.Context, target models.ContentTarget, concealed bool) error {
	defer track("update", "contents")()

	err := whereTarget(r.db.WithContext(ctx).Model(&models.Content{}), target).
		Update("concealed", concealed).Error
	if err != nil {
		return logErr(ctx, r.log, wrap(err, "conceal %s", target), "update")
	}
	r.log.LogUpdate(ctx, map[string]any{"target": target.String(), "concealed": concealed})
	return nil
}

func (r *contentRepository) Delete(ctx context.Context, target models.ContentTarget) error {
	defer track("delete", "contents")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := whereTarget(tx, target).Delete(&models.Content{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Content", target.String())
		}
		return whereTarget(tx, target).Delete(&models.Report{}).Error
	})
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return err
		}
		return logErr(ctx, r.log, wrap(err, "delete content %s", target), "delete")
	}
	r.log.LogDelete(ctx, map[string]any{"target": target.String()})
	return nil
}
