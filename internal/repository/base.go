// Package repository provides data access layer implementations for the
// moderation records.
package repository

import (
	"context"
	"errors"
	"fmt"

	"warden/internal/models"
	"warden/internal/observability"

	"gorm.io/gorm"
)

// track starts a latency observation for a query against table.
func track(operation, table string) func() {
	return observability.TrackQuery(operation, table)
}

// notFound converts gorm's sentinel into the application's not-found error.
func notFound(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}

func wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func whereTarget(db *gorm.DB, target models.ContentTarget) *gorm.DB {
	return db.Where("target_type = ? AND target_id = ?", target.Type, target.ID)
}

func logErr(ctx context.Context, l *observability.RepoLogger, err error, op string) error {
	if err != nil {
		l.LogError(ctx, err, op)
	}
	return err
}
