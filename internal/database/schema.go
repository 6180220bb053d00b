package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"warden/internal/config"
	"warden/internal/middleware"

	"gorm.io/gorm"
)

// DB_SCHEMA_MODE values.
//
//	sql    embedded SQL migrations only
//	auto   gorm AutoMigrate only; refused in production unless explicitly allowed
//	hybrid SQL migrations, plus AutoMigrate outside production
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// schemaPlan is what ApplySchema will do for one database and config.
type schemaPlan struct {
	mode    string
	dialect string
	sql     bool
	auto    bool
}

// SchemaStatus describes a schemaPlan plus migration bookkeeping.
type SchemaStatus struct {
	Mode               string
	Environment        string
	Dialect            string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
}

func productionLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

// planSchema resolves the mode against the environment and dialect. The SQL
// files are written for Postgres, so every other dialect gets AutoMigrate.
func planSchema(db *gorm.DB, cfg *config.Config) (schemaPlan, error) {
	plan := schemaPlan{
		mode:    strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode)),
		dialect: db.Dialector.Name(),
	}
	if plan.mode == "" {
		plan.mode = SchemaModeHybrid
	}

	prod := productionLike(cfg.Env)
	switch plan.mode {
	case SchemaModeSQL:
		plan.sql = true
	case SchemaModeAuto:
		if prod && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.auto = true
	case SchemaModeHybrid:
		plan.sql = true
		plan.auto = !prod
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.mode)
	}

	if plan.dialect != "postgres" {
		plan.sql, plan.auto = false, true
	}
	return plan, nil
}

// ApplySchema brings the database schema up to date.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(db, cfg)
	if err != nil {
		return err
	}

	if plan.sql {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if plan.auto {
		middleware.Logger.Info("running automigrate",
			slog.String("mode", plan.mode),
			slog.String("dialect", plan.dialect),
			slog.Bool("destructive_allowed", cfg.DBAutoMigrateAllowDestructive),
		)
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// GetSchemaStatus reports the plan and, when SQL migrations are in play,
// which ones are still pending.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planSchema(db, cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               plan.mode,
		Environment:        cfg.Env,
		Dialect:            plan.dialect,
		WillRunSQL:         plan.sql,
		WillRunAutoMigrate: plan.auto,
	}
	if !plan.sql {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied
	status.PendingMigrations = pendingMigrations(GetMigrations(), applied)
	return status, nil
}
