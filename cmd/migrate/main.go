// Command migrate inspects and changes the Warden schema.
//
//	migrate up              apply pending SQL migrations
//	migrate auto            run gorm AutoMigrate
//	migrate status          show the schema plan and pending versions
//	migrate down <version>  roll back one applied version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"warden/internal/config"
	"warden/internal/database"

	"gorm.io/gorm"
)

var errUsage = errors.New("usage: migrate <up|auto|status|down> [version]")

type command func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error

var commands = map[string]command{
	"up": func(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
		return database.RunMigrations(ctx, db)
	},
	"auto": func(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
		cfg.DBSchemaMode = database.SchemaModeAuto
		return database.ApplySchema(ctx, db, cfg)
	},
	"status": printStatus,
	"down":   rollback,
}

func main() {
	flag.Parse()
	if err := run(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return errUsage
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}

	if err := cmd(context.Background(), db, cfg, args[1:]); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	log.Printf("%s: ok", args[0])
	return nil
}

func printStatus(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("mode:      %s (%s, %s)\n", status.Mode, status.Environment, status.Dialect)
	fmt.Printf("sql:       %t\n", status.WillRunSQL)
	fmt.Printf("automigr.: %t\n", status.WillRunAutoMigrate)
	fmt.Printf("applied:   %v\n", status.AppliedVersions)
	for _, m := range status.PendingMigrations {
		fmt.Printf("pending:   %s\n", m.String())
	}
	return nil
}

func rollback(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}
	return database.RollbackMigration(ctx, db, version)
}
