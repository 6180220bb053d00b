// Package seed populates the database with demo moderation data for
// development and load testing.
package seed

import (
	"context"
	"fmt"
	"log"

	"warden/internal/models"
	"warden/internal/repository"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumAuthors       int
	NumContents      int
	NumReports       int
	NumWarnings      int
	ConcealThreshold int
	ShouldClean      bool
	// RandomSeed fixes the fake data. Zero picks a random seed.
	RandomSeed int64
}

// Summary reports what Seed wrote.
type Summary struct {
	Contents  int
	Reports   int
	Warnings  int
	Concealed int
}

// adminUserID issues seeded penalties.
const adminUserID uint = 1

// Seed fills the database with content, reports and warnings. Content that
// ends up with ConcealThreshold or more pending reports is concealed, the
// same state report intake would have produced.
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	if opts.NumAuthors < 2 {
		return nil, fmt.Errorf("need at least 2 authors, got %d", opts.NumAuthors)
	}
	if opts.ConcealThreshold <= 0 {
		opts.ConcealThreshold = 3
	}
	log.Printf("Seeding %d contents, %d reports across %d users", opts.NumContents, opts.NumReports, opts.NumAuthors)

	if opts.ShouldClean {
		if err := Clean(db); err != nil {
			return nil, fmt.Errorf("clean: %w", err)
		}
	}

	ctx := context.Background()
	f := NewFactory(db, opts.RandomSeed)
	summary := &Summary{}

	contents := make([]*models.Content, 0, opts.NumContents)
	for i := 0; i < opts.NumContents; i++ {
		contents = append(contents, f.BuildContent(f.pick(opts.NumAuthors, 0)))
	}
	if err := f.CreateContents(contents); err != nil {
		return nil, fmt.Errorf("create contents: %w", err)
	}
	summary.Contents = len(contents)

	if len(contents) > 0 {
		reports := repository.NewReportRepository(db)
		for i := 0; i < opts.NumReports; i++ {
			target := contents[f.faker.Number(0, len(contents)-1)]
			report := f.BuildReport(f.pick(opts.NumAuthors, target.AuthorID), target.Target())
			created, err := reports.CreatePending(ctx, report)
			if err != nil {
				return nil, fmt.Errorf("create report: %w", err)
			}
			if created {
				summary.Reports++
			}
		}

		concealed, err := concealHeavilyReported(ctx, db, opts.ConcealThreshold)
		if err != nil {
			return nil, err
		}
		summary.Concealed = concealed
	}

	for i := 0; i < opts.NumWarnings; i++ {
		w := f.BuildWarning(f.pick(opts.NumAuthors, adminUserID), adminUserID)
		if err := db.Create(w).Error; err != nil {
			return nil, fmt.Errorf("create warning: %w", err)
		}
		summary.Warnings++
	}

	log.Printf("Seeded %d contents, %d reports, %d warnings; %d contents concealed",
		summary.Contents, summary.Reports, summary.Warnings, summary.Concealed)
	return summary, nil
}

func concealHeavilyReported(ctx context.Context, db *gorm.DB, threshold int) (int, error) {
	var rows []repository.PendingGroupRow
	err := db.WithContext(ctx).
		Model(&models.Report{}).
		Select("target_type, target_id, COUNT(*) AS count").
		Where("status = ?", models.ReportStatusPending).
		Group("target_type, target_id").
		Having("COUNT(*) >= ?", threshold).
		Scan(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("count pending reports: %w", err)
	}

	contentRepo := repository.NewContentRepository(db)
	for _, row := range rows {
		if err := contentRepo.SetConcealed(ctx, row.Target(), true); err != nil {
			return 0, fmt.Errorf("conceal %s: %w", row.Target(), err)
		}
	}
	return len(rows), nil
}

// Clean removes seeded records. Banned terms are kept.
func Clean(db *gorm.DB) error {
	all := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{
		&models.Report{},
		&models.Penalty{},
		&models.TrustStanding{},
		&models.Content{},
	} {
		if err := all.Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
