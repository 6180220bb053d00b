package seed

import (
	"time"

	"warden/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var reportReasons = []string{
	string(models.ReasonSpam),
	string(models.ReasonAbuse),
	string(models.ReasonSexual),
	string(models.ReasonViolence),
	string(models.ReasonHate),
	string(models.ReasonMisinformation),
	string(models.ReasonPrivacy),
	string(models.ReasonOther),
}

// Factory builds moderation records with plausible fake data. A fixed
// random seed makes the output reproducible.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	now   func() time.Time
	// per-type target id counters
	nextTarget map[models.TargetType]uint
}

// NewFactory creates a Factory bound to db. seed 0 picks a random seed.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	return &Factory{
		db:         db,
		faker:      gofakeit.New(seed),
		now:        func() time.Time { return time.Now().UTC() },
		nextTarget: make(map[models.TargetType]uint),
	}
}

// BuildContent returns an unsaved content record authored by authorID with a
// created_at somewhere in the last week.
func (f *Factory) BuildContent(authorID uint, overrides ...func(*models.Content)) *models.Content {
	targetType := models.TargetTypes[f.faker.Number(0, len(models.TargetTypes)-1)]
	f.nextTarget[targetType]++

	body := f.faker.Paragraph(1, f.faker.Number(1, 4), f.faker.Number(6, 14), " ")
	if targetType == models.TargetComment || targetType == models.TargetCommunityComment {
		body = f.faker.Sentence(f.faker.Number(4, 16))
	}

	content := &models.Content{
		TargetType: targetType,
		TargetID:   f.nextTarget[targetType],
		AuthorID:   authorID,
		Body:       body,
		CreatedAt:  f.now().Add(-time.Duration(f.faker.Number(0, 7*24*60)) * time.Minute),
	}
	if f.faker.Number(0, 4) == 0 {
		content.ImageCount = f.faker.Number(1, 4)
	}
	for _, override := range overrides {
		override(content)
	}
	return content
}

// CreateContents persists contents in batches.
func (f *Factory) CreateContents(contents []*models.Content) error {
	if len(contents) == 0 {
		return nil
	}
	return f.db.CreateInBatches(contents, 200).Error
}

// BuildReport returns an unsaved pending report by reporterID against target.
func (f *Factory) BuildReport(reporterID uint, target models.ContentTarget) *models.Report {
	report := &models.Report{
		TargetType: target.Type,
		TargetID:   target.ID,
		ReporterID: reporterID,
		Reason:     models.ReportReason(f.faker.RandomString(reportReasons)),
		CreatedAt:  f.now().Add(-time.Duration(f.faker.Number(0, 48*60)) * time.Minute),
	}
	if report.Reason == models.ReasonOther {
		report.Detail = f.faker.Sentence(8)
	}
	return report
}

// BuildWarning returns an unsaved warning penalty for userID.
func (f *Factory) BuildWarning(userID, adminID uint) *models.Penalty {
	return &models.Penalty{
		UserID:    userID,
		Kind:      models.PenaltyWarning,
		Reason:    f.faker.Sentence(6),
		IssuedBy:  adminID,
		CreatedAt: f.now().Add(-time.Duration(f.faker.Number(1, 30*24)) * time.Hour),
	}
}

// pick returns a random id in [1, n] other than exclude.
func (f *Factory) pick(n int, exclude uint) uint {
	if n <= 1 {
		return 1
	}
	for {
		id := uint(f.faker.Number(1, n))
		if id != exclude {
			return id
		}
	}
}
