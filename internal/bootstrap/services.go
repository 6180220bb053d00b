package bootstrap

import (
	"fmt"

	"warden/internal/classifier"
	"warden/internal/config"
	"warden/internal/featureflags"
	"warden/internal/moderation"
	"warden/internal/notifications"
	"warden/internal/repository"
	"warden/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Overrides replaces selected collaborators. Zero fields fall back to the
// configured implementations.
type Overrides struct {
	Text   classifier.TextClassifier
	Images classifier.ImageClassifier
	Clock  service.Clock
}

// Services is the wired moderation engine.
type Services struct {
	Dispatcher   *notifications.Dispatcher
	Flags        *featureflags.Manager
	Terms        *service.BannedTermService
	Sanctions    *service.SanctionService
	Screening    *service.ScreeningService
	Reports      *service.ReportService
	Adjudication *service.AdjudicationService
	Moderation   *service.ModerationService
	Submissions  *service.SubmissionService
}

// NewServices builds every service over db. rdb may be nil, in which case
// notices and admin events are dropped.
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client, o Overrides) (*Services, error) {
	staticTerms, err := service.LoadBannedTermsFile(cfg.BannedTermsFile)
	if err != nil {
		return nil, fmt.Errorf("load banned terms: %w", err)
	}

	policy := service.PolicyFromConfig(cfg)
	dispatcher := notifications.NewDispatcher(rdb)

	reportRepo := repository.NewReportRepository(db)
	trustRepo := repository.NewTrustRepository(db)
	penaltyRepo := repository.NewPenaltyRepository(db)
	contentRepo := repository.NewContentRepository(db)
	termRepo := repository.NewBannedTermRepository(db)

	text := o.Text
	if text == nil {
		text = classifier.NewOpenAIModerationClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModerationModel, cfg.ClassifierTimeout())
	}
	images := o.Images
	if images == nil {
		vision := classifier.NewVisionSafeSearchClient(cfg.VisionBaseURL, cfg.VisionAPIKey, cfg.ClassifierTimeout())
		images = classifier.NewCachedImageClassifier(vision, cfg.ImageVerdictCacheSize, cfg.ImageVerdictCacheTTL())
	}

	s := &Services{
		Dispatcher: dispatcher,
		Flags:      featureflags.NewManager(cfg.FeatureFlags),
	}
	s.Terms = service.NewBannedTermService(termRepo, staticTerms, dispatcher)
	s.Sanctions = service.NewSanctionService(penaltyRepo, dispatcher, o.Clock, policy.SuspensionCacheTTL)
	s.Screening = service.NewScreeningService(service.ScreeningDeps{
		Terms:   s.Terms,
		Text:    text,
		Images:  images,
		Links:   moderation.NewLinkExtractor(cfg.AllowedLinkDomain),
		Content: contentRepo,
		Flags:   s.Flags,
		Policy:  policy,
		Clock:   o.Clock,
	})
	s.Reports = service.NewReportService(reportRepo, trustRepo, contentRepo, s.Sanctions, dispatcher, policy)
	s.Adjudication = service.NewAdjudicationService(reportRepo, trustRepo, contentRepo, dispatcher, policy, o.Clock)
	s.Moderation = service.NewModerationService(reportRepo, trustRepo, contentRepo, s.Sanctions, dispatcher)
	s.Submissions = service.NewSubmissionService(contentRepo, s.Screening, s.Sanctions)
	return s, nil
}
