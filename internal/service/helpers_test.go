package service

import (
	"errors"
	"testing"
	"time"

	"warden/internal/models"
	"warden/internal/moderation"
	"warden/internal/repository"
	"warden/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// assertAppErrorCode asserts that err is an AppError carrying code.
func assertAppErrorCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// moderationEnv wires every service over one in-memory database.
type moderationEnv struct {
	db           *gorm.DB
	reports      repository.ReportRepository
	trust        repository.TrustRepository
	penalties    repository.PenaltyRepository
	contents     repository.ContentRepository
	events       *testutil.RecordingDispatcher
	text         *testutil.TextClassifierStub
	images       *testutil.ImageClassifierStub
	terms        *BannedTermService
	sanctions    *SanctionService
	screening    *ScreeningService
	reportSvc    *ReportService
	adjudication *AdjudicationService
	moderation   *ModerationService
	submissions  *SubmissionService
}

func newModerationEnv(t *testing.T, staticTerms ...string) *moderationEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	env := &moderationEnv{
		db:        db,
		reports:   repository.NewReportRepository(db),
		trust:     repository.NewTrustRepository(db),
		penalties: repository.NewPenaltyRepository(db),
		contents:  repository.NewContentRepository(db),
		events:    testutil.NewRecordingDispatcher(),
		text:      &testutil.TextClassifierStub{},
		images:    &testutil.ImageClassifierStub{},
	}
	policy := DefaultPolicy()
	clock := fixedClock(testNow)

	env.terms = NewBannedTermService(repository.NewBannedTermRepository(db), staticTerms, env.events)
	env.sanctions = NewSanctionService(env.penalties, env.events, clock, 0)
	env.screening = NewScreeningService(ScreeningDeps{
		Terms:   env.terms,
		Text:    env.text,
		Images:  env.images,
		Links:   moderation.NewLinkExtractor("example.com"),
		Content: env.contents,
		Policy:  policy,
		Clock:   clock,
	})
	env.reportSvc = NewReportService(env.reports, env.trust, env.contents, env.sanctions, env.events, policy)
	env.adjudication = NewAdjudicationService(env.reports, env.trust, env.contents, env.events, policy, clock)
	env.moderation = NewModerationService(env.reports, env.trust, env.contents, env.sanctions, env.events)
	env.submissions = NewSubmissionService(env.contents, env.screening, env.sanctions)
	return env
}

func (e *moderationEnv) seedContent(t *testing.T, target models.ContentTarget, authorID uint, body string) {
	t.Helper()
	require.NoError(t, e.contents.Create(t.Context(), &models.Content{
		TargetType: target.Type,
		TargetID:   target.ID,
		AuthorID:   authorID,
		Body:       body,
		CreatedAt:  testNow.Add(-time.Hour),
	}))
}

func (e *moderationEnv) concealed(t *testing.T, target models.ContentTarget) bool {
	t.Helper()
	c, err := e.contents.Get(t.Context(), target)
	require.NoError(t, err)
	return c.Concealed
}
