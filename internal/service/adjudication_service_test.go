package service

import (
	"context"
	"testing"

	"warden/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileReports(t *testing.T, env *moderationEnv, target models.ContentTarget, reporters ...uint) {
	t.Helper()
	for _, id := range reporters {
		_, err := env.reportSvc.FileReport(context.Background(), FileReportInput{ReporterID: id, Target: target, Reason: models.ReasonSpam})
		require.NoError(t, err)
	}
}

func TestResolve_Confirmed(t *testing.T) {
	env := newModerationEnv(t)
	ctx := context.Background()
	target := models.ContentTarget{Type: models.TargetPost, ID: 1}
	env.seedContent(t, target, 100, "bad post")
	fileReports(t, env, target, 1, 2)
	require.False(t, env.concealed(t, target))

	res, err := env.adjudication.Resolve(ctx, ResolveInput{Target: target, Verdict: VerdictConfirmed, AdminID: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Resolved)
	assert.Empty(t, res.FalseReportCounts)
	assert.True(t, env.concealed(t, target), "confirmed content is concealed below the threshold too")

	reports, err := env.reports.ListByTarget(ctx, target)
	require.NoError(t, err)
	for _, r := range reports {
		assert.Equal(t, models.ReportStatusValid, r.Status)
	}

	standing, err := env.trust.Get(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, standing.FalseReportCount)

	assert.Len(t, env.events.Notices(1), 1)
	assert.Equal(t, models.NoticeReportResolved, env.events.Notices(1)[0].Type)
}

func TestResolve_FalseIncrementsEachReporterOnce(t *testing.T) {
	env := newModerationEnv(t)
	ctx := context.Background()
	target := models.ContentTarget{Type: models.TargetComment, ID: 2}
	env.seedContent(t, target, 100, "fine comment")
	fileReports(t, env, target, 1, 2, 3)

	res, err := env.adjudication.Resolve(ctx, ResolveInput{Target: target, Verdict: VerdictFalse, AdminID: 50})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Resolved)
	assert.Equal(t, map[uint]int{1: 1, 2: 1, 3: 1}, res.FalseReportCounts)
	assert.Empty(t, res.SuspensionRecommended)

	again, err := env.adjudication.Resolve(ctx, ResolveInput{Target: target, Verdict: VerdictFalse, AdminID: 50})
	require.NoError(t, err)
	assert.Zero(t, again.Resolved, "a cohort is only adjudicated once")

	standing, err := env.trust.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, standing.FalseReportCount)

	fileReports(t, env, target, 2)
	res, err = env.adjudication.Resolve(ctx, ResolveInput{Target: target, Verdict: VerdictFalse, AdminID: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Resolved, "new reports form a fresh cohort")
	assert.Equal(t, map[uint]int{2: 2}, res.FalseReportCounts)
}

func TestResolve_SuspensionRecommendation(t *testing.T) {
	env := newModerationEnv(t)
	ctx := context.Background()
	target := models.ContentTarget{Type: models.TargetPost, ID: 8}
	env.seedContent(t, target, 100, "innocent")

	for i := 0; i < 19; i++ {
		_, err := env.trust.IncrementFalseReports(ctx, []uint{7})
		require.NoError(t, err)
	}
	// A reporter at 19 is already past the privilege threshold, so the report
	// is inserted directly.
	_, err := env.reports.CreatePending(ctx, &models.Report{TargetType: target.Type, TargetID: target.ID, ReporterID: 7, Reason: models.ReasonAbuse})
	require.NoError(t, err)
	fileReports(t, env, target, 8)

	res, err := env.adjudication.Resolve(ctx, ResolveInput{Target: target, Verdict: VerdictFalse, AdminID: 50})
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, res.SuspensionRecommended)
	assert.Equal(t, 20, res.FalseReportCounts[7])

	events := env.events.Events(models.EventReporterSuspensionRecommended)
	require.Len(t, events, 1)
	assert.Equal(t, uint(7), events[0].Payload["user_id"])

	status, err := env.sanctions.CheckStatus(ctx, 7)
	require.NoError(t, err)
	assert.False(t, status.IsSuspended, "the recommendation never suspends by itself")
}

func TestResolve_NothingPending(t *testing.T) {
	env := newModerationEnv(t)

	res, err := env.adjudication.Resolve(context.Background(), ResolveInput{
		Target:  models.ContentTarget{Type: models.TargetEvent, ID: 404},
		Verdict: VerdictConfirmed,
		AdminID: 1,
	})
	require.NoError(t, err)
	assert.Zero(t, res.Resolved)
	assert.Empty(t, env.events.EventTypes())
}

func TestResolve_Validation(t *testing.T) {
	env := newModerationEnv(t)

	_, err := env.adjudication.Resolve(context.Background(), ResolveInput{
		Target:  models.ContentTarget{Type: models.TargetPost, ID: 1},
		Verdict: "maybe",
	})
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestParseVerdict(t *testing.T) {
	for raw, want := range map[string]Verdict{
		"confirmed": VerdictConfirmed,
		"VALID":     VerdictConfirmed,
		"false":     VerdictFalse,
		" rejected": VerdictFalse,
	} {
		got, err := ParseVerdict(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseVerdict("unsure")
	assertAppErrorCode(t, err, models.CodeValidation)
}
