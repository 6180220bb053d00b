package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"warden/internal/classifier"
	"warden/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_CreatesContent(t *testing.T) {
	env := newModerationEnv(t)
	ctx := context.Background()
	target := models.ContentTarget{Type: models.TargetPost, ID: 1}

	res, err := env.submissions.Submit(ctx, SubmitInput{AuthorID: 3, Target: target, Body: "first post!"})
	require.NoError(t, err)
	assert.False(t, res.Verdict.Blocked)
	require.NotNil(t, res.Content)
	assert.Equal(t, uint(3), res.Content.AuthorID)
	assert.Equal(t, "first post!", res.Content.Body)

	_, err = env.submissions.Submit(ctx, SubmitInput{AuthorID: 3, Target: target, Body: "again"})
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestSubmit_BlockedIsNotStored(t *testing.T) {
	env := newModerationEnv(t, "forbidden")
	ctx := context.Background()
	target := models.ContentTarget{Type: models.TargetComment, ID: 2}

	res, err := env.submissions.Submit(ctx, SubmitInput{AuthorID: 3, Target: target, Body: "so forbidden"})
	require.NoError(t, err)
	assert.True(t, res.Verdict.Blocked)
	assert.Nil(t, res.Content)

	exists, err := env.contents.Exists(ctx, target)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSubmit_ImagesAreScreened(t *testing.T) {
	env := newModerationEnv(t)
	env.images.ClassifyFn = func(context.Context, []byte) (classifier.SafeSearch, error) {
		return classifier.SafeSearch{Adult: classifier.LikelihoodVeryLikely}, nil
	}

	res, err := env.submissions.Submit(context.Background(), SubmitInput{
		AuthorID: 3,
		Target:   models.ContentTarget{Type: models.TargetPost, ID: 3},
		Body:     "look at this",
		Images:   [][]byte{[]byte("img")},
	})
	require.NoError(t, err)
	assert.True(t, res.Verdict.Blocked)
	assert.Equal(t, models.StageImage, res.Verdict.Stage)
	assert.Equal(t, 1, env.images.Calls())
}

func TestSubmit_DuplicateAndEdit(t *testing.T) {
	env := newModerationEnv(t)
	ctx := context.Background()
	first := models.ContentTarget{Type: models.TargetPost, ID: 10}
	second := models.ContentTarget{Type: models.TargetPost, ID: 11}
	body := "Weekend hiking trip, who is in?"

	_, err := env.submissions.Submit(ctx, SubmitInput{AuthorID: 4, Target: first, Body: body})
	require.NoError(t, err)

	res, err := env.submissions.Submit(ctx, SubmitInput{AuthorID: 4, Target: second, Body: body})
	require.NoError(t, err)
	assert.True(t, res.Verdict.Blocked)
	assert.Equal(t, models.StageDuplicate, res.Verdict.Stage)

	res, err = env.submissions.Submit(ctx, SubmitInput{AuthorID: 4, Target: first, Body: body + " (updated)", Edit: true})
	require.NoError(t, err)
	assert.False(t, res.Verdict.Blocked, "editing your own post is not a duplicate")
	assert.Equal(t, body+" (updated)", res.Content.Body)

	_, err = env.submissions.Submit(ctx, SubmitInput{AuthorID: 5, Target: first, Body: "hijack", Edit: true})
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	_, err = env.submissions.Submit(ctx, SubmitInput{AuthorID: 4, Target: models.ContentTarget{Type: models.TargetPost, ID: 99}, Body: "x", Edit: true})
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestSubmit_SuspendedAuthor(t *testing.T) {
	env := newModerationEnv(t)
	ctx := context.Background()

	_, err := env.sanctions.Issue(ctx, IssueInput{UserID: 8, Reason: "abuse", Type: models.PermanentPenalty(), IssuedBy: 1})
	require.NoError(t, err)

	_, err = env.submissions.Submit(ctx, SubmitInput{AuthorID: 8, Target: models.ContentTarget{Type: models.TargetPost, ID: 1}, Body: "hi"})
	appErr := assertAppErrorCode(t, err, models.CodeSuspended)
	assert.Equal(t, MessagePermanentSuspension, appErr.Message)
	assert.Zero(t, env.text.Calls(), "suspended users are rejected before screening")
}

func TestSubmit_Validation(t *testing.T) {
	env := newModerationEnv(t)
	ctx := context.Background()
	target := models.ContentTarget{Type: models.TargetPost, ID: 1}

	_, err := env.submissions.Submit(ctx, SubmitInput{Target: target, Body: "x"})
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	_, err = env.submissions.Submit(ctx, SubmitInput{AuthorID: 1, Target: target, Body: strings.Repeat("a", maxBodyLen+1)})
	assertAppErrorCode(t, err, models.CodeValidation)

	_, err = env.submissions.Submit(ctx, SubmitInput{AuthorID: 1, Target: target, Images: make([][]byte, maxImagesPerSubmit+1)})
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestSubmit_ContentOlderThanWindowIsNotDuplicate(t *testing.T) {
	env := newModerationEnv(t)
	ctx := context.Background()
	require.NoError(t, env.contents.Create(ctx, &models.Content{
		TargetType: models.TargetPost,
		TargetID:   20,
		AuthorID:   6,
		Body:       "daily standup notes",
		CreatedAt:  testNow.Add(-25 * time.Hour),
	}))

	res, err := env.submissions.Submit(ctx, SubmitInput{AuthorID: 6, Target: models.ContentTarget{Type: models.TargetPost, ID: 21}, Body: "daily standup notes"})
	require.NoError(t, err)
	assert.False(t, res.Verdict.Blocked)
}
