package server

import (
	"bytes"
	"context"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"warden/internal/classifier"
	"warden/internal/models"
	"warden/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var colorRed = color.RGBA{R: 255, A: 255}

const (
	author    uint = 10
	reporterA uint = 21
	reporterB uint = 22
	reporterC uint = 23
)

func submit(t *testing.T, env *testEnv, userID uint, targetID uint, body string) (int, map[string]any) {
	t.Helper()
	return env.call(t, http.MethodPost, "/api/contents", userID, SubmitContentRequest{
		TargetType: "post",
		TargetID:   targetID,
		Body:       body,
	})
}

func TestModerationFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	// Publish.
	status, body := submit(t, env, author, 100, "Photos from the harbour walk this morning")
	require.Equal(t, http.StatusCreated, status, body)
	content := body["content"].(map[string]any)
	assert.Equal(t, false, content["concealed"])
	assert.Equal(t, float64(author), content["author_id"])

	status, _ = submit(t, env, author, 100, "A second body for the same post")
	assert.Equal(t, http.StatusBadRequest, status)

	// Three reports conceal the post.
	for i, reporter := range []uint{reporterA, reporterB, reporterC} {
		status, body = env.call(t, http.MethodPost, "/api/reports", reporter, FileReportRequest{
			TargetType: "post", TargetID: 100, Reason: "spam",
		})
		require.Equal(t, http.StatusCreated, status, body)
		assert.Equal(t, float64(i+1), body["pending_count"])
		assert.Equal(t, i == 2, body["concealed"])
	}

	status, body = env.call(t, http.MethodPost, "/api/reports", reporterA, FileReportRequest{
		TargetType: "post", TargetID: 100, Reason: "spam",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["already_reported"])

	status, body = env.call(t, http.MethodPost, "/api/reports", reporterA, FileReportRequest{
		TargetType: "post", TargetID: 999, Reason: "spam",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, body["code"])

	// Queue and detail.
	status, body = env.call(t, http.MethodGet, "/api/admin/reports", adminID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])
	groups := body["groups"].([]any)
	require.Len(t, groups, 1)
	assert.Equal(t, float64(3), groups[0].(map[string]any)["count"])

	status, body = env.call(t, http.MethodGet, "/api/admin/reports/post/100", adminID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["reports"].([]any), 3)
	assert.Equal(t, true, body["content"].(map[string]any)["concealed"])

	// The reports were unfounded.
	status, body = env.call(t, http.MethodPost, "/api/admin/reports/post/100/resolve", adminID,
		ResolveReportsRequest{Verdict: "false"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(3), body["resolved"])
	counts := body["false_report_counts"].(map[string]any)
	assert.Equal(t, float64(1), counts["21"])

	status, _ = env.call(t, http.MethodPost, "/api/admin/reports/post/100/resolve", adminID,
		ResolveReportsRequest{Verdict: "maybe"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.call(t, http.MethodPost, "/api/admin/contents/post/100/restore", adminID, nil)
	require.Equal(t, http.StatusOK, status, body)

	status, body = env.call(t, http.MethodGet, "/api/admin/users/21", adminID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["trust"].(map[string]any)["false_report_count"])
	assert.Len(t, body["reports_filed"].([]any), 1)

	// Suspend the author.
	status, body = env.call(t, http.MethodPost, "/api/admin/users/10/penalties", adminID,
		IssuePenaltyRequest{Type: "7d", Reason: "repeated spam"})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, float64(7*24), body["duration_hours"])

	status, body = env.call(t, http.MethodGet, "/api/me/status", author, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["is_suspended"])
	assert.NotEmpty(t, body["suspended_until"])

	status, body = submit(t, env, author, 101, "Trying to post while suspended")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeSuspended, body["code"])

	status, body = env.call(t, http.MethodGet, "/api/admin/users/10/penalties", adminID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"].([]any), 1)

	status, body = env.call(t, http.MethodDelete, "/api/admin/users/10/penalties/active", adminID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["revoked"])

	status, body = env.call(t, http.MethodDelete, "/api/admin/users/10/penalties/active", adminID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["revoked"])

	status, body = env.call(t, http.MethodGet, "/api/me/status", author, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["is_suspended"])

	// Banned terms.
	status, body = env.call(t, http.MethodPost, "/api/admin/banned-terms", adminID, BannedTermRequest{Term: "grapefruit"})
	require.Equal(t, http.StatusCreated, status, body)
	status, body = env.call(t, http.MethodPost, "/api/admin/banned-terms", adminID, BannedTermRequest{Term: "grapefruit"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["added"])

	status, body = env.call(t, http.MethodGet, "/api/admin/banned-terms", adminID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"].([]any), 1)

	status, body = submit(t, env, author, 102, "I love g-r-a-p-e-f-r-u-i-t juice")
	require.Equal(t, http.StatusUnprocessableEntity, status, body)
	verdict := body["verdict"].(map[string]any)
	assert.Equal(t, true, verdict["blocked"])
	assert.Equal(t, string(models.StageBannedTerm), verdict["stage"])
	assert.Nil(t, body["content"])

	status, body = env.call(t, http.MethodDelete, "/api/admin/banned-terms?term=grapefruit", adminID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["removed"])

	status, body = submit(t, env, author, 102, "I love grapefruit juice")
	assert.Equal(t, http.StatusCreated, status, body)

	// Deleting content drops its reports.
	status, _ = env.call(t, http.MethodDelete, "/api/admin/contents/post/100", adminID, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = env.call(t, http.MethodGet, "/api/admin/reports/post/100", adminID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.call(t, http.MethodDelete, "/api/admin/contents/post/100", adminID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSubmitContent_Edit(t *testing.T) {
	env := newTestEnv(t, nil)

	status, _ := submit(t, env, author, 5, "Original announcement text")
	require.Equal(t, http.StatusCreated, status)

	status, body := env.call(t, http.MethodPost, "/api/contents", author, SubmitContentRequest{
		TargetType: "post", TargetID: 5, Body: "Corrected announcement with the new venue", Edit: true,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Corrected announcement with the new venue", body["content"].(map[string]any)["body"])

	status, _ = env.call(t, http.MethodPost, "/api/contents", reporterA, SubmitContentRequest{
		TargetType: "post", TargetID: 5, Body: "Not my post", Edit: true,
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.call(t, http.MethodPost, "/api/contents", author, SubmitContentRequest{
		TargetType: "post", TargetID: 6, Body: "Editing something that was never posted", Edit: true,
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestFileReport_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	status, _ := submit(t, env, author, 1, "A perfectly ordinary post")
	require.Equal(t, http.StatusCreated, status)

	tests := []struct {
		name string
		req  FileReportRequest
	}{
		{"unknown type", FileReportRequest{TargetType: "widget", TargetID: 1, Reason: "spam"}},
		{"missing id", FileReportRequest{TargetType: "post", Reason: "spam"}},
		{"unknown reason", FileReportRequest{TargetType: "post", TargetID: 1, Reason: "boring"}},
		{"other without detail", FileReportRequest{TargetType: "post", TargetID: 1, Reason: "other"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.call(t, http.MethodPost, "/api/reports", reporterA, tt.req)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, models.CodeValidation, body["code"])
		})
	}
}

func TestScreenText(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.call(t, http.MethodPost, "/api/screen/text", author, ScreenTextRequest{
		Text: "details at https://example.com/schedule",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, false, body["blocked"])

	status, body = env.call(t, http.MethodPost, "/api/screen/text", author, ScreenTextRequest{
		Text: "cheap deals at https://deals.example.net/now",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["blocked"])
	assert.Equal(t, string(models.StageLink), body["stage"])

	status, _ = env.call(t, http.MethodPost, "/api/screen/text", author, ScreenTextRequest{
		Text: "hello", Mode: "rewrite",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestScreenText_ClassifierFlag(t *testing.T) {
	env := newTestEnv(t, nil)
	env.text.ClassifyFn = func(context.Context, string) (map[string]bool, error) {
		return map[string]bool{"harassment": true, "violence/graphic": true}, nil
	}

	status, body := env.call(t, http.MethodPost, "/api/screen/text", author, ScreenTextRequest{Text: "you again"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["blocked"])
	assert.Equal(t, string(models.StageClassifier), body["stage"])
	assert.Equal(t, "violence/graphic", body["category"])
	assert.Equal(t, 1, env.text.Calls())

	// Flags outside the blocking set are ignored.
	env.text.ClassifyFn = func(context.Context, string) (map[string]bool, error) {
		return map[string]bool{"harassment": true}, nil
	}
	status, body = env.call(t, http.MethodPost, "/api/screen/text", author, ScreenTextRequest{Text: "you again"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, false, body["blocked"])
}

func imageRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile(field, "upload.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/screen/image", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token(t, author, false))
	return req
}

func TestScreenImage(t *testing.T) {
	env := newTestEnv(t, nil)
	png := testutil.TinyPNG(t, 4, 4)

	status, body := env.do(t, imageRequest(t, "image", png))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, false, body["blocked"])

	env.images.ClassifyFn = func(context.Context, []byte) (classifier.SafeSearch, error) {
		return classifier.SafeSearch{Adult: classifier.LikelihoodVeryLikely}, nil
	}
	status, body = env.do(t, imageRequest(t, "image", testutil.ColoredPNG(t, 4, 4, colorRed)))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["blocked"])
	assert.Equal(t, string(models.StageImage), body["stage"])

	status, _ = env.do(t, imageRequest(t, "file", png))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestScreenImage_TooLarge(t *testing.T) {
	env := newTestEnv(t, nil)
	oversized := bytes.Repeat([]byte{0x89}, 1024*1024+1)

	status, body := env.do(t, imageRequest(t, "image", oversized))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "image exceeds the upload size limit", body["error"])
	assert.Zero(t, env.images.Calls())
}

func TestSubmitContent_Multipart(t *testing.T) {
	env := newTestEnv(t, nil)

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	require.NoError(t, w.WriteField("target_type", "community-post"))
	require.NoError(t, w.WriteField("target_id", "44"))
	require.NoError(t, w.WriteField("body", "Two photos from the meetup"))
	for _, img := range [][]byte{testutil.TinyPNG(t, 2, 2), testutil.ColoredPNG(t, 2, 2, colorRed)} {
		part, err := w.CreateFormFile("images", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(img)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/contents", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token(t, author, false))

	status, body := env.do(t, req)
	require.Equal(t, http.StatusCreated, status, body)
	content := body["content"].(map[string]any)
	assert.Equal(t, string(models.TargetCommunityPost), content["target_type"])
	assert.Equal(t, float64(2), content["image_count"])
	assert.Equal(t, 2, env.images.Calls())
}
