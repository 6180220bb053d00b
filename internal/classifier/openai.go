package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"warden/internal/observability"
)

const openAIAdapter = "openai_moderation"

// OpenAIModerationClient calls an OpenAI-compatible /v1/moderations endpoint.
type OpenAIModerationClient struct {
	apiKey string
	model  string
	client *resty.Client
}

type moderationRequest struct {
	Model string `json:"model,omitempty"`
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

// NewOpenAIModerationClient creates a text classifier. An empty apiKey yields a
// client that always returns ErrNotConfigured.
func NewOpenAIModerationClient(baseURL, apiKey, model string, timeout time.Duration) *OpenAIModerationClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &OpenAIModerationClient{
		apiKey: apiKey,
		model:  model,
		client: resty.New().
			SetBaseURL(strings.TrimSuffix(baseURL, "/")).
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("User-Agent", "warden/1.0"),
	}
}

// Classify returns the category flags for text.
func (c *OpenAIModerationClient) Classify(ctx context.Context, text string) (map[string]bool, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	span, ctx := observability.StartClientSpan(ctx, openAIAdapter, "classify")
	defer span.End()

	start := time.Now()
	categories, err := c.classify(ctx, text)
	observability.ObserveClassifierCall(openAIAdapter, start, err)
	if err != nil {
		span.SetError(err)
	}
	return categories, err
}

func (c *OpenAIModerationClient) classify(ctx context.Context, text string) (map[string]bool, error) {
	var out moderationResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(moderationRequest{Model: c.model, Input: text}).
		SetResult(&out).
		Post("/v1/moderations")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: moderation endpoint returned status %d", ErrUnavailable, resp.StatusCode())
	}
	if len(out.Results) == 0 {
		return nil, fmt.Errorf("%w: empty moderation result", ErrUnavailable)
	}
	categories := out.Results[0].Categories
	if categories == nil {
		categories = map[string]bool{}
	}
	return categories, nil
}
