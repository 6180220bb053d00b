package classifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"warden/internal/observability"
)

const visionAdapter = "vision_safe_search"

// VisionSafeSearchClient calls a Cloud Vision style images:annotate endpoint
// with the SAFE_SEARCH_DETECTION feature.
type VisionSafeSearchClient struct {
	apiKey string
	client *resty.Client
}

type annotateRequest struct {
	Requests []annotateImageRequest `json:"requests"`
}

type annotateImageRequest struct {
	Image struct {
		Content string `json:"content"`
	} `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateFeature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []struct {
		SafeSearchAnnotation *struct {
			Adult    string `json:"adult"`
			Spoof    string `json:"spoof"`
			Medical  string `json:"medical"`
			Violence string `json:"violence"`
			Racy     string `json:"racy"`
		} `json:"safeSearchAnnotation"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// NewVisionSafeSearchClient creates an image classifier. An empty apiKey yields a
// client that always returns ErrNotConfigured.
func NewVisionSafeSearchClient(baseURL, apiKey string, timeout time.Duration) *VisionSafeSearchClient {
	if baseURL == "" {
		baseURL = "https://vision.googleapis.com"
	}
	return &VisionSafeSearchClient{
		apiKey: apiKey,
		client: resty.New().
			SetBaseURL(strings.TrimSuffix(baseURL, "/")).
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("User-Agent", "warden/1.0"),
	}
}

// Classify rates image. The bytes are downscaled before upload when large.
func (c *VisionSafeSearchClient) Classify(ctx context.Context, image []byte) (SafeSearch, error) {
	if c.apiKey == "" {
		return SafeSearch{}, ErrNotConfigured
	}
	if len(image) == 0 {
		return SafeSearch{}, fmt.Errorf("%w: empty image", ErrUnavailable)
	}

	span, ctx := observability.StartClientSpan(ctx, visionAdapter, "classify")
	defer span.End()

	start := time.Now()
	rating, err := c.classify(ctx, PrepareImage(image))
	observability.ObserveClassifierCall(visionAdapter, start, err)
	if err != nil {
		span.SetError(err)
	}
	return rating, err
}

func (c *VisionSafeSearchClient) classify(ctx context.Context, image []byte) (SafeSearch, error) {
	req := annotateImageRequest{Features: []annotateFeature{{Type: "SAFE_SEARCH_DETECTION"}}}
	req.Image.Content = base64.StdEncoding.EncodeToString(image)

	var out annotateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(annotateRequest{Requests: []annotateImageRequest{req}}).
		SetResult(&out).
		Post("/v1/images:annotate")
	if err != nil {
		return SafeSearch{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return SafeSearch{}, fmt.Errorf("%w: annotate endpoint returned status %d", ErrUnavailable, resp.StatusCode())
	}
	if len(out.Responses) == 0 {
		return SafeSearch{}, fmt.Errorf("%w: empty annotate response", ErrUnavailable)
	}
	r := out.Responses[0]
	if r.Error != nil {
		return SafeSearch{}, fmt.Errorf("%w: %s", ErrUnavailable, r.Error.Message)
	}
	if r.SafeSearchAnnotation == nil {
		return SafeSearch{}, fmt.Errorf("%w: missing safe search annotation", ErrUnavailable)
	}
	a := r.SafeSearchAnnotation
	return SafeSearch{
		Adult:    ParseLikelihood(a.Adult),
		Violence: ParseLikelihood(a.Violence),
		Racy:     ParseLikelihood(a.Racy),
		Medical:  ParseLikelihood(a.Medical),
		Spoof:    ParseLikelihood(a.Spoof),
	}, nil
}
