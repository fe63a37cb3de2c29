// Package antigravity talks to the Google Cloud Code endpoints Antigravity
// uses for project discovery and per-model quota.
package antigravity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/hongyanca/coding-plan-quota-query/internal/cache"
	"github.com/hongyanca/coding-plan-quota-query/internal/errs"
	"github.com/hongyanca/coding-plan-quota-query/internal/httpclient"
	"github.com/hongyanca/coding-plan-quota-query/internal/logging"
)

const providerName = "Cloud Code"

// quotaCacheKey is the only key the quota cache uses. There is one account
// per deployment, so the project id is not part of the key.
const quotaCacheKey = "quota"

// Config holds the endpoints and client identity for Cloud Code calls.
type Config struct {
	QuotaURL   string
	ProjectURL string
	UserAgent  string
	// Timeout is the request timeout in seconds.
	Timeout float64
}

// Client fetches quota from Cloud Code. The cache is owned by the caller.
type Client struct {
	cfg   Config
	http  *httpclient.Client
	cache *cache.TTL
}

func NewClient(cfg Config, c *cache.TTL) *Client {
	return &Client{
		cfg:   cfg,
		http:  httpclient.NewFromConfig(cfg.Timeout),
		cache: c,
	}
}

func (c *Client) options(accessToken string) []httpclient.RequestOption {
	return []httpclient.RequestOption{
		httpclient.WithBearer(accessToken),
		httpclient.WithUserAgent(c.cfg.UserAgent),
	}
}

// GetProjectID asks loadCodeAssist for the account's Cloud AI Companion
// project. Failures are logged and reported as ok=false so the caller can
// continue without a project.
func (c *Client) GetProjectID(ctx context.Context, accessToken string) (string, bool) {
	logger := logging.FromContext(ctx)
	body := CodeAssistRequest{Metadata: CodeAssistRequestMetadata{IDEType: "ANTIGRAVITY"}}

	resp, err := c.http.PostJSONCtx(ctx, c.cfg.ProjectURL, body, nil, c.options(accessToken)...)
	if err != nil {
		logger.Warn("Failed to get project ID", "err", err)
		return "", false
	}
	if !resp.OK() {
		logger.Warn("Failed to get project ID", "status", resp.StatusCode, "body", httpclient.SummarizeBody(resp.Body))
		return "", false
	}
	if !gjson.ValidBytes(resp.Body) {
		logger.Warn("Failed to get project ID", "err", "malformed JSON")
		return "", false
	}
	project := gjson.GetBytes(resp.Body, "cloudaicompanionProject")
	if project.Type != gjson.String || project.String() == "" {
		logger.Warn("Failed to get project ID", "err", "no cloudaicompanionProject in response")
		return "", false
	}
	return project.String(), true
}

// GetQuota returns the raw fetchAvailableModels payload, from the cache when
// it is still inside the debounce window.
func (c *Client) GetQuota(ctx context.Context, accessToken, projectID string) (json.RawMessage, error) {
	logger := logging.FromContext(ctx)
	raw, hit, err := c.cache.Fetch(ctx, quotaCacheKey, func(ctx context.Context) (json.RawMessage, error) {
		return c.fetchQuota(ctx, accessToken, projectID)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		logger.Info("Returning cached quota data")
	} else if c.cache.Enabled() {
		logger.Info(fmt.Sprintf("Cached quota data for %d minute(s)", int(c.cache.Window().Minutes())))
	}
	return raw, nil
}

func (c *Client) fetchQuota(ctx context.Context, accessToken, projectID string) (json.RawMessage, error) {
	resp, err := c.http.PostJSONCtx(ctx, c.cfg.QuotaURL, QuotaRequest{Project: projectID}, nil, c.options(accessToken)...)
	if err != nil {
		return nil, fmt.Errorf("fetching quota: %w", err)
	}
	if !resp.OK() {
		return nil, &errs.UpstreamError{Provider: providerName, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	if !json.Valid(resp.Body) {
		return nil, fmt.Errorf("%w: quota response is not JSON", errs.ErrParse)
	}
	return json.RawMessage(resp.Body), nil
}
