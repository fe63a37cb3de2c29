// Package zai queries the Z.ai and ZHIPU monitoring API for coding plan
// quota and usage.
package zai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hongyanca/coding-plan-quota-query/internal/cache"
	"github.com/hongyanca/coding-plan-quota-query/internal/errs"
	"github.com/hongyanca/coding-plan-quota-query/internal/httpclient"
	"github.com/hongyanca/coding-plan-quota-query/internal/logging"
)

const providerName = "Z.ai"

// Platform is the hosting flavor of the monitoring API.
type Platform string

const (
	PlatformZAI   Platform = "ZAI"
	PlatformZhipu Platform = "ZHIPU"
)

const (
	QuotaLimitPath = "/api/monitor/usage/quota/limit"
	ModelUsagePath = "/api/monitor/usage/model-usage"
	ToolUsagePath  = "/api/monitor/usage/tool-usage"
)

// DefaultTimeout applies when no timeout is configured.
const DefaultTimeout = 10

const timeLayout = "2006-01-02 15:04:05"

// ResolveBaseDomain maps an Anthropic-compatible base URL to the platform and
// the origin hosting its monitoring API.
func ResolveBaseDomain(baseURL string) (Platform, string, error) {
	switch {
	case strings.Contains(baseURL, "api.z.ai"):
		return PlatformZAI, "https://api.z.ai", nil
	case strings.Contains(baseURL, "open.bigmodel.cn"), strings.Contains(baseURL, "dev.bigmodel.cn"):
		u, err := url.Parse(baseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "", "", errs.Configf("unrecognized ANTHROPIC_BASE_URL: %s", baseURL)
		}
		return PlatformZhipu, u.Scheme + "://" + u.Host, nil
	}
	return "", "", errs.Configf("unrecognized ANTHROPIC_BASE_URL: %s. Supported: https://api.z.ai/api/anthropic or https://open.bigmodel.cn/api/anthropic", baseURL)
}

// TimeWindowQuery builds the query string for the usage endpoints: from the
// start of the current hour yesterday to the end of the current hour today,
// in UTC.
func TimeWindowQuery(now time.Time) string {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day()-1, now.Hour(), 0, 0, 0, time.UTC)
	end := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 59, 59, 0, time.UTC)
	return "?startTime=" + escape(start.Format(timeLayout)) + "&endTime=" + escape(end.Format(timeLayout))
}

// escape percent-encodes s with spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Client queries the monitoring API. The cache is owned by the caller.
type Client struct {
	http  *httpclient.Client
	cache *cache.TTL
}

// NewClient returns a Client with the given timeout in seconds.
func NewClient(timeout float64, c *cache.TTL) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{http: httpclient.NewFromConfig(timeout), cache: c}
}

// QueryEndpoint GETs endpoint+query and returns the payload inside the
// "data" envelope, or the whole body when there is none. Results are cached
// per endpoint+query for the debounce window.
func (c *Client) QueryEndpoint(ctx context.Context, endpoint, authToken, query string) (json.RawMessage, error) {
	logger := logging.FromContext(ctx)
	key := endpoint + query
	raw, hit, err := c.cache.Fetch(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		return c.fetch(ctx, key, authToken)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		logger.Info("Returning cached z.ai data")
	} else if c.cache.Enabled() {
		logger.Info(fmt.Sprintf("Cached z.ai data for %d minute(s)", int(c.cache.Window().Minutes())))
	}
	return raw, nil
}

func (c *Client) fetch(ctx context.Context, fullURL, authToken string) (json.RawMessage, error) {
	resp, err := c.http.DoCtx(ctx, http.MethodGet, fullURL, nil,
		httpclient.WithAuthorization(authToken),
		httpclient.WithHeader("Accept-Language", "en-US,en"),
		httpclient.WithHeader("Content-Type", "application/json"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query Z.ai API: %w", err)
	}
	if !resp.OK() {
		return nil, &errs.UpstreamError{Provider: providerName, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	if !gjson.ValidBytes(resp.Body) {
		return nil, fmt.Errorf("%w: Z.ai response is not JSON", errs.ErrParse)
	}
	if data := gjson.GetBytes(resp.Body, "data"); data.Exists() {
		return json.RawMessage(data.Raw), nil
	}
	return json.RawMessage(resp.Body), nil
}
