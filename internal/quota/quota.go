// Package quota assembles the credential store, token manager, upstream
// clients and formatters into the read operations served by the CLI and the
// HTTP server.
package quota

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hongyanca/coding-plan-quota-query/internal/cache"
	"github.com/hongyanca/coding-plan-quota-query/internal/config"
	"github.com/hongyanca/coding-plan-quota-query/internal/credential"
	"github.com/hongyanca/coding-plan-quota-query/internal/display"
	"github.com/hongyanca/coding-plan-quota-query/internal/errs"
	"github.com/hongyanca/coding-plan-quota-query/internal/logging"
	"github.com/hongyanca/coding-plan-quota-query/internal/models"
	"github.com/hongyanca/coding-plan-quota-query/internal/oauth"
	"github.com/hongyanca/coding-plan-quota-query/internal/provider/antigravity"
	"github.com/hongyanca/coding-plan-quota-query/internal/provider/zai"
)

const (
	googleCacheSize = 1
	zaiCacheSize    = 10
)

// UsageKind selects one of the time-windowed Z.ai usage reports.
type UsageKind string

const (
	ModelUsage UsageKind = "model-usage"
	ToolUsage  UsageKind = "tool-usage"
)

// ParseUsageKind accepts "model-usage", "tool-usage" or their short forms.
func ParseUsageKind(s string) (UsageKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "model-usage", "model", "models":
		return ModelUsage, nil
	case "tool-usage", "tool", "tools":
		return ToolUsage, nil
	}
	return "", fmt.Errorf("unknown usage report %q (want model-usage or tool-usage)", s)
}

func (k UsageKind) path() string {
	if k == ToolUsage {
		return zai.ToolUsagePath
	}
	return zai.ModelUsagePath
}

// Service answers quota queries. It is safe for concurrent use.
type Service struct {
	cfg     config.Config
	store   *credential.Store
	tokens  *oauth.Manager
	google  *antigravity.Client
	zai     *zai.Client
	palette display.Palette
	now     func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithNoColor makes the status line plain text.
func WithNoColor() Option {
	return func(s *Service) {
		s.palette = display.NewPalette(Thresholds(s.cfg), true)
	}
}

// WithClock replaces time.Now for relative times and Z.ai windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Thresholds converts the configured color cut-offs.
func Thresholds(cfg config.Config) display.Thresholds {
	t := cfg.Thresholds
	return display.Thresholds{Full: t.Full, Good: t.Good, Warning: t.Warning, Critical: t.Critical}
}

// New builds a Service and the caches it owns from cfg.
func New(cfg config.Config, opts ...Option) *Service {
	window := cfg.DebounceWindow()
	store := credential.NewStore(cfg.AccountPath())
	s := &Service{
		cfg:   cfg,
		store: store,
		tokens: oauth.NewManager(store, oauth.RefreshConfig{
			TokenURL:     cfg.Google.TokenURL,
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			Timeout:      cfg.Google.Timeout,
		}),
		google: antigravity.NewClient(antigravity.Config{
			QuotaURL:   cfg.Google.QuotaURL,
			ProjectURL: cfg.Google.ProjectURL,
			UserAgent:  cfg.Google.UserAgent,
			Timeout:    cfg.Google.Timeout,
		}, cache.New(googleCacheSize, window)),
		zai:     zai.NewClient(cfg.Zai.Timeout, cache.New(zaiCacheSize, window)),
		palette: display.NewPalette(Thresholds(cfg), false),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// googleEntries runs the Cloud Code pipeline: load the account, make sure
// the token is fresh, find the project and fetch quota.
func (s *Service) googleEntries(ctx context.Context) ([]models.ModelQuota, error) {
	logger := logging.FromContext(ctx)

	rec, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	accessToken, err := s.tokens.EnsureFreshToken(ctx, rec)
	if err != nil {
		return nil, err
	}

	projectID := rec.Normalize().ProjectID
	if projectID == "" {
		if id, ok := s.google.GetProjectID(ctx, accessToken); ok {
			projectID = id
		}
	}
	logger.Debug("Fetching Cloud Code quota", "project", projectID)

	raw, err := s.google.GetQuota(ctx, accessToken, projectID)
	if err != nil {
		return nil, err
	}
	return antigravity.Normalize(raw)
}

// AllQuota returns every Gemini and Claude model, sorted by name, with
// relative reset times.
func (s *Service) AllQuota(ctx context.Context) (models.QuotaView, error) {
	entries, err := s.googleEntries(ctx)
	if err != nil {
		return models.QuotaView{}, err
	}
	now := s.now()
	return models.NewQuotaView(display.WithRelativeTimes(entries, now), now), nil
}

// FamilyQuota returns the models of one family with relative reset times.
func (s *Service) FamilyQuota(ctx context.Context, f models.Family) (models.QuotaView, error) {
	entries, err := s.googleEntries(ctx)
	if err != nil {
		return models.QuotaView{}, err
	}
	now := s.now()
	return models.NewQuotaView(display.WithRelativeTimes(models.FilterFamily(entries, f), now), now), nil
}

// Overview returns "Pro P% | Flash F% | Claude C%".
func (s *Service) Overview(ctx context.Context) (string, error) {
	entries, err := s.googleEntries(ctx)
	if err != nil {
		return "", err
	}
	return display.Overview(entries), nil
}

// StatusLine returns the colored, iconified one-line summary.
func (s *Service) StatusLine(ctx context.Context) (string, error) {
	entries, err := s.googleEntries(ctx)
	if err != nil {
		return "", err
	}
	return s.palette.StatusLine(entries, s.now()), nil
}

// zaiTarget validates the Z.ai settings and returns the monitoring origin.
func (s *Service) zaiTarget() (string, error) {
	if s.cfg.Zai.AuthToken == "" {
		return "", errs.Configf("ANTHROPIC_AUTH_TOKEN environment variable is not set")
	}
	if s.cfg.Zai.BaseURL == "" {
		return "", errs.Configf("ANTHROPIC_BASE_URL environment variable is not set. Set it to https://api.z.ai/api/anthropic or https://open.bigmodel.cn/api/anthropic")
	}
	_, domain, err := zai.ResolveBaseDomain(s.cfg.Zai.BaseURL)
	return domain, err
}

// GlmQuota returns the GLM coding plan quota in the same envelope as the
// Google views, without relative times.
func (s *Service) GlmQuota(ctx context.Context) (models.QuotaView, error) {
	domain, err := s.zaiTarget()
	if err != nil {
		return models.QuotaView{}, err
	}
	raw, err := s.zai.QueryEndpoint(ctx, domain+zai.QuotaLimitPath, s.cfg.Zai.AuthToken, "")
	if err != nil {
		return models.QuotaView{}, err
	}
	entries, err := zai.Normalize(raw)
	if err != nil {
		return models.QuotaView{}, err
	}
	return models.NewQuotaView(entries, s.now()), nil
}

// GlmUsage returns a raw usage report covering yesterday's current hour
// through the end of today's.
func (s *Service) GlmUsage(ctx context.Context, kind UsageKind) (json.RawMessage, error) {
	domain, err := s.zaiTarget()
	if err != nil {
		return nil, err
	}
	return s.zai.QueryEndpoint(ctx, domain+kind.path(), s.cfg.Zai.AuthToken, zai.TimeWindowQuery(s.now()))
}
