// Package oauth keeps the Google access token in the account file usable,
// refreshing it through the OAuth token endpoint when it is close to expiry.
package oauth

import (
	"context"
	"fmt"
	"time"

	"github.com/hongyanca/coding-plan-quota-query/internal/credential"
	"github.com/hongyanca/coding-plan-quota-query/internal/errs"
	"github.com/hongyanca/coding-plan-quota-query/internal/httpclient"
	"github.com/hongyanca/coding-plan-quota-query/internal/logging"
)

// RefreshBuffer is the margin before expiry at which a token is treated as
// expiring and refreshed.
const RefreshBuffer = 5 * time.Minute

// State is the lifecycle position of a token during one request.
type State int

const (
	Fresh State = iota
	Expiring
	Refreshing
	Refreshed
	Failed
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Expiring:
		return "expiring"
	case Refreshing:
		return "refreshing"
	case Refreshed:
		return "refreshed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// TokenResponse is the body of a successful refresh.
type TokenResponse struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   float64 `json:"expires_in,omitempty"`
	TokenType   string  `json:"token_type,omitempty"`
}

// RefreshConfig holds the client registration and token endpoint.
type RefreshConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	// Timeout is the request timeout in seconds.
	Timeout float64
}

// Saver persists a refreshed record. *credential.Store implements it.
type Saver interface {
	Save(*credential.Record) error
}

// Manager refreshes tokens and writes them back through a Saver.
type Manager struct {
	cfg    RefreshConfig
	saver  Saver
	client *httpclient.Client
	now    func() time.Time
}

func NewManager(saver Saver, cfg RefreshConfig) *Manager {
	return &Manager{
		cfg:    cfg,
		saver:  saver,
		client: httpclient.NewFromConfig(cfg.Timeout),
		now:    time.Now,
	}
}

// StateOf classifies tokens against now without touching the network.
func StateOf(t credential.Tokens, now time.Time) State {
	if t.ExpiryTimestamp != nil && *t.ExpiryTimestamp > now.Add(RefreshBuffer).Unix() {
		return Fresh
	}
	return Expiring
}

// EnsureFreshToken returns an access token that is valid for at least
// RefreshBuffer. An expiring token is refreshed, written into rec and saved.
// A failed save is logged and the new token is still returned.
func (m *Manager) EnsureFreshToken(ctx context.Context, rec *credential.Record) (string, error) {
	logger := logging.FromContext(ctx)
	tokens := rec.Normalize()
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return "", errs.ErrMissingCredentials
	}

	now := m.now()
	state := StateOf(tokens, now)
	if state == Fresh {
		logger.Debug("Token is fresh", "state", state, "expiry", *tokens.ExpiryTimestamp)
		return tokens.AccessToken, nil
	}

	logger.Info("Token is expiring, refreshing", "state", state, "schema", tokens.Schema)
	grant, err := m.refresh(ctx, tokens.RefreshToken)
	if err != nil {
		logger.Debug("Token refresh failed", "state", Failed, "err", err)
		return "", err
	}

	expiry := rec.ApplyRefresh(grant, m.now())
	logger.Debug("Token refreshed", "state", Refreshed, "expiry", expiry)

	if err := m.saver.Save(rec); err != nil {
		logger.Error("Failed to save refreshed token", "err", err)
	}
	return grant.AccessToken, nil
}

func (m *Manager) refresh(ctx context.Context, refreshToken string) (credential.Grant, error) {
	logging.FromContext(ctx).Debug("Requesting new access token", "state", Refreshing, "url", m.cfg.TokenURL)

	form := map[string]string{
		"client_id":     m.cfg.ClientID,
		"client_secret": m.cfg.ClientSecret,
		"refresh_token": refreshToken,
		"grant_type":    "refresh_token",
	}

	var tokenResp TokenResponse
	resp, err := m.client.PostFormCtx(ctx, m.cfg.TokenURL, form, &tokenResp)
	if err != nil {
		return credential.Grant{}, fmt.Errorf("token refresh request: %w", err)
	}
	if !resp.OK() {
		return credential.Grant{}, &errs.RefreshError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	if resp.JSONErr != nil {
		return credential.Grant{}, fmt.Errorf("%w: token response: %v", errs.ErrParse, resp.JSONErr)
	}
	if tokenResp.AccessToken == "" {
		return credential.Grant{}, fmt.Errorf("%w: token response has no access_token", errs.ErrParse)
	}

	expiresIn := int64(tokenResp.ExpiresIn)
	if expiresIn <= 0 {
		expiresIn = credential.DefaultExpiresIn
	}
	return credential.Grant{
		AccessToken: tokenResp.AccessToken,
		ExpiresIn:   expiresIn,
		TokenType:   tokenResp.TokenType,
	}, nil
}
