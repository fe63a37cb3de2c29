// Package errs defines the failure taxonomy shared by the quota pipeline and
// its mapping onto HTTP status codes.
package errs

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/hongyanca/coding-plan-quota-query/internal/httpclient"
)

var (
	// ErrNotFound means the credential file does not exist.
	ErrNotFound = errors.New("account file not found")
	// ErrParse means a credential file or upstream body is not well-formed JSON.
	ErrParse = errors.New("malformed JSON")
	// ErrMissingCredentials means the record lacks an access or refresh token.
	ErrMissingCredentials = errors.New("missing access_token or refresh_token in account file")
	// ErrConfig means a required setting is missing or unrecognized.
	ErrConfig = errors.New("invalid configuration")
)

// RefreshError is returned when the OAuth provider rejects a refresh.
type RefreshError struct {
	StatusCode int
	Body       string
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: HTTP %d: %s", e.StatusCode, httpclient.SummarizeBody([]byte(e.Body)))
}

// UpstreamError is returned when a quota provider answers with a non-2xx
// status. The status and body are kept for diagnostics.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: HTTP %d: %s", e.Provider, e.StatusCode, httpclient.SummarizeBody([]byte(e.Body)))
}

// Configf wraps ErrConfig with a formatted detail message.
func Configf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, a...))
}

// HTTPStatus maps an error from the pipeline to the status code the HTTP
// boundary should answer with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		if upstream.StatusCode >= 400 && upstream.StatusCode <= 599 {
			return upstream.StatusCode
		}
		return http.StatusBadGateway
	}

	var refresh *RefreshError
	if errors.As(err, &refresh) {
		return http.StatusBadGateway
	}

	if errors.Is(err, ErrConfig) {
		return http.StatusBadRequest
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
