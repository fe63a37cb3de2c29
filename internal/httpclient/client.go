package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client wraps net/http.Client with convenience methods for the JSON and
// form-encoded upstream APIs.
type Client struct {
	http *http.Client
}

// RequestOption configures an http.Request before it is sent.
type RequestOption func(*http.Request)

// New creates a Client with a 30-second timeout.
func New() *Client {
	return &Client{http: &http.Client{Timeout: 30 * time.Second}}
}

// NewWithTimeout creates a Client with the given timeout.
func NewWithTimeout(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

// NewFromConfig creates a Client using a timeout in seconds.
// Falls back to 30s if the value is zero or negative.
func NewFromConfig(timeoutSeconds float64) *Client {
	if timeoutSeconds <= 0 {
		return New()
	}
	return NewWithTimeout(time.Duration(timeoutSeconds * float64(time.Second)))
}

// DoCtx sends an HTTP request with the given context, method and URL, applies
// options, reads the full body, and returns a Response. A non-nil error
// indicates a network-level failure (DNS, connect, timeout) or context
// cancellation; HTTP error status codes are returned in Response.StatusCode.
func (c *Client) DoCtx(ctx context.Context, method, rawURL string, body io.Reader, opts ...RequestOption) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// PostJSONCtx sends a POST request with a JSON-encoded body and decodes the
// response as JSON into out. Content-Type is set to application/json.
func (c *Client) PostJSONCtx(ctx context.Context, rawURL string, body any, out any, opts ...RequestOption) (*Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}
	allOpts := append([]RequestOption{WithHeader("Content-Type", "application/json")}, opts...)
	resp, err := c.DoCtx(ctx, http.MethodPost, rawURL, reader, allOpts...)
	if err != nil {
		return nil, err
	}
	if out != nil {
		resp.JSONErr = json.Unmarshal(resp.Body, out)
	}
	return resp, nil
}

// PostFormCtx sends a POST request with URL-encoded form data and decodes the
// response as JSON into out. Content-Type is set to
// application/x-www-form-urlencoded.
func (c *Client) PostFormCtx(ctx context.Context, rawURL string, form map[string]string, out any, opts ...RequestOption) (*Response, error) {
	vals := url.Values{}
	for k, v := range form {
		vals.Set(k, v)
	}
	allOpts := append([]RequestOption{WithHeader("Content-Type", "application/x-www-form-urlencoded")}, opts...)
	resp, err := c.DoCtx(ctx, http.MethodPost, rawURL, strings.NewReader(vals.Encode()), allOpts...)
	if err != nil {
		return nil, err
	}
	if out != nil {
		resp.JSONErr = json.Unmarshal(resp.Body, out)
	}
	return resp, nil
}
