package httpclient

import "strings"

// Response wraps the status code, body bytes, and optional JSON decode error
// from a completed HTTP request. The underlying http.Response body is already
// closed; callers read from Body instead.
type Response struct {
	StatusCode int
	Body       []byte
	JSONErr    error
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// SummarizeBody returns a short summary of an HTTP response body suitable for
// error messages. Empty bodies return "empty body"; bodies longer than 120
// characters are truncated with "...".
func SummarizeBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "empty body"
	}
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
