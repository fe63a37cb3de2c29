package httpclient

import "net/http"

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// WithBearer sets the Authorization header to "Bearer <token>".
func WithBearer(token string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

// WithAuthorization sets the Authorization header to token as given, with no
// scheme prefix. Z.ai accepts its API key this way.
func WithAuthorization(token string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", token)
	}
}

// WithUserAgent sets the User-Agent header when ua is non-empty.
func WithUserAgent(ua string) RequestOption {
	return func(r *http.Request) {
		if ua != "" {
			r.Header.Set("User-Agent", ua)
		}
	}
}
