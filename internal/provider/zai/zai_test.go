package zai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hongyanca/coding-plan-quota-query/internal/cache"
	"github.com/hongyanca/coding-plan-quota-query/internal/errs"
)

func TestResolveBaseDomain(t *testing.T) {
	tests := []struct {
		in       string
		platform Platform
		domain   string
		wantErr  bool
	}{
		{"https://api.z.ai/api/anthropic", PlatformZAI, "https://api.z.ai", false},
		{"http://api.z.ai", PlatformZAI, "https://api.z.ai", false},
		{"https://open.bigmodel.cn/api/anthropic", PlatformZhipu, "https://open.bigmodel.cn", false},
		{"http://dev.bigmodel.cn:8080/api/anthropic", PlatformZhipu, "http://dev.bigmodel.cn:8080", false},
		{"https://api.anthropic.com", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			platform, domain, err := ResolveBaseDomain(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errs.ErrConfig) {
					t.Errorf("err = %v, want ErrConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if platform != tt.platform || domain != tt.domain {
				t.Errorf("ResolveBaseDomain() = (%s, %s), want (%s, %s)", platform, domain, tt.platform, tt.domain)
			}
		})
	}
}

func TestTimeWindowQuery(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			name: "mid month",
			now:  time.Date(2025, 3, 15, 14, 37, 12, 0, time.UTC),
			want: "?startTime=2025-03-14%2014%3A00%3A00&endTime=2025-03-15%2014%3A59%3A59",
		},
		{
			name: "first of month rolls back",
			now:  time.Date(2025, 3, 1, 0, 5, 0, 0, time.UTC),
			want: "?startTime=2025-02-28%2000%3A00%3A00&endTime=2025-03-01%2000%3A59%3A59",
		},
		{
			name: "converted to UTC",
			now:  time.Date(2025, 3, 15, 9, 0, 0, 0, time.FixedZone("UTC+8", 8*3600)),
			want: "?startTime=2025-03-14%2001%3A00%3A00&endTime=2025-03-15%2001%3A59%3A59",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeWindowQuery(tt.now); got != tt.want {
				t.Errorf("TimeWindowQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryEndpoint_UnwrapsAndCaches(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if got := r.Header.Get("Authorization"); got != "raw-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept-Language"); got != "en-US,en" {
			t.Errorf("Accept-Language = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		_, _ = w.Write([]byte(`{"code":200,"msg":"ok","data":{"limits":[]},"success":true}`))
	}))
	defer srv.Close()

	c := NewClient(5, cache.New(10, time.Minute))
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		raw, err := c.QueryEndpoint(ctx, srv.URL+QuotaLimitPath, "raw-token", "")
		if err != nil {
			t.Fatal(err)
		}
		if string(raw) != `{"limits":[]}` {
			t.Errorf("payload = %s", raw)
		}
	}
	if calls != 1 {
		t.Errorf("upstream called %d times, want 1", calls)
	}

	// A different query string is a different key.
	if _, err := c.QueryEndpoint(ctx, srv.URL+QuotaLimitPath, "raw-token", "?startTime=x"); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("upstream called %d times, want 2", calls)
	}
}

func TestQueryEndpoint_BareBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("startTime") != "2025-03-14 14:00:00" {
			t.Errorf("startTime = %q", r.URL.Query().Get("startTime"))
		}
		_, _ = w.Write([]byte(`{"totalUsage":12}`))
	}))
	defer srv.Close()

	c := NewClient(0, cache.New(10, 0))
	query := TimeWindowQuery(time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC))
	raw, err := c.QueryEndpoint(context.Background(), srv.URL+ModelUsagePath, "tok", query)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"totalUsage":12}` {
		t.Errorf("payload = %s", raw)
	}
}

func TestQueryEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{
			name:   "unauthorized keeps status",
			status: http.StatusUnauthorized,
			body:   `{"msg":"token expired"}`,
			check: func(err error) bool {
				var ue *errs.UpstreamError
				return errors.As(err, &ue) && ue.StatusCode == 401 && errs.HTTPStatus(err) == 401
			},
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `<html>`,
			check:  func(err error) bool { return errors.Is(err, errs.ErrParse) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(5, cache.New(10, time.Minute)).QueryEndpoint(context.Background(), srv.URL, "tok", "")
			if err == nil || !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
