package antigravity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hongyanca/coding-plan-quota-query/internal/cache"
	"github.com/hongyanca/coding-plan-quota-query/internal/errs"
	"github.com/hongyanca/coding-plan-quota-query/internal/logging"
	"github.com/hongyanca/coding-plan-quota-query/internal/models"
)

const sampleQuota = `{
  "models": {
    "gemini-3-pro-high": {"quotaInfo": {"remainingFraction": 0.85, "resetTime": "2025-01-01T12:00:00Z"}},
    "gemini-3-flash": {"quotaInfo": {"remainingFraction": 1.0, "resetTime": "2025-01-01T12:00:00Z"}},
    "claude-sonnet-4-5": {"quotaInfo": {"remainingFraction": 0.5}},
    "gpt-oss-120b": {"quotaInfo": {"remainingFraction": 0.3}},
    "gemini-2.5-flash-lite": {"displayName": "no quota"},
    "chat_20706": {"quotaInfo": {"remainingFraction": 0.9}}
  }
}`

func TestNormalize(t *testing.T) {
	got, err := Normalize(json.RawMessage(sampleQuota))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []models.ModelQuota{
		{Name: "claude-sonnet-4-5", Percentage: 50},
		{Name: "gemini-3-flash", Percentage: 100, ResetTime: "2025-01-01T12:00:00Z"},
		{Name: "gemini-3-pro-high", Percentage: 85, ResetTime: "2025-01-01T12:00:00Z"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestNormalize_Percentage(t *testing.T) {
	tests := []struct {
		fraction string
		want     int
	}{
		{"0", 0},
		{"0.999", 99},
		{"0.5", 50},
		{"0.014", 1},
		{"1", 100},
		{"1.2", 100},
		{"-0.1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.fraction, func(t *testing.T) {
			raw := `{"models":{"gemini-x":{"quotaInfo":{"remainingFraction":` + tt.fraction + `}}}}`
			got, err := Normalize(json.RawMessage(raw))
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 || got[0].Percentage != tt.want {
				t.Errorf("percentage = %+v, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalize_Empty(t *testing.T) {
	for _, raw := range []string{`{}`, `{"models":{}}`} {
		got, err := Normalize(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("Normalize(%s): %v", raw, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Normalize(%s) = %v, want empty", raw, got)
		}
	}
	if _, err := Normalize(json.RawMessage(`[]`)); !errors.Is(err, errs.ErrParse) {
		t.Errorf("expected ErrParse for array, got %v", err)
	}
}

func newTestClient(srvURL string, window time.Duration) *Client {
	return NewClient(Config{
		QuotaURL:   srvURL + "/v1internal:fetchAvailableModels",
		ProjectURL: srvURL + "/v1internal:loadCodeAssist",
		UserAgent:  "antigravity/test",
		Timeout:    5,
	}, cache.New(1, window))
}

func TestGetQuota_DebouncesUpstream(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "antigravity/test" {
			t.Errorf("User-Agent = %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["project"] != "proj-1" {
			t.Errorf("project = %v", body["project"])
		}
		_, _ = w.Write([]byte(sampleQuota))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Minute)
	ctx, buf := logging.NewTestContext(logging.Flags{Verbose: true})

	for i := 0; i < 3; i++ {
		raw, err := c.GetQuota(ctx, "tok", "proj-1")
		if err != nil {
			t.Fatalf("GetQuota #%d: %v", i, err)
		}
		if !strings.Contains(string(raw), "gemini-3-pro-high") {
			t.Errorf("unexpected payload %s", raw)
		}
	}
	if calls != 1 {
		t.Errorf("upstream called %d times, want 1", calls)
	}
	logs := buf.String()
	if !strings.Contains(logs, "Cached quota data for 1 minute(s)") {
		t.Errorf("missing store log in %q", logs)
	}
	if strings.Count(logs, "Returning cached quota data") != 2 {
		t.Errorf("expected two cache-hit logs in %q", logs)
	}
}

func TestGetQuota_OmitsEmptyProject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["project"]; ok {
			t.Errorf("project should be omitted, got %v", body)
		}
		_, _ = w.Write([]byte(`{"models":{}}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL, 0).GetQuota(context.Background(), "tok", ""); err != nil {
		t.Fatal(err)
	}
}

func TestGetQuota_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{
			name:   "upstream status kept",
			status: http.StatusForbidden,
			body:   `{"error":{"message":"denied"}}`,
			check: func(err error) bool {
				var ue *errs.UpstreamError
				return errors.As(err, &ue) && ue.StatusCode == 403 && strings.Contains(ue.Body, "denied")
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `<html>`,
			check:  func(err error) bool { return errors.Is(err, errs.ErrParse) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(srv.URL, time.Minute)
			for i := 0; i < 2; i++ {
				if _, err := c.GetQuota(context.Background(), "tok", ""); err == nil || !tt.check(err) {
					t.Errorf("unexpected error: %v", err)
				}
			}
			if calls != 2 {
				t.Errorf("failures must not be cached: %d calls", calls)
			}
		})
	}
}

func TestGetProjectID(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
		ok     bool
	}{
		{"found", http.StatusOK, `{"cloudaicompanionProject":"proj-42","currentTier":{}}`, "proj-42", true},
		{"missing field", http.StatusOK, `{"currentTier":{}}`, "", false},
		{"non-string field", http.StatusOK, `{"cloudaicompanionProject":{"id":"x"}}`, "", false},
		{"server error", http.StatusInternalServerError, `oops`, "", false},
		{"malformed", http.StatusOK, `{`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body CodeAssistRequest
				_ = json.NewDecoder(r.Body).Decode(&body)
				if body.Metadata.IDEType != "ANTIGRAVITY" {
					t.Errorf("ideType = %q", body.Metadata.IDEType)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			ctx, buf := logging.NewTestContext(logging.Flags{})
			got, ok := newTestClient(srv.URL, 0).GetProjectID(ctx, "tok")
			if got != tt.want || ok != tt.ok {
				t.Errorf("GetProjectID() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
			if !tt.ok && !strings.Contains(buf.String(), "Failed to get project ID") {
				t.Errorf("expected warning, got %q", buf.String())
			}
		})
	}
}
