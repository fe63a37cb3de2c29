package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func names(entries []ModelQuota) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestFilterByPattern(t *testing.T) {
	entries := []ModelQuota{
		{Name: "gemini-3-pro-high"},
		{Name: "Claude-Sonnet-4-5"},
		{Name: "gpt-oss-120b"},
		{Name: "gemini-3-flash"},
	}
	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{"single pattern", []string{"gemini"}, []string{"gemini-3-pro-high", "gemini-3-flash"}},
		{"case insensitive", []string{"CLAUDE"}, []string{"Claude-Sonnet-4-5"}},
		{"any of several", []string{"flash", "gpt"}, []string{"gpt-oss-120b", "gemini-3-flash"}},
		{"no match", []string{"llama"}, []string{}},
		{"no patterns", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(FilterByPattern(entries, tt.patterns))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterByPattern() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterFamily(t *testing.T) {
	entries := []ModelQuota{
		{Name: "claude-opus-4-5-thinking"},
		{Name: "claude-sonnet-4-5"},
		{Name: "claude-sonnet-4-5-thinking"},
		{Name: "gemini-2.5-flash"},
		{Name: "gemini-3-flash"},
		{Name: "gemini-3-pro-high"},
		{Name: "gemini-3-pro-image"},
		{Name: "gemini-3-pro-low"},
	}
	tests := []struct {
		family Family
		want   []string
	}{
		{FamilyPro, []string{"gemini-3-pro-high", "gemini-3-pro-image", "gemini-3-pro-low"}},
		{FamilyFlash, []string{"gemini-3-flash"}},
		{FamilyClaude, []string{"claude-opus-4-5-thinking", "claude-sonnet-4-5", "claude-sonnet-4-5-thinking"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			got := names(FilterFamily(entries, tt.family))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterFamily(%s) = %v, want %v", tt.family, got, tt.want)
			}
		})
	}
}

func TestParseFamily(t *testing.T) {
	for _, in := range []string{"pro", "Flash", " CLAUDE "} {
		if _, err := ParseFamily(in); err != nil {
			t.Errorf("ParseFamily(%q) error: %v", in, err)
		}
	}
	if _, err := ParseFamily("gpt"); err == nil {
		t.Error("ParseFamily(gpt) should fail")
	}
	if len(Families()) != 3 {
		t.Errorf("Families() = %v", Families())
	}
}

func TestSortByName(t *testing.T) {
	entries := []ModelQuota{{Name: "gemini-3-pro-high"}, {Name: "Zeta"}, {Name: "claude-sonnet-4-5"}, {Name: "gemini-3-flash"}}
	SortByName(entries)
	want := []string{"Zeta", "claude-sonnet-4-5", "gemini-3-flash", "gemini-3-pro-high"}
	if got := names(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("SortByName() = %v, want %v", got, want)
	}
}

func TestFind(t *testing.T) {
	entries := []ModelQuota{{Name: "claude-sonnet-4-5-thinking", Percentage: 10}, {Name: "claude-sonnet-4-5", Percentage: 50}}
	if m, ok := FindExact(entries, "claude-sonnet-4-5"); !ok || m.Percentage != 50 {
		t.Errorf("FindExact = %+v, %v", m, ok)
	}
	if m, ok := FindContaining(entries, "claude-sonnet-4-5"); !ok || m.Percentage != 10 {
		t.Errorf("FindContaining = %+v, %v", m, ok)
	}
	if _, ok := FindExact(entries, "gemini"); ok {
		t.Error("FindExact should miss")
	}
}

func TestClampPct(t *testing.T) {
	tests := []struct{ in, want int }{{-5, 0}, {0, 0}, {42, 42}, {100, 100}, {150, 100}}
	for _, tt := range tests {
		if got := ClampPct(tt.in); got != tt.want {
			t.Errorf("ClampPct(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseRFC3339Ptr(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"2025-01-01T12:00:00Z", 1735732800, true},
		{"2025-01-01T12:00:00.123456Z", 1735732800, true},
		{"2025-01-01T14:00:00+02:00", 1735732800, true},
		{"", 0, false},
		{"  ", 0, false},
		{"tomorrow", 0, false},
	}
	for _, tt := range tests {
		got := ParseRFC3339Ptr(tt.in)
		if (got != nil) != tt.ok {
			t.Errorf("ParseRFC3339Ptr(%q) = %v, ok want %v", tt.in, got, tt.ok)
			continue
		}
		if got != nil && got.Unix() != tt.want {
			t.Errorf("ParseRFC3339Ptr(%q) = %d, want %d", tt.in, got.Unix(), tt.want)
		}
	}
}

func TestQuotaView_JSON(t *testing.T) {
	view := NewQuotaView(nil, time.Unix(1700000000, 0))
	data, err := json.Marshal(view)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"models":[],"last_updated":1700000000,"is_forbidden":false}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	entry, _ := json.Marshal(ModelQuota{Name: "glm", Percentage: 80})
	if string(entry) != `{"name":"glm","percentage":80}` {
		t.Errorf("entry json = %s", entry)
	}
}
