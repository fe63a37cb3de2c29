package models

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ParseRFC3339Ptr parses an RFC 3339 timestamp and returns a pointer to the
// resulting time. Returns nil if the input is empty, whitespace-only, or
// not a valid RFC 3339 string. Fractional seconds are accepted.
func ParseRFC3339Ptr(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil
	}
	return &t
}

// ClampPct clamps an integer percentage to the range [0, 100].
func ClampPct(v int) int {
	return max(0, min(v, 100))
}

// FilterByPattern keeps entries whose name contains any of patterns,
// ignoring case. Order is preserved.
func FilterByPattern(entries []ModelQuota, patterns []string) []ModelQuota {
	lowered := lo.Map(patterns, func(p string, _ int) string { return strings.ToLower(p) })
	return lo.Filter(entries, func(m ModelQuota, _ int) bool {
		name := strings.ToLower(m.Name)
		return lo.ContainsBy(lowered, func(p string) bool { return strings.Contains(name, p) })
	})
}

// FilterFamily keeps the entries belonging to f.
func FilterFamily(entries []ModelQuota, f Family) []ModelQuota {
	return FilterByPattern(entries, f.Patterns())
}

// SortByName sorts entries by name in place, byte-wise ascending.
func SortByName(entries []ModelQuota) {
	slices.SortStableFunc(entries, func(a, b ModelQuota) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// FindContaining returns the first entry whose name contains substr,
// ignoring case.
func FindContaining(entries []ModelQuota, substr string) (ModelQuota, bool) {
	substr = strings.ToLower(substr)
	return lo.Find(entries, func(m ModelQuota) bool { return strings.Contains(strings.ToLower(m.Name), substr) })
}

// FindExact returns the entry named name, ignoring case.
func FindExact(entries []ModelQuota, name string) (ModelQuota, bool) {
	return lo.Find(entries, func(m ModelQuota) bool { return strings.EqualFold(m.Name, name) })
}
