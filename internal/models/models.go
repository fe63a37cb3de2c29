package models

import (
	"fmt"
	"strings"
	"time"
)

// ModelQuota is one model's remaining quota. Percentage is the share left,
// 0 to 100.
type ModelQuota struct {
	Name              string `json:"name" yaml:"name"`
	Percentage        int    `json:"percentage" yaml:"percentage"`
	ResetTime         string `json:"reset_time,omitempty" yaml:"reset_time,omitempty"`
	ResetTimeRelative string `json:"reset_time_relative,omitempty" yaml:"reset_time_relative,omitempty"`
}

// ResetAt parses ResetTime, returning nil when it is empty or invalid.
func (m ModelQuota) ResetAt() *time.Time {
	return ParseRFC3339Ptr(m.ResetTime)
}

// QuotaView is the envelope returned by the list views.
type QuotaView struct {
	Models      []ModelQuota `json:"models" yaml:"models"`
	LastUpdated int64        `json:"last_updated" yaml:"last_updated"`
	IsForbidden bool         `json:"is_forbidden" yaml:"is_forbidden"`
}

// NewQuotaView wraps entries stamped with now. A nil slice becomes empty so
// the JSON form is always a list.
func NewQuotaView(entries []ModelQuota, now time.Time) QuotaView {
	if entries == nil {
		entries = []ModelQuota{}
	}
	return QuotaView{Models: entries, LastUpdated: now.Unix()}
}

// Family is a named group of related models.
type Family string

const (
	FamilyPro    Family = "pro"
	FamilyFlash  Family = "flash"
	FamilyClaude Family = "claude"
)

var familyPatterns = map[Family][]string{
	FamilyPro:    {"gemini-3-pro-high", "gemini-3-pro-image", "gemini-3-pro-low"},
	FamilyFlash:  {"gemini-3-flash"},
	FamilyClaude: {"claude-opus-4-5-thinking", "claude-sonnet-4-5", "claude-sonnet-4-5-thinking"},
}

// Families lists every family in display order.
func Families() []Family {
	return []Family{FamilyPro, FamilyFlash, FamilyClaude}
}

// Patterns returns the name substrings that select the family's models.
func (f Family) Patterns() []string {
	return familyPatterns[f]
}

// ParseFamily accepts a family name in any case.
func ParseFamily(s string) (Family, error) {
	f := Family(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := familyPatterns[f]; !ok {
		return "", fmt.Errorf("unknown model family %q (want pro, flash or claude)", s)
	}
	return f, nil
}
