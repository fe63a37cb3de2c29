package zai

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/hongyanca/coding-plan-quota-query/internal/errs"
	"github.com/hongyanca/coding-plan-quota-query/internal/models"
)

const (
	limitTypeTokens = "TOKENS_LIMIT"
	limitTypeTime   = "TIME_LIMIT"
)

// skippedTools are usage detail model codes left out of the quota view.
var skippedTools = map[string]bool{"zread": true}

// QuotaData is the quota/limit payload after the "data" envelope is removed.
type QuotaData struct {
	Limits []QuotaLimit `json:"limits"`
	Level  string       `json:"level,omitempty"`
}

// QuotaLimit is a single limit entry. Percentage is the share used.
type QuotaLimit struct {
	Type          string        `json:"type"`
	Percentage    float64       `json:"percentage"`
	NextResetTime int64         `json:"nextResetTime,omitempty"` // Unix millis
	Usage         *float64      `json:"usage,omitempty"`         // TIME_LIMIT total
	CurrentValue  float64       `json:"currentValue,omitempty"`
	UsageDetails  []UsageDetail `json:"usageDetails,omitempty"`
}

// UsageDetail is per-tool usage inside a TIME_LIMIT entry.
type UsageDetail struct {
	ModelCode string  `json:"modelCode"`
	Usage     float64 `json:"usage"`
}

// Total returns the TIME_LIMIT capacity, 100 when the field is absent.
func (q QuotaLimit) Total() float64 {
	if q.Usage == nil {
		return 100
	}
	return *q.Usage
}

// ResetTime renders NextResetTime as RFC 3339, or "" when unset.
func (q QuotaLimit) ResetTime() string {
	if q.NextResetTime <= 0 {
		return ""
	}
	return time.UnixMilli(q.NextResetTime).UTC().Format(time.RFC3339)
}

func remaining(usedPct float64) int {
	return models.ClampPct(int(math.Floor(100 - usedPct)))
}

// toolRemaining is the share left for one tool. A non-positive total counts
// as nothing used.
func toolRemaining(usage, total float64) int {
	used := 0
	if total > 0 {
		used = int(usage / total * 100)
	}
	return models.ClampPct(100 - used)
}

// Normalize converts a quota/limit payload into canonical entries, in
// upstream order. A null or empty payload yields no entries.
func Normalize(raw json.RawMessage) ([]models.ModelQuota, error) {
	var data *QuotaData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: Z.ai quota response: %v", errs.ErrParse, err)
	}
	entries := []models.ModelQuota{}
	if data == nil {
		return entries, nil
	}

	for _, limit := range data.Limits {
		switch limit.Type {
		case limitTypeTokens:
			entries = append(entries, models.ModelQuota{
				Name:       "glm",
				Percentage: remaining(limit.Percentage),
				ResetTime:  limit.ResetTime(),
			})
		case limitTypeTime:
			reset := limit.ResetTime()
			entries = append(entries, models.ModelQuota{
				Name:       "glm-coding-plan-mcp-monthly",
				Percentage: remaining(limit.Percentage),
				ResetTime:  reset,
			})
			total := limit.Total()
			for _, d := range limit.UsageDetails {
				if skippedTools[d.ModelCode] {
					continue
				}
				entries = append(entries, models.ModelQuota{
					Name:       "glm-coding-plan-" + d.ModelCode,
					Percentage: toolRemaining(d.Usage, total),
					ResetTime:  reset,
				})
			}
		}
	}
	return entries, nil
}
