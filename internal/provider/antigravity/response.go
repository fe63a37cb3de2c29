package antigravity

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/hongyanca/coding-plan-quota-query/internal/errs"
	"github.com/hongyanca/coding-plan-quota-query/internal/models"
)

// QuotaRequest is the body sent to fetchAvailableModels.
type QuotaRequest struct {
	Project string `json:"project,omitempty"`
}

// CodeAssistRequest is the body sent to loadCodeAssist.
type CodeAssistRequest struct {
	Metadata CodeAssistRequestMetadata `json:"metadata"`
}

// CodeAssistRequestMetadata identifies the requesting IDE.
type CodeAssistRequestMetadata struct {
	IDEType string `json:"ideType"`
}

// QuotaResponse is the fetchAvailableModels payload. Models is keyed by
// model name.
type QuotaResponse struct {
	Models map[string]ModelInfo `json:"models"`
}

// ModelInfo contains per-model information. Only quota is read.
type ModelInfo struct {
	QuotaInfo *QuotaInfo `json:"quotaInfo,omitempty"`
}

// QuotaInfo holds the remaining share and reset time for one model.
type QuotaInfo struct {
	RemainingFraction *float64 `json:"remainingFraction,omitempty"`
	ResetTime         string   `json:"resetTime,omitempty"`
}

// Remaining converts the fraction to a whole percentage, rounding down and
// clamping to [0, 100].
func (q *QuotaInfo) Remaining() int {
	if q == nil || q.RemainingFraction == nil {
		return 0
	}
	return models.ClampPct(int(math.Floor(*q.RemainingFraction * 100)))
}

// Normalize turns a fetchAvailableModels payload into canonical entries.
// Only Gemini and Claude models that report a remaining fraction are kept.
// The result is sorted by name.
func Normalize(raw json.RawMessage) ([]models.ModelQuota, error) {
	var resp QuotaResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: quota response: %v", errs.ErrParse, err)
	}

	entries := make([]models.ModelQuota, 0, len(resp.Models))
	for name, info := range resp.Models {
		if info.QuotaInfo == nil || info.QuotaInfo.RemainingFraction == nil {
			continue
		}
		lower := strings.ToLower(name)
		if !strings.Contains(lower, "gemini") && !strings.Contains(lower, "claude") {
			continue
		}
		entries = append(entries, models.ModelQuota{
			Name:       name,
			Percentage: info.QuotaInfo.Remaining(),
			ResetTime:  info.QuotaInfo.ResetTime,
		})
	}
	models.SortByName(entries)
	return entries, nil
}
