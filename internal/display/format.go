package display

import (
	"strconv"
	"time"

	"github.com/hongyanca/coding-plan-quota-query/internal/models"
)

// FormatTimeRemaining renders the time until resetTime as "Xh Ym". A reset
// at or before now is "Reset due"; an unparseable value gives "".
func FormatTimeRemaining(resetTime string, now time.Time) string {
	at := models.ParseRFC3339Ptr(resetTime)
	if at == nil {
		return ""
	}
	d := at.Sub(now)
	if d <= 0 {
		return "Reset due"
	}
	h, m := splitHM(d)
	return formatHM(h, m)
}

// FormatTimeCompact renders the time until resetTime as "XhYm", dropping a
// zero part. It returns "" when the reset is past, less than a minute away,
// or unparseable.
func FormatTimeCompact(resetTime string, now time.Time) string {
	at := models.ParseRFC3339Ptr(resetTime)
	if at == nil {
		return ""
	}
	d := at.Sub(now)
	if d <= 0 {
		return ""
	}
	h, m := splitHM(d)
	switch {
	case h == 0 && m == 0:
		return ""
	case h == 0:
		return formatM(m)
	case m == 0:
		return strconv.Itoa(h) + "h"
	}
	return strconv.Itoa(h) + "h" + strconv.Itoa(m) + "m"
}

func splitHM(d time.Duration) (hours, minutes int) {
	total := int(d / time.Second)
	return total / 3600, (total % 3600) / 60
}

func formatHM(h, m int) string { return strconv.Itoa(h) + "h " + strconv.Itoa(m) + "m" }
func formatM(m int) string     { return strconv.Itoa(m) + "m" }

// WithRelativeTimes returns a copy of entries with ResetTimeRelative filled
// from ResetTime. Entries without a reset time are left blank.
func WithRelativeTimes(entries []models.ModelQuota, now time.Time) []models.ModelQuota {
	out := make([]models.ModelQuota, len(entries))
	for i, e := range entries {
		if e.ResetTime != "" {
			e.ResetTimeRelative = FormatTimeRemaining(e.ResetTime, now)
		}
		out[i] = e
	}
	return out
}
