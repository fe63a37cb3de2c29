package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/hongyanca/coding-plan-quota-query/internal/models"
)

// Nerd Font glyphs for the status line.
const (
	IconGemini = "󰊭"
	IconFlash  = "󰉁"
	IconClaude = "󰛄"
)

const (
	proModel    = "gemini-3-pro-high"
	flashModel  = "gemini-3-flash"
	claudeModel = "claude-sonnet-4-5"
)

// headline is the entry picked to represent one family.
type headline struct {
	pct   int
	reset string
}

// pickHeadlines selects the pro and flash models by substring and Claude by
// exact name. A missing model reports 0%.
func pickHeadlines(entries []models.ModelQuota) (pro, flash, claude headline) {
	if m, ok := models.FindContaining(entries, proModel); ok {
		pro = headline{m.Percentage, m.ResetTime}
	}
	if m, ok := models.FindContaining(entries, flashModel); ok {
		flash = headline{m.Percentage, m.ResetTime}
	}
	if m, ok := models.FindExact(entries, claudeModel); ok {
		claude = headline{m.Percentage, m.ResetTime}
	}
	return pro, flash, claude
}

// Overview renders "Pro P% | Flash F% | Claude C%".
func Overview(entries []models.ModelQuota) string {
	pro, flash, claude := pickHeadlines(entries)
	return fmt.Sprintf("Pro %d%% | Flash %d%% | Claude %d%%", pro.pct, flash.pct, claude.pct)
}

// StatusLine renders one segment per headline model, joined by " | ".
func (p Palette) StatusLine(entries []models.ModelQuota, now time.Time) string {
	pro, flash, claude := pickHeadlines(entries)
	return strings.Join([]string{
		p.segment(IconGemini, pro, now),
		p.segment(IconFlash, flash, now),
		p.segment(IconClaude, claude, now),
	}, " | ")
}

// segment shows only the colored icon at full or empty quota, otherwise the
// icon, the styled percentage and the compact time to reset when known.
func (p Palette) segment(icon string, h headline, now time.Time) string {
	switch {
	case h.pct >= p.thresholds.Full:
		return p.good.Render(icon)
	case h.pct <= 0:
		return p.critical.Render(icon)
	}
	out := icon + " " + p.Percentage(h.pct)
	if t := FormatTimeCompact(h.reset, now); t != "" {
		out += " " + t
	}
	return out
}
