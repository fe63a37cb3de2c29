// Package display renders quota entries for terminals, status lines and
// machine-readable output.
package display

import (
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Thresholds are the remaining-percentage cut-offs for coloring.
type Thresholds struct {
	Full     int
	Good     int
	Warning  int
	Critical int
}

// DefaultThresholds is 100/50/20/1.
var DefaultThresholds = Thresholds{Full: 100, Good: 50, Warning: 20, Critical: 1}

const (
	fullGlyph  = "●"
	emptyGlyph = "○"
)

// Palette styles percentages for one color profile. The profile is set
// explicitly so output does not depend on whether stdout is a terminal: the
// status line is usually captured by another program.
type Palette struct {
	thresholds Thresholds
	good       lipgloss.Style
	warning    lipgloss.Style
	critical   lipgloss.Style
	bold       lipgloss.Style
	dim        lipgloss.Style
}

// NewPalette returns a Palette using ANSI colors, or no escape sequences at
// all when noColor is set.
func NewPalette(t Thresholds, noColor bool) Palette {
	profile := termenv.ANSI
	if noColor {
		profile = termenv.Ascii
	}
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	return Palette{
		thresholds: t,
		good:       r.NewStyle().Foreground(lipgloss.Color("2")),
		warning:    r.NewStyle().Foreground(lipgloss.Color("3")),
		critical:   r.NewStyle().Foreground(lipgloss.Color("1")),
		bold:       r.NewStyle().Bold(true),
		dim:        r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// styleFor picks the style for a remaining percentage.
func (p Palette) styleFor(pct int) lipgloss.Style {
	switch {
	case pct >= p.thresholds.Good:
		return p.good
	case pct >= p.thresholds.Warning:
		return p.warning
	default:
		return p.critical
	}
}

// Percentage renders pct as "N%" in its threshold color. A full quota is a
// filled dot and an exhausted one a hollow dot.
func (p Palette) Percentage(pct int) string {
	switch {
	case pct >= p.thresholds.Full:
		return p.good.Render(fullGlyph)
	case pct < p.thresholds.Critical:
		return p.critical.Render(emptyGlyph)
	}
	return p.styleFor(pct).Render(strconv.Itoa(pct) + "%")
}
