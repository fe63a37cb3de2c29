package display

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hongyanca/coding-plan-quota-query/internal/models"
)

// TableOptions configures table rendering.
type TableOptions struct {
	Title string
	// Width is the terminal width. Below wideTable the absolute reset
	// column is dropped.
	Width int
}

const wideTable = 72

// RenderTable lays entries out as a bordered table with remaining
// percentage and time to reset.
func (p Palette) RenderTable(entries []models.ModelQuota, now time.Time, opts TableOptions) string {
	wide := opts.Width == 0 || opts.Width >= wideTable
	headers := []string{"Model", "Remaining", "Resets in"}
	if wide {
		headers = append(headers, "Reset at")
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := []string{e.Name, p.styleFor(e.Percentage).Render(strconv.Itoa(e.Percentage) + "%"), FormatTimeRemaining(e.ResetTime, now)}
		if wide {
			reset := ""
			if at := e.ResetAt(); at != nil {
				reset = at.Local().Format("Jan 2 15:04")
			}
			row = append(row, reset)
		}
		rows = append(rows, row)
	}
	return p.newTable(headers, rows, opts.Title)
}

func (p Palette) newTable(headers []string, rows [][]string, title string) string {
	headerStyle := p.bold.Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Headers(headers...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.dim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, row := range rows {
		t.Row(row...)
	}

	rendered := t.String()
	if title != "" {
		return p.bold.Render(title) + "\n" + rendered
	}
	return rendered
}
