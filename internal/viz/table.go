package viz

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/san-kum/diffyq/internal/experiment"
)

// RenderTable lays results for the same query points side by side: a t
// column, one column per integrator and an exact column when the equation
// has a closed-form solution.
func RenderTable(theme Theme, results ...*experiment.Result) string {
	if len(results) == 0 {
		return ""
	}

	headers := []string{"t"}
	for _, res := range results {
		headers = append(headers, res.Integrator)
	}
	hasExact := len(results[0].Rows) > 0 && results[0].Rows[0].HasExact
	if hasExact {
		headers = append(headers, "exact")
	}

	rows := make([][]string, len(results[0].Rows))
	for i, first := range results[0].Rows {
		row := []string{formatValue(first.T)}
		for _, res := range results {
			if i >= len(res.Rows) {
				row = append(row, "")
				continue
			}
			r := res.Rows[i]
			if r.Err != nil {
				row = append(row, "error")
				continue
			}
			row = append(row, formatValue(r.X))
		}
		if hasExact {
			if first.Err == nil {
				row = append(row, formatValue(first.Exact))
			} else {
				row = append(row, "")
			}
		}
		rows[i] = row
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			color := theme.Column(headers[col])
			if row == table.HeaderRow {
				return cell.Bold(true).Foreground(color)
			}
			if rows[row][col] == "error" {
				return cell.Foreground(theme.Error)
			}
			return cell.Foreground(color)
		})

	return t.Render()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}
