package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table rendering styles
var (
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#BD93F9")).
				Background(lipgloss.Color("#44475A"))

	tableCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8F8F2"))

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6272A4"))

	tableSeparatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#44475A"))

	tableTotalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))
)

// TableConfig represents configuration for table rendering
type TableConfig struct {
	Headers  []string
	Rows     [][]string
	Title    string
	TotalRow []string // rendered under a separator when set
}

// RenderTable renders a formatted table using lipgloss
func RenderTable(config TableConfig) string {
	if len(config.Headers) == 0 {
		return ""
	}

	var output strings.Builder

	if config.Title != "" {
		output.WriteString(applyStyle(tableTotalStyle, config.Title))
		output.WriteString("\n\n")
	}

	colWidths := make([]int, len(config.Headers))
	for i, header := range config.Headers {
		colWidths[i] = lipgloss.Width(header)
	}
	allRows := config.Rows
	if len(config.TotalRow) > 0 {
		allRows = append(allRows[:len(allRows):len(allRows)], config.TotalRow)
	}
	for _, row := range allRows {
		for i, cell := range row {
			if i < len(colWidths) {
				colWidths[i] = max(colWidths[i], lipgloss.Width(cell))
			}
		}
	}

	separator := make([]string, len(config.Headers))
	for i, width := range colWidths {
		separator[i] = strings.Repeat("-", width)
	}

	output.WriteString(renderTableRow(config.Headers, colWidths, tableHeaderStyle))
	output.WriteString(renderTableRow(separator, colWidths, tableSeparatorStyle))
	for _, row := range config.Rows {
		output.WriteString(renderTableRow(row, colWidths, tableCellStyle))
	}
	if len(config.TotalRow) > 0 {
		output.WriteString(renderTableRow(separator, colWidths, tableSeparatorStyle))
		output.WriteString(renderTableRow(config.TotalRow, colWidths, tableTotalStyle))
	}

	return output.String()
}

// renderTableRow renders a single newline-terminated row
func renderTableRow(cells []string, colWidths []int, style lipgloss.Style) string {
	var row strings.Builder

	for i, cell := range cells {
		if i >= len(colWidths) {
			break
		}
		padding := colWidths[i] - lipgloss.Width(cell)
		row.WriteString(applyStyle(style, cell+strings.Repeat(" ", max(0, padding))))
		if i < len(cells)-1 && i < len(colWidths)-1 {
			row.WriteString(applyStyle(tableBorderStyle, " | "))
		}
	}
	row.WriteString("\n")

	return row.String()
}

// FormatCount renders n followed by noun, pluralised with a trailing s
func FormatCount(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
