// Package cli renders budgetflow data for terminal output.
package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/viant/budgetflow/model"
)

var (
	ColorBorder = lipgloss.Color("#575653")
	ColorAccent = lipgloss.Color("#3AA99F")
	ColorGreen  = lipgloss.Color("#879A39")
	ColorOrange = lipgloss.Color("#DA702C")
	ColorRed    = lipgloss.Color("#D14D41")
	ColorMuted  = lipgloss.Color("#6F6E69")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(ColorBorder)
)

// Table is a bordered text table.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a bold heading.
func RenderTitle(title string) string {
	return titleStyle.Render(title)
}

// RenderTable renders t with rounded borders.
func RenderTable(t Table) string {
	if len(t.Headers) == 0 && len(t.Rows) == 0 {
		return ""
	}
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	var b strings.Builder
	if t.Title != "" {
		b.WriteString(RenderTitle(t.Title))
		b.WriteString("\n")
	}
	b.WriteString(tbl.String())
	b.WriteString("\n")
	return b.String()
}

// RenderStatus colours a request or step status.
func RenderStatus(status string) string {
	style := lipgloss.NewStyle()
	switch status {
	case string(model.RequestApproved):
		style = style.Foreground(ColorGreen)
	case string(model.RequestRejected):
		style = style.Foreground(ColorRed)
	case string(model.RequestPending):
		style = style.Foreground(ColorOrange)
	default:
		style = style.Foreground(ColorMuted)
	}
	return style.Render(status)
}

// FormatAmount renders an amount with two decimals and thousands
// separators.
func FormatAmount(amount decimal.Decimal) string {
	text := amount.StringFixed(model.AmountScale)
	sign := ""
	if strings.HasPrefix(text, "-") {
		sign, text = "-", text[1:]
	}
	whole, fraction, _ := strings.Cut(text, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + fraction
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(rate decimal.Decimal) string {
	return rate.StringFixed(2) + "%"
}
