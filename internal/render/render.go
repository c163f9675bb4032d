// Package render draws schedule views for terminals.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/schedule"
)

const cellWidth = 16

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Width(cellWidth).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	labelStyle = lipgloss.NewStyle().
			Width(6).
			Foreground(lipgloss.Color("244"))

	cellStyle = lipgloss.NewStyle().Width(cellWidth).Padding(0, 1)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	stateStyles = map[schedule.SlotState]lipgloss.Style{
		schedule.SlotActive:   cellStyle.Foreground(lipgloss.Color("16")).Background(lipgloss.Color("220")),
		schedule.SlotInvoiced: cellStyle.Foreground(lipgloss.Color("16")).Background(lipgloss.Color("78")),
		schedule.SlotOccupied: cellStyle.Foreground(lipgloss.Color("255")).Background(lipgloss.Color("25")),
		schedule.SlotBlocked:  cellStyle.Foreground(lipgloss.Color("255")).Background(lipgloss.Color("124")),
		schedule.SlotPast:     cellStyle.Foreground(lipgloss.Color("240")),
		schedule.SlotFree:     cellStyle.Foreground(lipgloss.Color("246")),
	}
)

// Week draws the 5-day grid: one column per day, one row per half hour.
func Week(v schedule.WeekView) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(v.Label))
	b.WriteString("\n\n")

	header := []string{labelStyle.Render("")}
	for _, day := range v.Days {
		header = append(header, headerStyle.Render(day.Title))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	for row, label := range schedule.SlotLabels() {
		cells := []string{labelStyle.Render(label)}
		for _, day := range v.Days {
			if row >= len(day.Slots) {
				cells = append(cells, cellStyle.Render(""))
				continue
			}
			cells = append(cells, Cell(day.Slots[row]))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	for _, day := range v.Days {
		for _, off := range day.OffGrid {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("%s %s: %s", day.Name, off.Label, cellText(off))))
			b.WriteString("\n")
		}
	}

	for _, e := range v.Errors {
		b.WriteString(errorStyle.Render("! " + e))
		b.WriteString("\n")
	}
	return b.String()
}

// Cell renders one slot, styled by its state.
func Cell(s schedule.SlotView) string {
	style, ok := stateStyles[s.State]
	if !ok {
		style = cellStyle
	}
	return style.Render(cellText(s))
}

func cellText(s schedule.SlotView) string {
	switch {
	case len(s.Appointments) == 1:
		return truncate(s.Appointments[0].Customer, cellWidth-2)
	case len(s.Appointments) > 1:
		return fmt.Sprintf("%d rdv", len(s.Appointments))
	case s.State == schedule.SlotBlocked:
		return "bloqué"
	case s.State == schedule.SlotPast:
		return "·"
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Summary lists the week's totals: firewood first, then the other items,
// then revenue per day.
func Summary(v schedule.WeekView) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Résumé " + v.Label))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Bois: %d stères\n", v.Summary.FirewoodTotal)
	for _, it := range v.Summary.Firewood {
		fmt.Fprintf(&b, "  %-28s %4d\n", it.Name, it.Quantity)
	}
	if len(v.Summary.Others) > 0 {
		b.WriteString("Autres:\n")
		for _, it := range v.Summary.Others {
			fmt.Fprintf(&b, "  %-28s %4d\n", it.Name, it.Quantity)
		}
	}

	b.WriteString("\n")
	for i, day := range v.Days {
		fmt.Fprintf(&b, "%-10s %12s €\n", day.Name, Money(v.Summary.DailyRevenue[i]))
	}
	fmt.Fprintf(&b, "%-10s %12s €\n", "Total", Money(v.Summary.Revenue))
	return b.String()
}

// Money formats an amount the French way: 12 345,60.
func Money(amount float64) string {
	return humanize.FormatFloat("# ###,##", amount)
}

// Event formats one broker event as a single line.
func Event(e model.ScheduleEvent) string {
	parts := []string{e.At.Format("15:04:05"), titleStyle.Render(string(e.Type))}
	if e.Date != "" {
		parts = append(parts, e.Date)
	}
	if len(e.Slots) > 0 {
		parts = append(parts, strings.Join(e.Slots, ","))
	}
	if e.AppointmentID != "" {
		parts = append(parts, "#"+e.AppointmentID)
	}
	return strings.Join(parts, " ")
}
