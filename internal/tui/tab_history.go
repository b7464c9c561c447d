package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/pipeline"
	"github.com/theirongolddev/japa/internal/tui/components"
	"github.com/theirongolddev/japa/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderHistoryTab(cw, contentH int) string {
	t := theme.Active
	now := a.now()
	since := pipeline.StartOfDay(now).AddDate(0, 0, -(a.days - 1))
	goal := a.state.Profile.DailyGoal

	stats := pipeline.Aggregate(a.state.History, since, now.AddDate(0, 0, 1), goal)
	days := pipeline.AggregateDays(a.state.History, since, now)

	var b strings.Builder

	goalDays := "no goal"
	if goal != nil {
		goalDays = fmt.Sprintf("%d of %d days", stats.GoalDays, len(days))
	}
	cards := []components.Card{
		{Label: fmt.Sprintf("Count (%dd)", a.days), Value: cli.FormatNumber(int64(stats.TotalCount)), Delta: fmt.Sprintf("%.0f/active day", stats.CountPerDay)},
		{Label: "Sessions", Value: cli.FormatNumber(int64(stats.TotalSessions)), Delta: cli.FormatDuration(stats.TimeSpent)},
		{Label: "Active days", Value: fmt.Sprintf("%d", stats.ActiveDays), Delta: fmt.Sprintf("%.0f min/day", stats.MinutesPerDay)},
		{Label: "Goal met", Value: goalDays},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	chartH := 8
	if a.isCompactLayout() {
		chartH = 6
	}
	vals := make([]float64, len(days))
	for i, d := range days {
		vals[len(days)-1-i] = float64(d.TotalCount)
	}
	goalLine := 0.0
	if goal != nil {
		goalLine = float64(*goal)
	}
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Daily count (%dd)", a.days),
		components.BarChart(vals, chartDateLabels(days), goalLine, components.CardInnerWidth(cw), chartH),
		cw,
	))
	b.WriteString("\n")

	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	metStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)

	// Rows left for the table: cards (~5), chart (chartH + 4) and the card chrome.
	visible := contentH - lipgloss.Height(b.String()) - 4
	if visible < 3 {
		visible = 3
	}
	offset := a.histOffset
	if maxOff := len(days) - visible; offset > maxOff {
		offset = max(0, maxOff)
	}

	var table strings.Builder
	table.WriteString(headStyle.Render(fmt.Sprintf("%-12s %-4s %10s %9s %10s  %s", "Date", "Day", "Count", "Sessions", "Time", "Goal")))
	table.WriteString("\n")
	end := min(len(days), offset+visible)
	for _, d := range days[offset:end] {
		style := rowStyle
		if d.TotalCount == 0 {
			style = dimStyle
		}
		met := dimStyle.Render("·")
		if d.GoalMet(goal) {
			met = metStyle.Render("✓")
		}
		table.WriteString(style.Render(fmt.Sprintf("%-12s %-4s %10s %9d %10s  ",
			d.Date.Format("2006-01-02"),
			cli.FormatDayOfWeek(int(d.Date.Weekday())),
			cli.FormatNumber(int64(d.TotalCount)),
			d.SessionsCompleted,
			cli.FormatDuration(d.TimeSpent))))
		table.WriteString(met)
		table.WriteString("\n")
	}
	if len(days) > visible {
		table.WriteString(dimStyle.Render(fmt.Sprintf("%d-%d of %d  [j/k] scroll", offset+1, end, len(days))))
	}

	b.WriteString(components.ContentCard("Days", strings.TrimRight(table.String(), "\n"), cw))
	return b.String()
}
