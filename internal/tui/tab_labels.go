package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/pipeline"
	"github.com/theirongolddev/japa/internal/tui/components"
	"github.com/theirongolddev/japa/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const weeksShown = 8

func (a App) renderLabelsTab(cw int) string {
	t := theme.Active
	now := a.now()
	since := pipeline.StartOfDay(now).AddDate(0, 0, -(a.days - 1))
	labels := pipeline.AggregateLabels(a.state.History, since, now.AddDate(0, 0, 1))

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw, cw}
	}

	var lb strings.Builder
	if len(labels) == 0 {
		lb.WriteString(mutedStyle.Render("No finished sessions in this range."))
	}
	inner := components.CardInnerWidth(halves[0])
	barMax := inner - 16 - 18
	if barMax < 4 {
		barMax = 4
	}
	top := 0
	if len(labels) > 0 {
		top = labels[0].Count
	}
	for i, ls := range labels {
		if i > 0 {
			lb.WriteString("\n")
		}
		name := truncStr(config.DisplayLabel(ls.Label, a.cfg.Appearance.UseOriginalScript), 14)
		w := 0
		if top > 0 {
			w = ls.Count * barMax / top
		}
		lb.WriteString(nameStyle.Render(name))
		lb.WriteString(spaceStyle.Render(strings.Repeat(" ", max(1, 16-lipgloss.Width(name)))))
		lb.WriteString(barStyle.Render(strings.Repeat("█", w)))
		lb.WriteString(spaceStyle.Render(strings.Repeat(" ", barMax-w+1)))
		lb.WriteString(mutedStyle.Render(fmt.Sprintf("%8s %6s",
			cli.FormatNumber(int64(ls.Count)), cli.FormatPercent(ls.SharePercent/100))))
	}
	labelCard := components.ContentCard(fmt.Sprintf("Labels (%dd)", a.days), lb.String(), halves[0])

	weeks := pipeline.AggregateWeeks(a.state.History)
	if len(weeks) > weeksShown {
		weeks = weeks[:weeksShown]
	}
	var wb strings.Builder
	if len(weeks) == 0 {
		wb.WriteString(mutedStyle.Render("No weeks recorded yet."))
	}
	for i, ws := range weeks {
		if i > 0 {
			wb.WriteString("\n")
		}
		wb.WriteString(mutedStyle.Render(fmt.Sprintf("%-10s ", ws.WeekStart.Format("Jan 02"))))
		wb.WriteString(nameStyle.Render(fmt.Sprintf("%10s", cli.FormatNumber(int64(ws.Count)))))
		wb.WriteString(mutedStyle.Render(fmt.Sprintf("  %3d sessions  %8s", ws.Sessions, cli.FormatDuration(ws.TimeSpent))))
	}
	weekCard := components.ContentCard("Weeks", wb.String(), halves[1])

	if a.isCompactLayout() {
		return labelCard + "\n" + weekCard
	}
	return components.CardRow([]string{labelCard, weekCard})
}
