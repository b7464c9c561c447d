package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/pipeline"
	"github.com/theirongolddev/japa/internal/tui/components"
	"github.com/theirongolddev/japa/internal/tui/theme"
	"github.com/theirongolddev/japa/internal/widget"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderCounterTab(cw int) string {
	t := theme.Active
	now := a.now()
	profile := a.state.Profile
	useOriginal := a.cfg.Appearance.UseOriginalScript

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	goodStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Bold(true)

	barW := components.CardInnerWidth(cw) - 24
	if barW < 10 {
		barW = 10
	}

	var b strings.Builder

	switch {
	case a.prompt.active:
		var body strings.Builder
		body.WriteString(labelStyle.Render("Label   ") + a.prompt.label.View() + "\n")
		body.WriteString(labelStyle.Render("Target  ") + a.prompt.target.View() + "\n\n")
		body.WriteString(dimStyle.Render("[Tab] switch field  [Enter] start  [Esc] cancel"))
		b.WriteString(components.FocusCard("New session", body.String(), cw))

	case a.state.Session != nil:
		s := *a.state.Session
		var body strings.Builder
		body.WriteString(countStyle.Render(cli.FormatNumber(int64(s.CurrentCount))))
		if s.IsCompleted {
			body.WriteString(goodStyle.Render("  ✓ target reached"))
		}
		body.WriteString("\n\n")
		body.WriteString(components.TargetBar("Progress", s.CurrentCount, s.TargetCount, 9, barW))
		body.WriteString("\n")
		body.WriteString(labelStyle.Render(fmt.Sprintf("Started %s · %s elapsed",
			s.StartTime.Local().Format("15:04"), cli.FormatDuration(s.Duration(now)))))
		title := config.DisplayLabel(s.Label, useOriginal)
		b.WriteString(components.FocusCard(title, body.String(), cw))

	default:
		var body strings.Builder
		body.WriteString(labelStyle.Render("No session running. Press "))
		body.WriteString(countStyle.Render("n"))
		body.WriteString(labelStyle.Render(" to start one."))
		if last := a.lastSession; last != nil {
			body.WriteString("\n\n")
			body.WriteString(dimStyle.Render(fmt.Sprintf("Last: %s · %s in %s",
				config.DisplayLabel(last.Label, useOriginal),
				cli.FormatNumber(int64(last.CurrentCount)),
				cli.FormatDuration(last.Duration(now)))))
		}
		b.WriteString(components.ContentCard("Counter", body.String(), cw))
	}
	b.WriteString("\n")

	today := pipeline.TodayCount(a.state.History, now)
	goal := "not set"
	if profile.DailyGoal != nil {
		goal = cli.FormatNumber(int64(*profile.DailyGoal))
	}
	cards := []components.Card{
		{Label: "Today", Value: cli.FormatNumber(int64(today)), Delta: "finished sessions"},
		{Label: "Streak", Value: cli.FormatStreak(profile.CurrentStreak), Delta: "best " + cli.FormatStreak(profile.LongestStreak)},
		{Label: "Lifetime", Value: cli.FormatCount(int64(profile.TotalLifetimeCount)), Delta: "since " + profile.JoinDate.Local().Format("Jan 2006")},
		{Label: "Daily goal", Value: goal},
	}
	if a.isCompactLayout() {
		cards = cards[:3]
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	if profile.DailyGoal != nil {
		b.WriteString(components.ContentCard("Today's goal",
			components.TargetBar("Today", today, profile.DailyGoal, 9, barW), cw))
		b.WriteString("\n")
	}

	quoteStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background).Italic(true)
	b.WriteString(quoteStyle.Render("  " + truncStr(widget.Quote(now), cw-4)))

	return b.String()
}
