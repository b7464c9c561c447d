package tui

import (
	"strconv"
	"strings"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/tui/components"
	"github.com/theirongolddev/japa/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

type field struct {
	label string
	value string
}

func (a App) renderProfileTab(cw int) string {
	t := theme.Active
	p := a.state.Profile

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	render := func(fields []field) string {
		var b strings.Builder
		for i, f := range fields {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(labelStyle.Render(padTo(f.label+":", 18)))
			b.WriteString(valueStyle.Render(f.value))
		}
		return b.String()
	}

	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw, cw}
	}

	identity := components.ContentCard("Identity", render([]field{
		{"Account", accountLine(p)},
		{"Name", deref(p.Name, "(none)")},
		{"Joined", p.JoinDate.Local().Format("2006-01-02")},
		{"Lifetime count", cli.FormatNumber(int64(p.TotalLifetimeCount))},
		{"Current streak", cli.FormatStreak(p.CurrentStreak)},
		{"Longest streak", cli.FormatStreak(p.LongestStreak)},
		{"Donations", strconv.Itoa(p.TotalDonations) + " · " + cli.FormatMoney(p.TotalDonationCents)},
	}), halves[0])

	reminder := "off"
	if p.IsReminderEnabled && p.ReminderTime != nil {
		reminder = p.ReminderTime.Local().Format("15:04")
	}
	labels := "(none)"
	if len(p.PreferredLabels) > 0 {
		labels = strings.Join(p.PreferredLabels, ", ")
	}
	prefs := components.ContentCard("Preferences", render([]field{
		{"Daily goal", cli.FormatTarget(p.DailyGoal)},
		{"Preferred labels", truncStr(labels, components.CardInnerWidth(halves[1])-18)},
		{"Reminder", reminder},
		{"Session length", strconv.Itoa(p.FavoriteSessionMinutes) + " min"},
		{"Music track", deref(p.PreferredMusicTrack, "(none)")},
	}), halves[1])

	var top string
	if a.isCompactLayout() {
		top = identity + "\n" + prefs
	} else {
		top = components.CardRow([]string{identity, prefs})
	}

	settings := render([]field{
		{"Theme", theme.Active.Name},
		{"Default label", a.cfg.General.DefaultLabel},
		{"Default target", cli.FormatTarget(a.cfg.General.DefaultTarget)},
		{"History range", strconv.Itoa(a.days) + " days"},
		{"Widget mirror", a.cfg.Widget.Backend},
		{"Backend", a.backend.Mode()},
		{"Config file", config.Path()},
	}) + "\n\n" + dimStyle.Render("[t] cycle theme · `japa profile set` edits preferences")

	return top + "\n" + components.ContentCard("Settings", settings, cw)
}

func accountLine(p model.Profile) string {
	switch {
	case p.AppleUserID != nil:
		return "Apple · " + *p.AppleUserID
	case p.GoogleEmail != nil:
		return "Google · " + *p.GoogleEmail
	}
	return "guest"
}

func deref(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func padTo(s string, w int) string {
	if n := lipgloss.Width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s + " "
}
