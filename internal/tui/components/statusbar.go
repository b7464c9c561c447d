package components

import (
	"github.com/theirongolddev/japa/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. mode names the backend
// ("local" or "daemon"); info is shown right-aligned, typically the data age
// or the last error.
func RenderStatusBar(width int, mode, info string, failed bool) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	modeStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface)
	infoStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	if failed {
		infoStyle = infoStyle.Foreground(t.Red)
	}

	left := barStyle.Render(" ") +
		keyStyle.Render("space") + hintStyle.Render(" tap  ") +
		keyStyle.Render("n") + hintStyle.Render(" new  ") +
		keyStyle.Render("e") + hintStyle.Render(" end  ") +
		keyStyle.Render("?") + hintStyle.Render(" help  ") +
		keyStyle.Render("q") + hintStyle.Render(" quit")

	right := modeStyle.Render(mode)
	if info != "" {
		right += infoStyle.Render(" · " + info)
	}
	right += barStyle.Render(" ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().Background(t.Surface).Width(width).
		Render(left + barStyle.Render(spaces(gap)) + right)
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
