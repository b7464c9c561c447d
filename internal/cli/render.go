package cli

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/japa/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// styles are rebuilt from the theme so command output matches the TUI.
type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	value  lipgloss.Style
	muted  lipgloss.Style
	dim    lipgloss.Style
	count  lipgloss.Style
	streak lipgloss.Style
	good   lipgloss.Style
	border lipgloss.Color
}

var st = newStyles(theme.Active)

func newStyles(t theme.Theme) styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary).Align(lipgloss.Center),
		header: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		value:  lipgloss.NewStyle().Foreground(t.TextPrimary),
		muted:  lipgloss.NewStyle().Foreground(t.TextMuted),
		dim:    lipgloss.NewStyle().Foreground(t.TextDim),
		count:  lipgloss.NewStyle().Bold(true).Foreground(t.AccentBright),
		streak: lipgloss.NewStyle().Foreground(t.Yellow),
		good:   lipgloss.NewStyle().Foreground(t.Green),
		border: t.Border,
	}
}

// UseTheme switches command output to the named theme.
func UseTheme(name string) {
	st = newStyles(theme.ByName(name))
}

// Count, Streak, Good and Muted style inline values in command output.
func Count(s string) string { return st.count.Render(s) }
func Streak(s string) string { return st.streak.Render(s) }
func Good(s string) string { return st.good.Render(s) }
func Muted(s string) string { return st.muted.Render(s) }

// Table represents a bordered text table for CLI output. A row holding the
// single cell "---" draws a separator.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title in a rounded box at least 55 columns wide.
func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(st.border).
		Width(max(55, lipgloss.Width(title)+4)).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(st.title.Render(title))
}

func (t Table) columns() int {
	if len(t.Headers) > 0 {
		return len(t.Headers)
	}
	if len(t.Rows) > 0 {
		return len(t.Rows[0])
	}
	return 0
}

func (t Table) widths(n int) []int {
	widths := make([]int, n)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	measure := func(cells []string) {
		for i, c := range cells {
			if i < n {
				widths[i] = max(widths[i], lipgloss.Width(c))
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}
	return widths
}

// RenderTable renders a bordered table. The first column is left-aligned and
// the rest are right-aligned, since they hold counts and durations.
func RenderTable(t Table) string {
	n := t.columns()
	if n == 0 {
		return ""
	}
	widths := t.widths(n)

	rule := func(left, mid, right string) string {
		segs := make([]string, n)
		for i, w := range widths {
			segs[i] = strings.Repeat("─", w+2)
		}
		return st.dim.Render(left+strings.Join(segs, mid)+right) + "\n"
	}
	line := func(cells []string, style lipgloss.Style, alignRight bool) string {
		var b strings.Builder
		sep := st.dim.Render("│")
		b.WriteString(sep)
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if alignRight && i > 0 {
				cell = padLeft(cell, w)
			} else {
				cell = padRight(cell, w)
			}
			b.WriteString(style.Render(" " + cell + " "))
			b.WriteString(sep)
		}
		return b.String() + "\n"
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + st.header.Render(t.Title) + "\n")
	}
	b.WriteString(rule("╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(line(t.Headers, st.header, false))
		b.WriteString(rule("├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(rule("├", "┼", "┤"))
			continue
		}
		b.WriteString(line(row, st.value, true))
	}
	b.WriteString(rule("╰", "┴", "╯"))
	return b.String()
}

// padRight and padLeft pad by display width so emoji labels line up.
func padRight(s string, w int) string {
	if n := w - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func padLeft(s string, w int) string {
	if n := w - lipgloss.Width(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

// RenderStats renders aligned "label  value" lines under a heading.
func RenderStats(heading string, rows [][2]string) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r[0]))
	}

	var b strings.Builder
	if heading != "" {
		b.WriteString("  " + st.header.Render(heading) + "\n")
	}
	for _, r := range rows {
		b.WriteString("    " + st.muted.Render(padRight(r[0], width)) + "  " + st.value.Render(r[1]) + "\n")
	}
	return b.String()
}

// RenderProgressBar renders "[████░░░░] 54/108  50%". The bar stops at full
// when current passes total; the numbers do not.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}
	pct := min(float64(current)/float64(total), 1)
	filled := min(int(pct*float64(width)), width)

	bar := st.count.Render(strings.Repeat("█", filled)) + st.dim.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("[%s] %s/%s  %.0f%%", bar,
		FormatNumber(int64(current)), FormatNumber(int64(total)), pct*100)
}

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		b.WriteRune(sparkBlocks[max(0, min(idx, len(sparkBlocks)-1))])
	}
	return st.count.Render(b.String())
}

// RenderHorizontalBar renders one "label ████" line of a bar chart.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return "  " + label
	}
	barLen := max(0, int(value/maxValue*float64(maxWidth)))
	return "  " + padRight(label, 12) + " " + st.count.Render(strings.Repeat("█", barLen))
}
