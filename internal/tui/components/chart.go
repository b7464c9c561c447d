package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/japa/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var (
	sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	// Index 0 is an empty cell; 8 is a full one.
	barBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := peakOf(values)

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[max(0, min(idx, len(sparkBlocks)-1))])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// peakOf returns the largest value, or 1 when nothing is positive.
func peakOf(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		return 1
	}
	return peak
}

// yScale maps counts onto chart rows. Row 0 is the x axis.
type yScale struct {
	step    float64
	ceiling float64
	rowsPer int
	rows    int
	labelW  int
}

func newYScale(peak float64, height int) yScale {
	step := chartTickStep(peak)
	maxIntervals := max(2, height/2)
	for int(math.Ceil(peak/step)) > maxIntervals {
		step *= 2
	}
	ceiling := math.Ceil(peak/step) * step
	intervals := max(1, int(math.Round(ceiling/step)))
	rowsPer := max(2, height/intervals)

	return yScale{
		step:    step,
		ceiling: ceiling,
		rowsPer: rowsPer,
		rows:    rowsPer * intervals,
		labelW:  max(4, len(formatChartLabel(ceiling))+1),
	}
}

// tick returns the axis label for row, or "" between ticks.
func (s yScale) tick(row int) string {
	if row%s.rowsPer != 0 {
		return ""
	}
	return formatChartLabel(s.step * float64(row/s.rowsPer))
}

// bounds returns the count range covered by row.
func (s yScale) bounds(row int) (bottom, top float64) {
	return s.ceiling * float64(row-1) / float64(s.rows), s.ceiling * float64(row) / float64(s.rows)
}

// goalRow returns the row the goal rule is drawn on, or 0 when the goal is
// unset or above the chart.
func (s yScale) goalRow(goal float64) int {
	if goal <= 0 || goal > s.ceiling {
		return 0
	}
	return max(1, int(math.Round(goal/s.ceiling*float64(s.rows))))
}

// BarChart renders daily totals as vertical bars. Bars for days that reached
// goal are drawn green and a dotted rule marks the goal height; a goal of zero
// disables both.
func BarChart(values []float64, labels []string, goal float64, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, theme.Active.Accent)
	}

	t := theme.Active
	scale := newYScale(peakOf(values), height)
	chartW := max(5, width-scale.labelW-1)

	values, labels, barW, gap := fitBars(values, labels, chartW)
	n := len(values)
	axisLen := n*barW + max(0, n-1)*gap

	surface := lipgloss.NewStyle().Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	metStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	ruleStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)

	styleFor := func(v float64) lipgloss.Style {
		if goal > 0 && v >= goal {
			return metStyle
		}
		return barStyle
	}
	ruleRow := scale.goalRow(goal)

	var b strings.Builder
	for row := scale.rows; row >= 1; row-- {
		bottom, top := scale.bounds(row)
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", scale.labelW, scale.tick(row))))

		empty := surface.Render(strings.Repeat(" ", barW))
		spacer := surface.Render(strings.Repeat(" ", gap))
		if row == ruleRow {
			empty = ruleStyle.Render(strings.Repeat("┈", barW))
			spacer = ruleStyle.Render(strings.Repeat("┈", gap))
		}

		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(spacer)
			}
			switch {
			case v >= top:
				b.WriteString(styleFor(v).Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * 8)
				b.WriteString(styleFor(v).Render(strings.Repeat(string(barBlocks[max(1, min(idx, 8))]), barW)))
			default:
				b.WriteString(empty)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", scale.labelW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(surface.Render(strings.Repeat(" ", scale.labelW+1)))
		b.WriteString(axisStyle.Render(axisLabels(labels, barW, gap, axisLen)))
	}
	return b.String()
}

// fitBars picks a bar width for chartW columns. When even two-column bars do
// not fit, values (and labels, when given) are sampled down evenly, keeping
// the first and last day.
func fitBars(values []float64, labels []string, chartW int) ([]float64, []string, int, int) {
	n := len(values)
	if n == 1 {
		return values, labels, min(chartW, 6), 0
	}

	barW := (chartW - (n - 1)) / n
	if barW < 2 {
		keep := max(2, (chartW+1)/3)
		sampled := make([]float64, keep)
		var sampledLabels []string
		if len(labels) == n {
			sampledLabels = make([]string, keep)
		}
		for i := range sampled {
			src := i * (n - 1) / (keep - 1)
			sampled[i] = values[src]
			if sampledLabels != nil {
				sampledLabels[i] = labels[src]
			}
		}
		values, labels, barW = sampled, sampledLabels, 2
	}
	return values, labels, min(barW, 6), 1
}

// axisLabels lays labels under their bars, skipping any that would collide.
// The last label is always placed so the most recent day is identifiable.
func axisLabels(labels []string, barW, gap, axisLen int) string {
	buf := []byte(strings.Repeat(" ", axisLen))
	n := len(labels)
	step := max(1, (n*8)/(axisLen+1))

	lastEnd := -1
	for i := 0; i < n; i += step {
		pos := i * (barW + gap)
		lbl := labels[i]
		if pos <= lastEnd {
			continue
		}
		end := pos + len(lbl)
		if end > axisLen {
			end = axisLen
			if end-pos < 3 {
				continue
			}
			lbl = lbl[:end-pos]
		}
		copy(buf[pos:end], lbl)
		lastEnd = end + 1
	}

	if n > 1 {
		lbl := labels[n-1]
		pos := min((n-1)*(barW+gap), axisLen-len(lbl))
		if pos >= 0 && pos > lastEnd {
			copy(buf[pos:pos+len(lbl)], lbl)
		}
	}
	return strings.TrimRight(string(buf), " ")
}

// chartTickStep computes a whole-number tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 5 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))

	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e6:
		return trimZero(fmt.Sprintf("%.1f", v/1e6)) + "M"
	case v >= 1e3:
		return trimZero(fmt.Sprintf("%.1f", v/1e3)) + "k"
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
