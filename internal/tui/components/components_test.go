package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{80, 3}, {81, 4}, {7, 7}, {100, 1}} {
		sum := 0
		for _, w := range LayoutRow(tc.total, tc.n) {
			sum += w
		}
		if sum != tc.total {
			t.Fatalf("LayoutRow(%d, %d) sums to %d", tc.total, tc.n, sum)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("zero columns should return nil")
	}
}

func TestChartTickStepIsWhole(t *testing.T) {
	for _, maxVal := range []float64{0, 3, 9, 108, 1008, 25000} {
		step := chartTickStep(maxVal)
		if step < 1 || step != float64(int64(step)) {
			t.Fatalf("chartTickStep(%v) = %v, want a whole number >= 1", maxVal, step)
		}
	}
}

func TestBarChartFallsBackToSparkline(t *testing.T) {
	out := BarChart([]float64{1, 2, 3}, nil, 0, 10, 2)
	if strings.Contains(out, "\n") {
		t.Fatalf("narrow chart should be a single-line sparkline, got %q", out)
	}
}

func TestBarChartHasAxisAndLabels(t *testing.T) {
	out := BarChart([]float64{0, 54, 108, 216}, []string{"Mar", "2", "3", "4"}, 108, 40, 8)
	lines := strings.Split(out, "\n")
	if len(lines) < 4 {
		t.Fatalf("expected several rows, got %d", len(lines))
	}
	if !strings.Contains(lines[len(lines)-2], "└") {
		t.Fatalf("second to last line should be the x axis, got %q", lines[len(lines)-2])
	}
	if !strings.Contains(lines[len(lines)-1], "Mar") {
		t.Fatalf("last line should carry date labels, got %q", lines[len(lines)-1])
	}
}

func TestTargetBarWithoutTarget(t *testing.T) {
	out := TargetBar("Om", 42, nil, 8, 20)
	if !strings.Contains(out, "42") || strings.Contains(out, "/") {
		t.Fatalf("untargeted bar should show the bare count, got %q", out)
	}

	target := 108
	out = TargetBar("Om", 42, &target, 8, 20)
	if !strings.Contains(out, "42") || !strings.Contains(out, "/ 108") {
		t.Fatalf("targeted bar should show count / target, got %q", out)
	}
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	for active := range Tabs {
		bar := RenderTabBar(active, 0)
		want := 0
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		want += len(Tabs) - 1 // separators
		if got := lipgloss.Width(bar); got != want {
			t.Fatalf("active=%d: rendered width %d, computed %d", active, got, want)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('h'); got != 1 {
		t.Fatalf("TabIdxByKey('h') = %d, want 1", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Fatalf("TabIdxByKey('z') = %d, want -1", got)
	}
}

func TestBarChartDrawsGoalRule(t *testing.T) {
	with := BarChart([]float64{10, 50, 120}, nil, 100, 40, 8)
	if !strings.Contains(with, "┈") {
		t.Fatalf("expected a goal rule, got\n%s", with)
	}
	without := BarChart([]float64{10, 50, 120}, nil, 0, 40, 8)
	if strings.Contains(without, "┈") {
		t.Fatalf("no goal should draw no rule, got\n%s", without)
	}
}

func TestFormatChartLabel(t *testing.T) {
	for v, want := range map[float64]string{0: "0", 108: "108", 1000: "1k", 1500: "1.5k", 2e6: "2M"} {
		if got := formatChartLabel(v); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", v, got, want)
		}
	}
}
