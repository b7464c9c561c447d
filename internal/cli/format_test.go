package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{108, "108"},
		{1008, "1,008"},
		{1234567, "1,234,567"},
		{-2500, "-2,500"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Fatalf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	if got := FormatCount(9999); got != "9,999" {
		t.Fatalf("FormatCount(9999) = %q", got)
	}
	if got := FormatCount(12_345); got != "12.3K" {
		t.Fatalf("FormatCount(12345) = %q", got)
	}
	if got := FormatCount(2_500_000); got != "2.5M" {
		t.Fatalf("FormatCount(2500000) = %q", got)
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(299); got != "$2.99" {
		t.Fatalf("FormatMoney(299) = %q", got)
	}
	if got := FormatMoney(123456); got != "$1,234.56" {
		t.Fatalf("FormatMoney(123456) = %q", got)
	}
	if got := FormatMoney(5); got != "$0.05" {
		t.Fatalf("FormatMoney(5) = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(62*time.Minute + 5*time.Second); got != "1h 2m" {
		t.Fatalf("got %q", got)
	}
	if got := FormatDuration(45 * time.Second); got != "45s" {
		t.Fatalf("got %q", got)
	}
	if got := FormatDuration(-time.Second); got != "0s" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatStreakAndTarget(t *testing.T) {
	if got := FormatStreak(1); got != "1 day" {
		t.Fatalf("got %q", got)
	}
	if got := FormatStreak(0); got != "0 days" {
		t.Fatalf("got %q", got)
	}
	if got := FormatTarget(nil); got != "-" {
		t.Fatalf("got %q", got)
	}
	n := 1008
	if got := FormatTarget(&n); got != "1,008" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderProgressBar(t *testing.T) {
	if got := RenderProgressBar(5, 0, 10); got != "" {
		t.Fatalf("zero total should render empty, got %q", got)
	}
}

func TestRenderTableAlignsNumbersRight(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Label", "Count"},
		Rows:    [][]string{{"Om", "108"}, {"---"}, {"Waheguru", "1,008"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines (3 rules, header, 2 rows, separator), got %d:\n%s", len(lines), out)
	}
	om := lines[3]
	if !strings.Contains(om, "Om       ") || !strings.Contains(om, "   108 ") {
		t.Fatalf("row not aligned: %q", om)
	}
	for i, l := range lines {
		if lipgloss.Width(l) != lipgloss.Width(lines[0]) {
			t.Fatalf("line %d width %d differs from border %d", i, lipgloss.Width(l), lipgloss.Width(lines[0]))
		}
	}
}

func TestRenderProgressBarCapsAtFull(t *testing.T) {
	out := RenderProgressBar(216, 108, 10)
	if !strings.Contains(out, "216/108") || !strings.Contains(out, "100%") {
		t.Fatalf("got %q", out)
	}
}
