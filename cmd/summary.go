package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Practice summary: today, streaks and the last N days",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := loadState(cfg)
	if err != nil {
		return err
	}

	now := time.Now()
	days := windowDays(cfg)
	since, until := window(now, days)
	p := st.Profile
	stats := pipeline.Aggregate(st.History, since, until, p.DailyGoal)

	// Streaks are stored as of the last finished session; recompute so a
	// missed day shows up before the next session ends.
	current, longest := pipeline.RecomputeStreaks(st.History, now, p.LongestStreak)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("JAPA  Last %dd", days)))
	fmt.Println()

	if len(st.History) == 0 && st.Session == nil {
		fmt.Println("  No sessions yet. Start one with `japa start`.")
		fmt.Println()
		return nil
	}

	today := pipeline.TodayCount(st.History, now)
	todayRows := [][2]string{
		{"Today", cli.Count(cli.FormatNumber(int64(today)))},
		{"Current streak", cli.Streak(cli.FormatStreak(current))},
		{"Longest streak", cli.FormatStreak(longest)},
		{"Lifetime", cli.FormatNumber(int64(p.TotalLifetimeCount))},
	}
	if p.DailyGoal != nil {
		goal := fmt.Sprintf("%s of %s", cli.FormatNumber(int64(today)), cli.FormatNumber(int64(*p.DailyGoal)))
		if today >= *p.DailyGoal {
			goal = cli.Good(goal + "  met")
		}
		todayRows = append(todayRows, [2]string{"Daily goal", goal})
	}
	if s := st.Session; s != nil {
		todayRows = append(todayRows, [2]string{"Active session", fmt.Sprintf("%s  %d / %s",
			config.DisplayLabel(s.Label, cfg.Appearance.UseOriginalScript), s.CurrentCount, cli.FormatTarget(s.TargetCount))})
	}
	fmt.Print(cli.RenderStats("Now", todayRows))
	fmt.Println()

	rangeRows := [][2]string{
		{"Count", cli.FormatNumber(int64(stats.TotalCount))},
		{"Sessions", cli.FormatNumber(int64(stats.TotalSessions))},
		{"Time", cli.FormatDuration(stats.TimeSpent)},
		{"Active days", fmt.Sprintf("%d of %d", stats.ActiveDays, days)},
		{"Count/day", fmt.Sprintf("%.0f", stats.CountPerDay)},
		{"Minutes/day", fmt.Sprintf("%.1f", stats.MinutesPerDay)},
	}
	if p.DailyGoal != nil {
		rangeRows = append(rangeRows, [2]string{"Goal days", fmt.Sprintf("%d", stats.GoalDays)})
	}
	fmt.Print(cli.RenderStats(fmt.Sprintf("Last %d days", days), rangeRows))

	series := pipeline.AggregateDays(st.History, since, now)
	vals := make([]float64, len(series))
	for i, d := range series {
		vals[len(series)-1-i] = float64(d.TotalCount)
	}
	fmt.Println()
	fmt.Printf("    %s\n\n", cli.RenderSparkline(vals))
	return nil
}
