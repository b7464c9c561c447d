package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagDailyWeeks bool

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily count table",
	RunE:  runDaily,
}

func init() {
	dailyCmd.Flags().BoolVar(&flagDailyWeeks, "weeks", false, "Group by Monday-start week instead of day")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(_ *cobra.Command, _ []string) error {
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
	goal := st.Profile.DailyGoal

	if flagDailyWeeks {
		weeks := pipeline.AggregateWeeks(pipeline.FilterByTime(st.History, since, until))
		if len(weeks) == 0 {
			fmt.Println("\n  No data for the selected period.")
			return nil
		}
		rows := make([][]string, 0, len(weeks))
		for _, w := range weeks {
			rows = append(rows, []string{
				w.WeekStart.Format("2006-01-02"),
				cli.FormatNumber(int64(w.Count)),
				cli.FormatNumber(int64(w.Sessions)),
				cli.FormatDuration(w.TimeSpent),
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   fmt.Sprintf("WEEKLY COUNT  Last %dd", days),
			Headers: []string{"Week of", "Count", "Sessions", "Time"},
			Rows:    rows,
		}))
		return nil
	}

	series := pipeline.AggregateDays(st.History, since, now)
	rows := make([][]string, 0, len(series))
	for _, d := range series {
		met := ""
		if d.GoalMet(goal) {
			met = "✓"
		}
		rows = append(rows, []string{
			d.Date.Format("2006-01-02"),
			cli.FormatDayOfWeek(int(d.Date.Weekday())),
			cli.FormatNumber(int64(d.TotalCount)),
			cli.FormatNumber(int64(d.SessionsCompleted)),
			cli.FormatDuration(d.TimeSpent),
			met,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("DAILY COUNT  Last %dd", days),
		Headers: []string{"Date", "Day", "Count", "Sessions", "Time", "Goal"},
		Rows:    rows,
	}))
	return nil
}
