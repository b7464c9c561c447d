package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/widget"

	"github.com/spf13/cobra"
)

var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Show what the home-screen widget currently reads",
	Args:  cobra.NoArgs,
	RunE:  runWidget,
}

func init() {
	rootCmd.AddCommand(widgetCmd)
}

func runWidget(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	backend, closer, err := widget.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	d, err := backend.Read()
	if err != nil {
		return err
	}

	updated := "never"
	if !d.UpdatedAt.IsZero() {
		updated = d.UpdatedAt.Local().Format("2006-01-02 15:04:05")
	}

	fmt.Println()
	fmt.Print(cli.RenderStats("Widget ("+widgetTarget(cfg)+")", [][2]string{
		{"Lifetime", cli.Count(cli.FormatCount(int64(d.TotalLifetimeCount)))},
		{"Streak", cli.Streak(cli.FormatStreak(d.CurrentStreak))},
		{"Today", cli.FormatNumber(int64(d.TodayCount))},
		{"Updated", updated},
	}))
	fmt.Println()
	fmt.Println("  " + cli.Muted(widget.Quote(time.Now())))
	return nil
}
