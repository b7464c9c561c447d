package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/daemon"
	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/tracker"

	"github.com/spf13/cobra"
)

var endCmd = &cobra.Command{
	Use:   "end",
	Short: "End the active session and fold it into today's history",
	Args:  cobra.NoArgs,
	RunE:  runEnd,
}

func init() {
	rootCmd.AddCommand(endCmd)
}

func runEnd(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var (
		s       model.Session
		profile model.Profile
	)
	err = withWriter(cfg,
		func(tr *tracker.Tracker) error {
			if s, err = tr.EndSession(); err != nil {
				return err
			}
			profile = tr.Snapshot().Profile
			return nil
		},
		func(ctx context.Context, c *daemon.Client) error {
			resp, err := c.EndSession(ctx)
			s, profile = resp.Session, resp.Snapshot.Profile
			return err
		},
	)
	if err != nil {
		if errors.Is(err, tracker.ErrNoActiveSession) || daemon.IsConflict(err) {
			return errNoSession
		}
		return err
	}

	fmt.Print(cli.RenderStats("Session ended", [][2]string{
		{"Label", config.DisplayLabel(s.Label, cfg.Appearance.UseOriginalScript)},
		{"Count", cli.Count(cli.FormatNumber(int64(s.CurrentCount)))},
		{"Target", cli.FormatTarget(s.TargetCount)},
		{"Duration", cli.FormatDuration(s.Duration(time.Now()))},
		{"Streak", cli.Streak(cli.FormatStreak(profile.CurrentStreak))},
		{"Lifetime", cli.FormatNumber(int64(profile.TotalLifetimeCount))},
	}))
	return nil
}
