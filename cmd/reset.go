package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/japa/internal/daemon"
	"github.com/theirongolddev/japa/internal/tracker"

	"github.com/spf13/cobra"
)

var flagResetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase history, streaks, counters and the active session",
	Long:  "Erase all practice data. Identity and preferences are kept. Requires --yes.",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&flagResetYes, "yes", false, "Confirm the reset")
	rootCmd.AddCommand(resetCmd)
}

func runReset(_ *cobra.Command, _ []string) error {
	if !flagResetYes {
		return errors.New("reset erases all practice data; rerun with --yes to confirm")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	err = withWriter(cfg,
		func(tr *tracker.Tracker) error {
			tr.Reset()
			return nil
		},
		func(ctx context.Context, c *daemon.Client) error {
			_, err := c.Reset(ctx)
			return err
		},
	)
	if err != nil {
		return err
	}

	fmt.Println("  All practice data erased.")
	return nil
}
