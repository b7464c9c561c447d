package cmd

import (
	"context"
	"errors"

	"github.com/theirongolddev/japa/internal/daemon"
	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/tracker"

	"github.com/spf13/cobra"
)

var flagTapN int

var tapCmd = &cobra.Command{
	Use:   "tap",
	Short: "Count one repetition (or --n of them) in the active session",
	Args:  cobra.NoArgs,
	RunE:  runTap,
}

func init() {
	tapCmd.Flags().IntVar(&flagTapN, "n", 1, "Number of repetitions to add")
	rootCmd.AddCommand(tapCmd)
}

var errNoSession = errors.New("no active session; start one with `japa start`")

func runTap(_ *cobra.Command, _ []string) error {
	if flagTapN < 1 {
		return errors.New("--n must be at least 1")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var s model.Session
	err = withWriter(cfg,
		func(tr *tracker.Tracker) error {
			var ok bool
			if s, ok = tr.Increment(flagTapN); !ok {
				return errNoSession
			}
			return nil
		},
		func(ctx context.Context, c *daemon.Client) error {
			resp, err := c.Tap(ctx, flagTapN)
			if daemon.IsConflict(err) {
				return errNoSession
			}
			s = resp.Session
			return err
		},
	)
	if err != nil {
		return err
	}

	printSession(cfg, s)
	return nil
}
