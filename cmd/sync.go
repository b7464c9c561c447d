package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/japa/internal/daemon"
	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/tracker"

	"github.com/spf13/cobra"
)

var flagSyncCount int

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Apply a count reported by a companion device",
	Long:  "Apply a count from another device to the active session. Counts that are not ahead of the local count are ignored.",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().IntVar(&flagSyncCount, "count", -1, "Session count reported by the other device")
	_ = syncCmd.MarkFlagRequired("count")
	rootCmd.AddCommand(syncCmd)
}

func runSync(_ *cobra.Command, _ []string) error {
	if flagSyncCount < 0 {
		return errors.New("--count must not be negative")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var (
		applied bool
		session *model.Session
	)
	err = withWriter(cfg,
		func(tr *tracker.Tracker) error {
			applied = tr.ApplyRemoteCount(flagSyncCount)
			if s, ok := tr.ActiveSession(); ok {
				session = &s
			}
			return nil
		},
		func(ctx context.Context, c *daemon.Client) error {
			resp, err := c.RemoteCount(ctx, flagSyncCount)
			applied, session = resp.Applied, resp.Snapshot.Session
			return err
		},
	)
	if err != nil {
		return err
	}

	switch {
	case session == nil:
		return errNoSession
	case applied:
		fmt.Println("  Applied remote count")
	default:
		fmt.Println("  Ignored: local count is already ahead")
	}
	printSession(cfg, *session)
	return nil
}
