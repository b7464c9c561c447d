package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/daemon"
	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/tracker"

	"github.com/spf13/cobra"
)

var (
	flagStartTarget   int
	flagStartNoTarget bool
)

var startCmd = &cobra.Command{
	Use:   "start [label]",
	Short: "Start a chanting session",
	Long:  "Start a session for label (default from config). --target sets the goal count; without it the config default applies.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStart,
}

func init() {
	startCmd.Flags().IntVarP(&flagStartTarget, "target", "t", 0, "Goal count for the session, e.g. 108")
	startCmd.Flags().BoolVar(&flagStartNoTarget, "no-target", false, "Open-ended session even if a default target is configured")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	label := cfg.General.DefaultLabel
	if len(args) == 1 {
		label = args[0]
	}

	var target *int
	switch {
	case flagStartNoTarget:
	case cmd.Flags().Changed("target"):
		if flagStartTarget <= 0 {
			return errors.New("--target must be a positive number")
		}
		target = &flagStartTarget
	default:
		target = cfg.General.DefaultTarget
	}

	var s model.Session
	err = withWriter(cfg,
		func(tr *tracker.Tracker) error {
			s, err = tr.StartSession(label, target)
			return err
		},
		func(ctx context.Context, c *daemon.Client) error {
			resp, err := c.StartSession(ctx, label, target)
			s = resp.Session
			return err
		},
	)
	if err != nil {
		if errors.Is(err, tracker.ErrSessionActive) || daemon.IsConflict(err) {
			return errors.New("a session is already running; end it with `japa end`")
		}
		return err
	}

	fmt.Printf("  Started %s", cli.Count(config.DisplayLabel(s.Label, cfg.Appearance.UseOriginalScript)))
	if s.TargetCount != nil {
		fmt.Printf("  target %s", cli.FormatNumber(int64(*s.TargetCount)))
	}
	fmt.Println()
	return nil
}

// printSession prints the one-line session state shared by tap and sync.
func printSession(cfg config.Config, s model.Session) {
	label := config.DisplayLabel(s.Label, cfg.Appearance.UseOriginalScript)
	if s.TargetCount != nil {
		fmt.Printf("  %s  %s\n", label, cli.RenderProgressBar(s.CurrentCount, *s.TargetCount, 30))
	} else {
		fmt.Printf("  %s  %s\n", label, cli.Count(cli.FormatNumber(int64(s.CurrentCount))))
	}
	if s.IsCompleted {
		fmt.Println("  " + cli.Good("Target reached"))
	}
}
