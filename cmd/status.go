package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/pipeline"
	"github.com/theirongolddev/japa/internal/store"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active session and where the data lives",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		session *model.Session
		profile model.Profile
		today   int
		source  string
	)
	if client := runningDaemon(ctx, cfg); client != nil {
		st, err := client.Status(ctx)
		if err != nil {
			return err
		}
		session, profile, today = st.Summary.Session, st.Summary.Profile, st.Summary.TodayCount
		source = fmt.Sprintf("daemon (up since %s, %d subscribers)",
			st.StartedAt.Local().Format("15:04"), st.SubscriberCount)
	} else {
		db, err := store.Open(config.DBPath(cfg))
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		state, err := db.Load()
		if err != nil {
			return err
		}
		session, profile = state.Session, state.Profile
		today = pipeline.TodayCount(state.History, time.Now())
		source = "local database"
		if at, err := db.UpdatedAt(store.KeyProfile); err == nil {
			source += ", saved " + at.Local().Format("2006-01-02 15:04")
		}
	}

	fmt.Println()
	if session == nil {
		fmt.Println("  No active session.")
	} else {
		printSession(cfg, *session)
		fmt.Printf("  Started %s (%s ago)\n",
			session.StartTime.Local().Format("15:04"),
			cli.FormatDuration(time.Since(session.StartTime)))
	}
	fmt.Println()

	fmt.Print(cli.RenderStats("", [][2]string{
		{"Today", cli.FormatNumber(int64(today))},
		{"Streak", cli.FormatStreak(profile.CurrentStreak)},
		{"Lifetime", cli.FormatNumber(int64(profile.TotalLifetimeCount))},
		{"Source", source},
		{"Database", config.DBPath(cfg)},
		{"Widget", widgetTarget(cfg)},
	}))
	return nil
}

func widgetTarget(cfg config.Config) string {
	switch cfg.Widget.Backend {
	case "redis":
		return "redis " + cfg.Widget.RedisKey
	case "none":
		return "off"
	}
	return config.WidgetPath(cfg)
}
