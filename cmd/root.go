// Package cmd implements the japa CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/daemon"
	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/pipeline"
	"github.com/theirongolddev/japa/internal/store"
	"github.com/theirongolddev/japa/internal/tracker"
	"github.com/theirongolddev/japa/internal/widget"

	"github.com/spf13/cobra"
)

var (
	flagDays    int
	flagDataDir string
	flagQuiet   bool
	flagLocal   bool
)

var rootCmd = &cobra.Command{
	Use:          "japa",
	Short:        "Chanting counter with streaks and history",
	Long:         "Count mantra repetitions in sessions, keep daily history and streaks, and mirror the totals to a widget or companion device.",
	RunE:         runSummary,
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Time window in days (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Data directory (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().BoolVar(&flagLocal, "local", false, "Write to the local database even if a daemon is running")
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagDataDir != "" {
		cfg.General.DataDir = flagDataDir
	}
	cli.UseTheme(cfg.Appearance.Theme)
	return cfg, nil
}

// windowDays returns the history window from --days or the config default.
func windowDays(cfg config.Config) int {
	if flagDays > 0 {
		return flagDays
	}
	if cfg.General.DefaultDays > 0 {
		return cfg.General.DefaultDays
	}
	return 30
}

// window returns [since, until) covering the last days calendar days, today included.
func window(now time.Time, days int) (time.Time, time.Time) {
	today := pipeline.StartOfDay(now)
	return today.AddDate(0, 0, -(days - 1)), today.AddDate(0, 0, 1)
}

// loadState reads the persisted state without taking the writer role.
func loadState(cfg config.Config) (model.State, error) {
	db, err := store.Open(config.DBPath(cfg))
	if err != nil {
		return model.State{}, err
	}
	defer func() { _ = db.Close() }()
	return db.Load()
}

// localRuntime owns the tracker when no daemon is running.
type localRuntime struct {
	cfg    config.Config
	db     *store.Store
	gw     *store.AsyncGateway
	tr     *tracker.Tracker
	widget io.Closer
}

func openLocal(cfg config.Config) (*localRuntime, error) {
	db, err := store.Open(config.DBPath(cfg))
	if err != nil {
		return nil, err
	}

	var opts []tracker.Option
	pub, closer, err := widget.Open(cfg)
	if err != nil {
		log.Printf("[widget] %v; widget mirror disabled", err)
		closer = nopCloser{}
	} else {
		opts = append(opts, tracker.WithPublisher(pub))
	}

	gw := store.NewAsyncGateway(db)
	tr, err := tracker.New(gw, opts...)
	if err != nil {
		gw.Close()
		_ = closer.Close()
		_ = db.Close()
		return nil, err
	}

	return &localRuntime{cfg: cfg, db: db, gw: gw, tr: tr, widget: closer}, nil
}

// Close drains pending writes before releasing the database.
func (r *localRuntime) Close() error {
	r.gw.Close()
	_ = r.widget.Close()
	return r.db.Close()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// pidFile returns --pid-file or the default inside the data dir.
func pidFile(cfg config.Config) string {
	if flagDaemonPIDFile != "" {
		return flagDaemonPIDFile
	}
	return filepath.Join(config.DataDir(cfg), "japad.pid")
}

// runningDaemon returns a client for a live daemon, or nil when none answers
// or --local is set.
func runningDaemon(ctx context.Context, cfg config.Config) *daemon.Client {
	if flagLocal {
		return nil
	}
	pf := pidFile(cfg)
	pid, err := readPID(pf)
	if err != nil || !processAlive(pid) {
		return nil
	}

	addr := cfg.Daemon.Addr
	if st, err := readState(statePath(pf)); err == nil && st.Addr != "" {
		addr = st.Addr
	}
	client, err := daemon.NewClient(addr, cfg.Daemon.TokenSecret)
	if err != nil {
		return nil
	}

	probe, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := client.Health(probe); err != nil {
		return nil
	}
	return client
}

// withWriter runs remote against a live daemon, or local against a tracker
// opened on the database. The daemon stays the single writer while it runs.
func withWriter(cfg config.Config, local func(*tracker.Tracker) error, remote func(context.Context, *daemon.Client) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if client := runningDaemon(ctx, cfg); client != nil {
		info("  (via daemon)\n")
		return remote(ctx, client)
	}

	rt, err := openLocal(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()
	return local(rt.tr)
}

func info(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
