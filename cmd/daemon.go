package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/daemon"

	"github.com/spf13/cobra"
)

type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DataDir   string    `json:"data_dir"`
}

var (
	flagDaemonAddr         string
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool

	flagPairDevice string
	flagPairTTL    time.Duration
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the companion daemon with HTTP/SSE endpoints",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

var daemonPairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Issue a bearer token for a companion device",
	RunE:  runDaemonPair,
}

func init() {
	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", "", "PID file path (default <data-dir>/japad.pid)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", "", "Log file path for detached mode (default <data-dir>/japad.log)")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonPairCmd.Flags().StringVar(&flagPairDevice, "device", "", "Device name embedded in the token")
	daemonPairCmd.Flags().DurationVar(&flagPairTTL, "ttl", 90*24*time.Hour, "Token lifetime")
	_ = daemonPairCmd.MarkFlagRequired("device")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonPairCmd)
	rootCmd.AddCommand(daemonCmd)
}

func daemonAddr(cfg config.Config) string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	return cfg.Daemon.Addr
}

func logFile(cfg config.Config) string {
	if flagDaemonLogFile != "" {
		return flagDaemonLogFile
	}
	return filepath.Join(config.DataDir(cfg), "japad.log")
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagDaemonDetach {
		return startDaemonDetached(cfg)
	}
	return runDaemonForeground(cfg)
}

func startDaemonDetached(cfg config.Config) error {
	pf := pidFile(cfg)
	if err := ensureDaemonNotRunning(pf); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	lf := logFile(cfg)
	if err := os.MkdirAll(filepath.Dir(pf), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lf), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(lf, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", pf)
	fmt.Printf("  API: http://%s/v1/status\n", daemonAddr(cfg))
	fmt.Printf("  Log: %s\n", lf)
	return nil
}

func runDaemonForeground(cfg config.Config) error {
	pf := pidFile(cfg)
	if err := ensureDaemonNotRunning(pf); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(pf), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}

	// Open the store before claiming the pid file so CLI commands never see a
	// live pid whose daemon cannot serve.
	rt, err := openLocal(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	pid := os.Getpid()
	if err := writePID(pf, pid); err != nil {
		return err
	}
	defer func() { _ = os.Remove(pf) }()

	addr := daemonAddr(cfg)
	state := daemonRuntimeState{
		PID:       pid,
		Addr:      addr,
		StartedAt: time.Now(),
		DataDir:   config.DataDir(cfg),
	}
	_ = writeState(statePath(pf), state)
	defer func() { _ = os.Remove(statePath(pf)) }()

	buffer := cfg.Daemon.EventsBuffer
	if flagDaemonEventsBuffer > 0 {
		buffer = flagDaemonEventsBuffer
	}
	svc := daemon.New(daemon.Config{
		Addr:            addr,
		DataDir:         config.DataDir(cfg),
		EventsBuffer:    buffer,
		TokenSecret:     cfg.Daemon.TokenSecret,
		RefreshSchedule: cfg.Widget.RefreshSchedule,
	}, rt.tr)

	fmt.Printf("  japa daemon listening on http://%s\n", addr)
	fmt.Printf("  Data: %s\n", config.DBPath(cfg))
	if cfg.Daemon.TokenSecret == "" {
		fmt.Println("  Auth: disabled (set JAPA_DAEMON_SECRET to require tokens)")
	}
	fmt.Printf("  Stop with: japa daemon stop\n")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pf := pidFile(cfg)

	pid, err := readPID(pf)
	if err != nil {
		fmt.Printf("  Daemon: not running (pid file not found)\n")
		return nil
	}

	if !processAlive(pid) {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := daemonAddr(cfg)
	if st, err := readState(statePath(pf)); err == nil && st.Addr != "" {
		addr = st.Addr
	}

	fmt.Printf("  Daemon PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	client, err := daemon.NewClient(addr, cfg.Daemon.TokenSecret)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	st, err := client.Status(ctx)
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}

	fmt.Printf("  Started: %s\n", st.StartedAt.Local().Format(time.RFC3339))
	if st.LastRolloverAt.IsZero() {
		fmt.Printf("  Last rollover: pending\n")
	} else {
		fmt.Printf("  Last rollover: %s\n", st.LastRolloverAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Events: %d\n", st.EventCount)
	fmt.Printf("  Subscribers: %d\n", st.SubscriberCount)
	fmt.Printf("  Auth required: %v\n", st.AuthRequired)
	if st.Summary.SessionActive && st.Summary.Session != nil {
		fmt.Printf("  Session: %s, %d\n", st.Summary.Session.Label, st.Summary.Session.CurrentCount)
	}
	fmt.Printf("  Today: %d\n", st.Summary.TodayCount)
	fmt.Printf("  Lifetime: %d\n", st.Summary.LifetimeCount)
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pf := pidFile(cfg)

	pid, err := readPID(pf)
	if err != nil {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(pf)
			_ = os.Remove(statePath(pf))
			fmt.Printf("  Stopped daemon (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}

func runDaemonPair(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Daemon.TokenSecret == "" {
		return errors.New("no token secret configured; set JAPA_DAEMON_SECRET or [daemon] token_secret")
	}

	token, err := daemon.IssueToken(cfg.Daemon.TokenSecret, flagPairDevice, flagPairTTL)
	if err != nil {
		return err
	}

	info("  Token for %s (expires %s):\n", flagPairDevice, time.Now().Add(flagPairTTL).Format("2006-01-02"))
	fmt.Println(token)
	return nil
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func ensureDaemonNotRunning(pidFile string) error {
	pid, err := readPID(pidFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	_ = os.Remove(pidFile)
	_ = os.Remove(statePath(pidFile))
	return nil
}

func writePID(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func readPID(path string) (int, error) {
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", path)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func statePath(pidFile string) string {
	return pidFile + ".json"
}

func writeState(path string, st daemonRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readState(path string) (daemonRuntimeState, error) {
	var st daemonRuntimeState
	//nolint:gosec // daemon state path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, err
	}
	return st, nil
}
