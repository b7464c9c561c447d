package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/tui"
	"github.com/theirongolddev/japa/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive counter",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	var backend tui.Backend
	if client := runningDaemon(context.Background(), cfg); client != nil {
		backend = tui.RemoteBackend{
			Client: client,
			History: func() ([]model.DailyStats, error) {
				st, err := loadState(cfg)
				return st.History, err
			},
		}
	} else {
		rt, err := openLocal(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()
		backend = tui.LocalBackend{Tracker: rt.tr}
	}

	app := tui.NewApp(backend, cfg, !config.Exists())
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
