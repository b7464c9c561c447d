package cmd

import (
	"fmt"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data directory: %s\n", config.DataDir(cfg))
	fmt.Printf("    Default label:  %s\n", cfg.General.DefaultLabel)
	fmt.Printf("    Default target: %s\n", cli.FormatTarget(cfg.General.DefaultTarget))
	fmt.Printf("    Default days:   %d\n", cfg.General.DefaultDays)
	fmt.Println()

	fmt.Println("  [Widget]")
	fmt.Printf("    Backend:  %s\n", cfg.Widget.Backend)
	fmt.Printf("    Target:   %s\n", widgetTarget(cfg))
	fmt.Printf("    Rollover: %s\n", cfg.Widget.RefreshSchedule)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	if cfg.Daemon.TokenSecret != "" {
		fmt.Printf("    Token secret:  %s\n", maskSecret(cfg.Daemon.TokenSecret))
	} else {
		fmt.Println("    Token secret:  not configured (auth disabled)")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme:           %s\n", cfg.Appearance.Theme)
	fmt.Printf("    Original script: %v\n", cfg.Appearance.UseOriginalScript)
	fmt.Println()

	fmt.Println("  Run `japa setup` to reconfigure.")
	return nil
}

func maskSecret(key string) string {
	if len(key) > 16 {
		return key[:4] + "..." + key[len(key)-4:]
	}
	return "****"
}
