package cmd

import (
	"fmt"

	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/tui"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// A broken config file should not block reconfiguring.
	cfg, err := config.Load()
	if err != nil {
		info("  %v; starting from defaults\n", err)
		cfg = config.DefaultConfig()
	}

	fmt.Println()
	fmt.Println("  Welcome to japa!")
	fmt.Println()

	vals := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	cfg, err = vals.Apply(cfg)
	if err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `japa setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
