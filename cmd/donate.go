package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/daemon"
	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/tracker"

	"github.com/spf13/cobra"
)

var donateCmd = &cobra.Command{
	Use:   "donate PRODUCT",
	Short: "Record a verified donation purchase",
	Long:  "Record a donation whose purchase the store already verified. PRODUCT is a product id or its short name (small, large, generous, patron).",
	Args:  cobra.ExactArgs(1),
	RunE:  runDonate,
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List donation products",
	Args:  cobra.NoArgs,
	RunE:  runProducts,
}

func init() {
	rootCmd.AddCommand(donateCmd)
	rootCmd.AddCommand(productsCmd)
}

func runDonate(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var (
		product config.Product
		profile model.Profile
	)
	err = withWriter(cfg,
		func(tr *tracker.Tracker) error {
			if product, err = tr.RecordDonation(args[0]); err != nil {
				return err
			}
			profile = tr.Snapshot().Profile
			return nil
		},
		func(ctx context.Context, c *daemon.Client) error {
			resp, err := c.Donate(ctx, args[0])
			product, profile = resp.Product, resp.Snapshot.Profile
			return err
		},
	)
	if errors.Is(err, tracker.ErrUnknownProduct) {
		return fmt.Errorf("unknown product %q (known: %s)", args[0], strings.Join(config.ProductIDs(), ", "))
	}
	if err != nil {
		return err
	}

	fmt.Printf("  Thank you for the %s (%s)\n", product.DisplayName, cli.FormatMoney(product.PriceCents))
	fmt.Printf("  Donations so far: %d · %s\n", profile.TotalDonations, cli.FormatMoney(profile.TotalDonationCents))
	return nil
}

func runProducts(_ *cobra.Command, _ []string) error {
	now := time.Now()
	rows := make([][]string, 0, len(config.DefaultProducts))
	for _, base := range config.DefaultProducts {
		p, ok := config.LookupProductAt(base.ID, now)
		if !ok {
			continue
		}
		short := p.ID[strings.LastIndex(p.ID, ".")+1:]
		rows = append(rows, []string{short, p.DisplayName, cli.FormatMoney(p.PriceCents), p.ID})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "DONATION PRODUCTS",
		Headers: []string{"Name", "Product", "Price", "ID"},
		Rows:    rows,
	}))
	return nil
}
