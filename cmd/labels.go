package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagLabelsPredefined bool

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Counts per label, plus the predefined label list",
	Args:  cobra.NoArgs,
	RunE:  runLabels,
}

func init() {
	labelsCmd.Flags().BoolVar(&flagLabelsPredefined, "predefined", false, "List the predefined labels only")
	rootCmd.AddCommand(labelsCmd)
}

func runLabels(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagLabelsPredefined {
		rows := make([][]string, 0, len(config.DefaultLabels))
		for _, l := range config.DefaultLabels {
			rows = append(rows, []string{l.Symbol, l.Name, l.OriginalName, l.Tradition})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "PREDEFINED LABELS",
			Headers: []string{"", "Name", "Original", "Tradition"},
			Rows:    rows,
		}))
		return nil
	}

	st, err := loadState(cfg)
	if err != nil {
		return err
	}
	days := windowDays(cfg)
	since, until := window(time.Now(), days)
	labels := pipeline.AggregateLabels(st.History, since, until)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LABELS  Last %dd", days)))
	fmt.Println()
	if len(labels) == 0 {
		fmt.Println("  No finished sessions in this range.")
		return nil
	}

	top := float64(labels[0].Count)
	for _, ls := range labels {
		name := config.DisplayLabel(ls.Label, cfg.Appearance.UseOriginalScript)
		fmt.Printf("%s  %s  %s\n",
			cli.RenderHorizontalBar(name, float64(ls.Count), top, 30),
			cli.FormatNumber(int64(ls.Count)),
			cli.Muted(fmt.Sprintf("%s · %d days", cli.FormatPercent(ls.SharePercent/100), ls.ActiveDays)))
	}
	return nil
}
