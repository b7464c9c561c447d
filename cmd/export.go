package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theirongolddev/japa/internal/model"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export profile, history and the active session as JSON or YAML",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "json", "Output format: json or yaml")
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

type exportDoc struct {
	ExportedAt     time.Time          `json:"exportedAt"`
	Profile        model.Profile      `json:"userProfile"`
	DailyStats     []model.DailyStats `json:"dailyStats"`
	CurrentSession *model.Session     `json:"currentSession,omitempty"`
}

// encodeExport renders doc in format. YAML keys follow the JSON names, so the
// document goes through JSON first.
func encodeExport(doc exportDoc, format string) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	switch format {
	case "json":
		return append(data, '\n'), nil
	case "yaml", "yml":
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, err
		}
		return yaml.Marshal(generic)
	}
	return nil, fmt.Errorf("unknown format %q (use json or yaml)", format)
}

func runExport(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := loadState(cfg)
	if err != nil {
		return err
	}

	history := st.History
	if history == nil {
		history = []model.DailyStats{}
	}
	out, err := encodeExport(exportDoc{
		ExportedAt:     time.Now().UTC(),
		Profile:        st.Profile,
		DailyStats:     history,
		CurrentSession: st.Session,
	}, flagExportFormat)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if flagExportOut != "" {
		f, err := os.OpenFile(flagExportOut, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	if flagExportOut != "" {
		info("  Exported %d days to %s\n", len(history), flagExportOut)
	}
	return nil
}
