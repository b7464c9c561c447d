package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the setup form.
type SetupValues struct {
	Label       string
	Target      string
	Days        int
	Theme       string
	Original    bool
	WidgetStore string
	RedisURL    string
}

// SetupValuesFrom seeds the form with the current configuration.
func SetupValuesFrom(cfg config.Config) SetupValues {
	v := SetupValues{
		Label:       cfg.General.DefaultLabel,
		Days:        cfg.General.DefaultDays,
		Theme:       cfg.Appearance.Theme,
		Original:    cfg.Appearance.UseOriginalScript,
		WidgetStore: cfg.Widget.Backend,
		RedisURL:    cfg.Widget.RedisURL,
	}
	if cfg.General.DefaultTarget != nil {
		v.Target = strconv.Itoa(*cfg.General.DefaultTarget)
	}
	if v.Label == "" {
		v.Label = "Om"
	}
	return v
}

// NewSetupForm builds the first-run form. The form writes into vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	labelOpts := make([]huh.Option[string], 0, len(config.DefaultLabels))
	for _, l := range config.DefaultLabels {
		if l.Name == "Custom" {
			continue
		}
		labelOpts = append(labelOpts, huh.NewOption(l.Symbol+" "+l.Name+"  ("+l.Tradition+")", l.Name))
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, th := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(th.Name, th.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to japa").
				Description("A few defaults for your practice. Run `japa setup` anytime to change them."),
			huh.NewSelect[string]().
				Title("Default label").
				Options(labelOpts...).
				Value(&vals.Label),
			huh.NewInput().
				Title("Default target").
				Description("Count per session, e.g. 108. Leave blank for open-ended sessions.").
				Placeholder("108").
				Validate(validateTarget).
				Value(&vals.Target),
			huh.NewConfirm().
				Title("Show labels in their original script?").
				Value(&vals.Original),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Default history range").
				Options(
					huh.NewOption("7 days", 7),
					huh.NewOption("30 days", 30),
					huh.NewOption("90 days", 90),
					huh.NewOption("1 year", 365),
				).
				Value(&vals.Days),
			huh.NewSelect[string]().
				Title("Widget mirror").
				Options(
					huh.NewOption("JSON file in the data dir", "file"),
					huh.NewOption("Redis hash", "redis"),
					huh.NewOption("Off", "none"),
				).
				Value(&vals.WidgetStore),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Redis URL").
				Placeholder("redis://localhost:6379/0").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("the redis mirror needs a URL")
					}
					return nil
				}).
				Value(&vals.RedisURL),
		).WithHideFunc(func() bool { return vals.WidgetStore != "redis" }),
	).WithTheme(huh.ThemeDracula())
}

func validateTarget(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return errors.New("enter a positive whole number")
	}
	return nil
}

// Apply copies the answers onto cfg.
func (v SetupValues) Apply(cfg config.Config) (config.Config, error) {
	if err := validateTarget(v.Target); err != nil {
		return cfg, fmt.Errorf("default target: %w", err)
	}
	cfg.General.DefaultLabel = config.CanonicalLabel(v.Label)
	cfg.General.DefaultTarget = nil
	if s := strings.TrimSpace(v.Target); s != "" {
		n, _ := strconv.Atoi(s)
		cfg.General.DefaultTarget = &n
	}
	if v.Days > 0 {
		cfg.General.DefaultDays = v.Days
	}
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
	cfg.Appearance.UseOriginalScript = v.Original
	if v.WidgetStore != "" {
		cfg.Widget.Backend = v.WidgetStore
	}
	if v.WidgetStore == "redis" {
		cfg.Widget.RedisURL = strings.TrimSpace(v.RedisURL)
	}
	return cfg, nil
}

func (a *App) saveSetupConfig() error {
	cfg, err := a.setupVals.Apply(a.cfg)
	if err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	a.days = cfg.General.DefaultDays
	theme.SetActive(cfg.Appearance.Theme)
	return nil
}
