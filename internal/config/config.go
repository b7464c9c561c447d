// Package config loads japa settings and the static label/product catalogs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all japa configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Widget     WidgetConfig     `toml:"widget"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir       string `toml:"data_dir,omitempty"`
	DefaultLabel  string `toml:"default_label" validate:"max=64"`
	DefaultTarget *int   `toml:"default_target,omitempty" validate:"omitempty,gt=0"`
	DefaultDays   int    `toml:"default_days" validate:"gte=1,lte=3650"`
}

// WidgetConfig controls where the shared widget numbers are mirrored.
type WidgetConfig struct {
	Backend         string `toml:"backend" validate:"oneof=file redis none"`
	Path            string `toml:"path,omitempty"`
	RedisURL        string `toml:"redis_url,omitempty" validate:"required_if=Backend redis"`
	RedisKey        string `toml:"redis_key,omitempty"`
	RefreshSchedule string `toml:"refresh_schedule"`
}

// DaemonConfig holds companion API settings.
type DaemonConfig struct {
	Addr         string `toml:"addr" validate:"required,hostname_port"`
	TokenSecret  string `toml:"token_secret,omitempty"`
	EventsBuffer int    `toml:"events_buffer" validate:"gte=1"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme             string `toml:"theme"`
	UseOriginalScript bool   `toml:"use_original_script"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultLabel: "Om",
			DefaultDays:  30,
		},
		Widget: WidgetConfig{
			Backend:         "file",
			RedisKey:        "japa:widget",
			RefreshSchedule: "0 0 0 * * *",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8788",
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "japa")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "japa")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// A .env file next to it is loaded first; JAPA_* variables override file values.
func Load() (Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(filepath.Join(Dir(), ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("reading .env: %w", err)
	}

	data, err := os.ReadFile(Path())
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("JAPA_DATA_DIR"); v != "" {
		cfg.General.DataDir = v
	}
	if v := os.Getenv("JAPA_WIDGET_BACKEND"); v != "" {
		cfg.Widget.Backend = v
	}
	if v := os.Getenv("JAPA_REDIS_URL"); v != "" {
		cfg.Widget.RedisURL = v
	}
	if v := os.Getenv("JAPA_DAEMON_SECRET"); v != "" {
		cfg.Daemon.TokenSecret = v
	}
	if v := os.Getenv("JAPA_DAEMON_ADDR"); v != "" {
		cfg.Daemon.Addr = v
	}
	if v := os.Getenv("JAPA_DEFAULT_TARGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.General.DefaultTarget = &n
		}
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// DataDir returns the directory holding the database and widget file.
func DataDir(cfg Config) string {
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "japa")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "japa")
}

// DBPath returns the SQLite database path.
func DBPath(cfg Config) string {
	return filepath.Join(DataDir(cfg), "japa.db")
}

// WidgetPath returns the shared widget file path.
func WidgetPath(cfg Config) string {
	if cfg.Widget.Path != "" {
		return cfg.Widget.Path
	}
	return filepath.Join(DataDir(cfg), "shared", "widget.json")
}
