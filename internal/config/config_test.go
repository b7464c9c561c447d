package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"JAPA_DATA_DIR", "JAPA_WIDGET_BACKEND", "JAPA_REDIS_URL",
		"JAPA_DAEMON_SECRET", "JAPA_DAEMON_ADDR", "JAPA_DEFAULT_TARGET",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	require.False(t, Exists())
}

func TestSaveThenLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	target := 108
	cfg.General.DefaultTarget = &target
	cfg.General.DefaultLabel = "Ram"
	cfg.Appearance.Theme = "tokyo-night"
	require.NoError(t, Save(cfg))
	require.True(t, Exists())

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Ram", got.General.DefaultLabel)
	require.NotNil(t, got.General.DefaultTarget)
	require.Equal(t, 108, *got.General.DefaultTarget)
	require.Equal(t, "tokyo-night", got.Appearance.Theme)
}

func TestLoad_EnvOverridesAndDotenv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	// godotenv never overrides a variable that is already set, even to "",
	// so clearEnv unsets rather than blanks.
	t.Setenv("JAPA_DATA_DIR", "/tmp/japa-test-data")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "japa"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "japa", ".env"), []byte("JAPA_DAEMON_SECRET=from-dotenv\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-dotenv", cfg.Daemon.TokenSecret)
	require.Equal(t, "/tmp/japa-test-data", cfg.General.DataDir)
	require.Equal(t, "/tmp/japa-test-data", DataDir(cfg))
	require.Equal(t, filepath.Join("/tmp/japa-test-data", "japa.db"), DBPath(cfg))
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Widget.Backend = "carrier-pigeon"
	require.Error(t, Validate(cfg))

	cfg = DefaultConfig()
	cfg.Widget.Backend = "redis"
	require.Error(t, Validate(cfg), "redis backend needs a URL")

	cfg.Widget.RedisURL = "redis://localhost:6379/0"
	require.NoError(t, Validate(cfg))

	zero := 0
	cfg = DefaultConfig()
	cfg.General.DefaultTarget = &zero
	require.Error(t, Validate(cfg))
}
