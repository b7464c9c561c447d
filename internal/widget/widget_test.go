package widget

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/model"
)

func TestFilePublisher_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared", "widget.json")
	p := NewFilePublisher(path)

	empty, err := p.Read()
	require.NoError(t, err)
	require.Equal(t, model.WidgetData{}, empty)

	at := time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC)
	want := model.WidgetData{TotalLifetimeCount: 1008, CurrentStreak: 7, TodayCount: 27, UpdatedAt: at}
	require.NoError(t, p.Publish(want))

	got, err := p.Read()
	require.NoError(t, err)
	require.Equal(t, want, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFilePublisher_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widget.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := NewFilePublisher(path).Read()
	require.Error(t, err)
}

func TestOpen_SelectsBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.General.DataDir = t.TempDir()

	b, c, err := Open(cfg)
	require.NoError(t, err)
	require.IsType(t, &FilePublisher{}, b)
	require.NoError(t, c.Close())

	cfg.Widget.Backend = "none"
	b, _, err = Open(cfg)
	require.NoError(t, err)
	require.NoError(t, b.Publish(model.WidgetData{TodayCount: 1}))

	cfg.Widget.Backend = "pigeon"
	_, _, err = Open(cfg)
	require.Error(t, err)
}

func TestQuote_StableWithinDay(t *testing.T) {
	morning := time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC)
	require.Equal(t, Quote(morning), Quote(morning.Add(15*time.Hour)))
	require.NotEqual(t, Quote(morning), Quote(morning.AddDate(0, 0, 1)))
}

func TestRedisPublisher_RoundTrip(t *testing.T) {
	url := os.Getenv("JAPA_TEST_REDIS_URL")
	if url == "" {
		t.Skip("JAPA_TEST_REDIS_URL not set")
	}

	key := "japa:test:widget:" + time.Now().Format("150405.000")
	p, err := NewRedisPublisher(url, key)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = p.client.Del(context.Background(), key).Err()
		_ = p.Close()
	})

	at := time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC)
	want := model.WidgetData{TotalLifetimeCount: 5, CurrentStreak: 2, TodayCount: 3, UpdatedAt: at}
	require.NoError(t, p.Publish(want))

	got, err := p.Read()
	require.NoError(t, err)
	require.Equal(t, want, got)
}
