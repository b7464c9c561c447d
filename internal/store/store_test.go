package store

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/japa/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "japa.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoad_EmptyDatabaseGivesDefaults(t *testing.T) {
	s := openTemp(t)

	st, err := s.Load()
	require.NoError(t, err)
	require.True(t, st.Profile.IsGuest)
	require.Equal(t, 15, st.Profile.FavoriteSessionMinutes)
	require.Empty(t, st.History)
	require.Nil(t, st.Session)
}

func TestSaveThenLoad(t *testing.T) {
	s := openTemp(t)
	now := time.Date(2026, 2, 1, 7, 0, 0, 0, time.UTC)
	target := 108
	goal := 216

	st := model.State{Profile: model.NewProfile(now)}
	st.Profile.TotalLifetimeCount = 1234
	st.Profile.DailyGoal = &goal
	st.History = []model.DailyStats{{
		Date:              now.Truncate(24 * time.Hour),
		TotalCount:        50,
		SessionsCompleted: 2,
		TimeSpent:         9 * time.Minute,
		LabelBreakdown:    map[string]int{"Om": 40, "Ram": 10},
	}}
	sess := model.NewSession("Om", &target, now)
	sess.CurrentCount = 12
	st.Session = &sess

	require.NoError(t, s.Save(st))

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, 1234, got.Profile.TotalLifetimeCount)
	require.Equal(t, 216, *got.Profile.DailyGoal)
	require.Len(t, got.History, 1)
	require.Equal(t, map[string]int{"Om": 40, "Ram": 10}, got.History[0].LabelBreakdown)
	require.Equal(t, 9*time.Minute, got.History[0].TimeSpent)
	require.NotNil(t, got.Session)
	require.Equal(t, sess.ID, got.Session.ID)
	require.Equal(t, 12, got.Session.CurrentCount)
	require.Equal(t, 108, *got.Session.TargetCount)

	ts, err := s.UpdatedAt(KeyProfile)
	require.NoError(t, err)
	require.False(t, ts.IsZero())
}

func TestSave_NilSessionRemovesRecord(t *testing.T) {
	s := openTemp(t)
	sess := model.NewSession("Om", nil, time.Now())
	require.NoError(t, s.Save(model.State{Profile: model.NewProfile(time.Now()), Session: &sess}))
	require.NoError(t, s.Save(model.State{Profile: model.NewProfile(time.Now())}))

	_, err := s.raw(KeySession)
	require.ErrorIs(t, err, ErrNotFound)

	got, err := s.Load()
	require.NoError(t, err)
	require.Nil(t, got.Session)
}

func TestLoad_CorruptRecordFallsBackPerKey(t *testing.T) {
	s := openTemp(t)
	st := model.State{Profile: model.NewProfile(time.Now())}
	st.Profile.TotalLifetimeCount = 77
	require.NoError(t, s.Save(st))
	require.NoError(t, s.putRaw(KeyHistory, []byte("{not json")))
	require.NoError(t, s.putRaw(KeySession, []byte(`"nope"`)))

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, 77, got.Profile.TotalLifetimeCount, "good records survive")
	require.Empty(t, got.History)
	require.Nil(t, got.Session)
}

type recordingBackend struct {
	mu    sync.Mutex
	saves []model.State
	fail  bool
	gate  chan struct{}
}

func (b *recordingBackend) Load() (model.State, error) { return model.State{}, nil }

func (b *recordingBackend) Save(st model.State) error {
	if b.gate != nil {
		<-b.gate
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saves = append(b.saves, st)
	if b.fail {
		return errors.New("disk full")
	}
	return nil
}

func (b *recordingBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.saves)
}

func (b *recordingBackend) last() model.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves[len(b.saves)-1]
}

func stateWithLifetime(n int) model.State {
	return model.State{Profile: model.Profile{TotalLifetimeCount: n}}
}

func TestAsyncGateway_LatestWins(t *testing.T) {
	b := &recordingBackend{gate: make(chan struct{})}
	g := NewAsyncGateway(b)

	require.NoError(t, g.Save(stateWithLifetime(1)))
	// Let the writer pick up the first state and block on the gate, then
	// queue several more; only the last should be written after it.
	require.Eventually(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		return g.busy
	}, time.Second, time.Millisecond)
	for i := 2; i <= 5; i++ {
		require.NoError(t, g.Save(stateWithLifetime(i)))
	}
	close(b.gate)

	g.Flush()
	require.Equal(t, 2, b.count())
	require.Equal(t, 5, b.last().Profile.TotalLifetimeCount)
	g.Close()
}

func TestAsyncGateway_FailuresAreDropped(t *testing.T) {
	b := &recordingBackend{fail: true}
	g := NewAsyncGateway(b)

	require.NoError(t, g.Save(stateWithLifetime(1)))
	g.Flush()
	require.NoError(t, g.Save(stateWithLifetime(2)))
	g.Close()

	require.Equal(t, 2, b.count())
	require.NoError(t, g.Save(stateWithLifetime(3)), "saves after close are ignored")
	require.Equal(t, 2, b.count())
}

func TestAsyncGateway_CloseDrains(t *testing.T) {
	s := openTemp(t)
	g := NewAsyncGateway(s)

	st := stateWithLifetime(42)
	st.Profile.FavoriteSessionMinutes = 20
	require.NoError(t, g.Save(st))
	g.Close()

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, 42, got.Profile.TotalLifetimeCount)
}
