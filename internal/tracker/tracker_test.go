package tracker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/model"
)

type memGateway struct {
	mu      sync.Mutex
	initial model.State
	saved   []model.State
	failing bool
}

func (g *memGateway) Load() (model.State, error) { return g.initial, nil }

func (g *memGateway) Save(st model.State) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saved = append(g.saved, st)
	if g.failing {
		return errors.New("disk full")
	}
	return nil
}

func (g *memGateway) last() model.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saved[len(g.saved)-1]
}

type memPublisher struct {
	published []model.WidgetData
	failing   bool
}

func (p *memPublisher) Publish(d model.WidgetData) error {
	p.published = append(p.published, d)
	if p.failing {
		return errors.New("widget region unavailable")
	}
	return nil
}

type countMsg struct{ count, lifetime int }

type memChannel struct {
	counts   []countMsg
	sessions []model.Session
	failing  bool
}

func (c *memChannel) SendCountUpdate(count, lifetime int) error {
	c.counts = append(c.counts, countMsg{count, lifetime})
	if c.failing {
		return errors.New("not reachable")
	}
	return nil
}

func (c *memChannel) SendSessionUpdate(s model.Session) error {
	c.sessions = append(c.sessions, s)
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTracker(t *testing.T, initial model.State) (*Tracker, *memGateway, *memPublisher, *memChannel, *clock) {
	t.Helper()
	gw := &memGateway{initial: initial}
	pub := &memPublisher{}
	ch := &memChannel{}
	clk := &clock{t: time.Date(2026, 4, 10, 7, 0, 0, 0, time.Local)}
	tr, err := New(gw, WithPublisher(pub), WithChannel(ch), WithClock(clk.now))
	require.NoError(t, err)
	return tr, gw, pub, ch, clk
}

func freshState() model.State {
	return model.State{Profile: model.NewProfile(time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local))}
}

func TestSessionLifecycle(t *testing.T) {
	tr, gw, pub, ch, clk := newTracker(t, freshState())
	target := 3

	s, err := tr.StartSession("om", &target)
	require.NoError(t, err)
	require.Equal(t, "Om", s.Label)
	require.Len(t, ch.sessions, 1)

	_, err = tr.StartSession("Ram", nil)
	require.ErrorIs(t, err, ErrSessionActive)

	clk.t = clk.t.Add(5 * time.Minute)
	s, ok := tr.Increment(3)
	require.True(t, ok)
	require.Equal(t, 3, s.CurrentCount)
	require.True(t, s.IsCompleted)
	require.Equal(t, countMsg{3, 3}, ch.counts[len(ch.counts)-1])

	clk.t = clk.t.Add(time.Minute)
	s, _ = tr.Increment(1)
	require.Equal(t, 4, s.CurrentCount)

	clk.t = clk.t.Add(10 * time.Minute)
	finished, err := tr.EndSession()
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, finished.Duration(clk.t), "end time fixed at goal")

	st := tr.Snapshot()
	require.Nil(t, st.Session)
	require.Len(t, st.History, 1)
	require.Equal(t, 4, st.History[0].TotalCount)
	require.Equal(t, 4, st.Profile.TotalLifetimeCount)
	require.Equal(t, 1, st.Profile.CurrentStreak)
	require.Equal(t, 1, st.Profile.LongestStreak)

	require.Nil(t, gw.last().Session)
	require.Equal(t, model.WidgetData{
		TotalLifetimeCount: 4,
		CurrentStreak:      1,
		TodayCount:         4,
		UpdatedAt:          clk.t,
	}, pub.published[len(pub.published)-1])

	_, err = tr.EndSession()
	require.ErrorIs(t, err, ErrNoActiveSession)
}

func TestIncrement_WithoutSessionIsNoop(t *testing.T) {
	tr, gw, _, ch, _ := newTracker(t, freshState())

	_, ok := tr.Increment(1)
	require.False(t, ok)
	require.Empty(t, gw.saved)
	require.Empty(t, ch.counts)
	require.Equal(t, 0, tr.Snapshot().Profile.TotalLifetimeCount)
}

func TestEndSession_StreakAcrossDaysKeepsLongest(t *testing.T) {
	st := freshState()
	st.Profile.LongestStreak = 12
	tr, _, _, _, clk := newTracker(t, st)

	for day := 0; day < 3; day++ {
		_, err := tr.StartSession("Ram", nil)
		require.NoError(t, err)
		tr.Increment(10)
		_, err = tr.EndSession()
		require.NoError(t, err)
		clk.t = clk.t.AddDate(0, 0, 1)
	}

	p := tr.Snapshot().Profile
	require.Equal(t, 3, p.CurrentStreak)
	require.Equal(t, 12, p.LongestStreak)
	require.Equal(t, 30, p.TotalLifetimeCount)
}

func TestApplyRemoteCount_MonotonicityGuard(t *testing.T) {
	tr, _, _, _, _ := newTracker(t, freshState())
	require.False(t, tr.ApplyRemoteCount(5), "no session")

	_, err := tr.StartSession("Om", nil)
	require.NoError(t, err)
	tr.Increment(20)
	require.Equal(t, 20, tr.Snapshot().Profile.TotalLifetimeCount)

	require.False(t, tr.ApplyRemoteCount(15))
	st := tr.Snapshot()
	require.Equal(t, 20, st.Session.CurrentCount)
	require.Equal(t, 20, st.Profile.TotalLifetimeCount)

	require.False(t, tr.ApplyRemoteCount(20), "duplicate")

	require.True(t, tr.ApplyRemoteCount(25))
	st = tr.Snapshot()
	require.Equal(t, 25, st.Session.CurrentCount)
	require.Equal(t, 25, st.Profile.TotalLifetimeCount)
}

func TestApplyRemoteCount_DoesNotComplete(t *testing.T) {
	tr, _, _, _, _ := newTracker(t, freshState())
	target := 10
	_, err := tr.StartSession("Om", &target)
	require.NoError(t, err)

	require.True(t, tr.ApplyRemoteCount(12))
	s, ok := tr.ActiveSession()
	require.True(t, ok)
	require.False(t, s.IsCompleted)
	require.Nil(t, s.EndTime)
}

func TestSignOutThenSignIn_PreservesPractice(t *testing.T) {
	st := freshState()
	goal := 108
	st.Profile.DailyGoal = &goal
	st.Profile.PreferredLabels = []string{"Om"}
	st.Profile.TotalLifetimeCount = 900
	st.Profile.CurrentStreak = 3
	st.Profile.LongestStreak = 9
	tr, _, _, _, _ := newTracker(t, st)

	require.NoError(t, tr.SignIn("Apple", "001234.abcd", "Asha"))
	require.Equal(t, "Apple", tr.Snapshot().Profile.SignInMethod())

	tr.SignOut()
	p := tr.Snapshot().Profile
	require.True(t, p.IsGuest)
	require.Nil(t, p.Name)
	require.Nil(t, p.AppleUserID)
	require.Equal(t, 900, p.TotalLifetimeCount)
	require.Equal(t, 3, p.CurrentStreak)
	require.Equal(t, 9, p.LongestStreak)
	require.Equal(t, []string{"Om"}, p.PreferredLabels)
	require.Equal(t, 108, *p.DailyGoal)

	err := tr.SignIn("myspace", "x", "")
	require.ErrorIs(t, err, ErrInvalidProvider)
}

func TestContinueAsGuest_Commits(t *testing.T) {
	tr, gw, _, _, _ := newTracker(t, freshState())
	require.NoError(t, tr.SignIn("google", "g@example.com", ""))

	tr.ContinueAsGuest()

	p := tr.Snapshot().Profile
	require.True(t, p.IsGuest)
	require.False(t, p.IsSignedIn())
	require.Equal(t, "g@example.com", *p.GoogleEmail)
	require.True(t, gw.last().Profile.IsGuest)
}

func TestRecordDonation(t *testing.T) {
	tr, _, _, _, _ := newTracker(t, freshState())

	p, err := tr.RecordDonation("large")
	require.NoError(t, err)
	require.Equal(t, config.ProductLargeCoffee, p.ID)

	_, err = tr.RecordDonation(config.ProductSpiritualPatron)
	require.NoError(t, err)

	_, err = tr.RecordDonation("com.example.fake")
	require.ErrorIs(t, err, ErrUnknownProduct)

	prof := tr.Snapshot().Profile
	require.Equal(t, 2, prof.TotalDonations)
	require.Equal(t, int64(499+1999), prof.TotalDonationCents)
}

func TestUpdatePreferences(t *testing.T) {
	tr, _, _, _, _ := newTracker(t, freshState())
	goal := 216
	minutes := 30
	on := true

	p := tr.UpdatePreferences(Preferences{
		DailyGoal:              &goal,
		PreferredLabels:        []string{"ram", " krishna ", ""},
		FavoriteSessionMinutes: &minutes,
		ReminderEnabled:        &on,
	})
	require.Equal(t, 216, *p.DailyGoal)
	require.Equal(t, []string{"Ram", "Krishna"}, p.PreferredLabels)
	require.Equal(t, 30, p.FavoriteSessionMinutes)
	require.True(t, p.IsReminderEnabled)

	p = tr.UpdatePreferences(Preferences{ClearDailyGoal: true})
	require.Nil(t, p.DailyGoal)
	require.Equal(t, []string{"Ram", "Krishna"}, p.PreferredLabels, "untouched")
}

func TestReset(t *testing.T) {
	tr, gw, _, _, _ := newTracker(t, freshState())
	require.NoError(t, tr.SignIn("google", "a@example.com", "A"))
	_, err := tr.StartSession("Om", nil)
	require.NoError(t, err)
	tr.Increment(5)
	_, err = tr.EndSession()
	require.NoError(t, err)
	_, err = tr.StartSession("Om", nil)
	require.NoError(t, err)

	tr.Reset()
	st := tr.Snapshot()
	require.Nil(t, st.Session)
	require.Empty(t, st.History)
	require.Equal(t, 0, st.Profile.TotalLifetimeCount)
	require.Equal(t, 0, st.Profile.LongestStreak)
	require.Equal(t, "Google", st.Profile.SignInMethod())
	require.Empty(t, gw.last().History)
}

func TestBestEffortFailuresKeepMemory(t *testing.T) {
	tr, gw, pub, ch, _ := newTracker(t, freshState())
	gw.failing = true
	pub.failing = true
	ch.failing = true

	_, err := tr.StartSession("Om", nil)
	require.NoError(t, err)
	s, ok := tr.Increment(2)
	require.True(t, ok)
	require.Equal(t, 2, s.CurrentCount)
	_, err = tr.EndSession()
	require.NoError(t, err)

	require.Equal(t, 2, tr.Snapshot().Profile.TotalLifetimeCount)
	require.Len(t, gw.saved, 3)
}

func TestRepublish_TodayRollsOver(t *testing.T) {
	tr, _, pub, _, clk := newTracker(t, freshState())
	_, err := tr.StartSession("Om", nil)
	require.NoError(t, err)
	tr.Increment(7)
	_, err = tr.EndSession()
	require.NoError(t, err)
	require.Equal(t, 7, pub.published[len(pub.published)-1].TodayCount)

	clk.t = clk.t.AddDate(0, 0, 1)
	tr.Republish()
	last := pub.published[len(pub.published)-1]
	require.Equal(t, 0, last.TodayCount)
	require.Equal(t, 7, last.TotalLifetimeCount)
	require.Equal(t, 1, last.CurrentStreak)
}

func TestSnapshotIsIsolated(t *testing.T) {
	tr, _, _, _, _ := newTracker(t, freshState())
	_, err := tr.StartSession("Om", nil)
	require.NoError(t, err)

	snap := tr.Snapshot()
	snap.Session.CurrentCount = 500
	s, _ := tr.ActiveSession()
	require.Equal(t, 0, s.CurrentCount)
}
