package tracker

import (
	"strings"

	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/pipeline"
)

// StartSession begins a new session. Only one may be active; an active
// session must be ended first so its counts are folded into the history.
func (t *Tracker) StartSession(label string, target *int) (model.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Session != nil {
		return *t.state.Session, ErrSessionActive
	}

	label = config.CanonicalLabel(label)
	if label == "" {
		label = "Om"
	}
	// A non-positive target is kept as given: it reports zero progress and
	// completes on the first increment, but never counts as "unset".
	s := model.NewSession(label, target, t.now())
	t.state.Session = &s

	t.sendSessionLocked(s)
	t.commitLocked()
	return s, nil
}

// Increment adds n taps to the active session and the lifetime total. It
// reports false, changing nothing, when no session is active.
func (t *Tracker) Increment(n int) (model.Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state.Session
	if s == nil {
		return model.Session{}, false
	}
	if n < 1 {
		return *s, true
	}

	for i := 0; i < n; i++ {
		s.Increment(t.now())
		t.state.Profile.TotalLifetimeCount++
	}

	t.sendCountLocked(s.CurrentCount, t.state.Profile.TotalLifetimeCount)
	t.commitLocked()
	return *s, true
}

// EndSession finalizes the active session, folds it into today's record and
// recomputes streaks. The longest streak never decreases.
func (t *Tracker) EndSession() (model.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Session == nil {
		return model.Session{}, ErrNoActiveSession
	}

	now := t.now()
	finished, day := t.state.Session.Finalize(now)
	t.state.History = pipeline.Fold(t.state.History, finished, day)
	t.state.Session = nil

	p := &t.state.Profile
	p.CurrentStreak, p.LongestStreak = pipeline.RecomputeStreaks(t.state.History, now, p.LongestStreak)

	t.commitLocked()
	return finished, nil
}

// ApplyRemoteCount adopts a count reported by a companion device when it is
// ahead of the local count, adding the difference to the lifetime total.
// Stale or duplicate counts are ignored. It reports whether anything changed.
func (t *Tracker) ApplyRemoteCount(count int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state.Session
	if s == nil {
		return false
	}
	delta := count - s.CurrentCount
	if delta <= 0 {
		return false
	}

	s.CurrentCount = count
	t.state.Profile.TotalLifetimeCount += delta

	t.commitLocked()
	return true
}

// ActiveSession returns a copy of the active session, if any.
func (t *Tracker) ActiveSession() (model.Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Session == nil {
		return model.Session{}, false
	}
	return *t.state.Clone().Session, true
}

func normalizeProvider(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}
