package tui

import (
	"context"

	"github.com/theirongolddev/japa/internal/daemon"
	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/tracker"
)

// Backend is what the counter drives. A local backend owns the tracker; a
// remote one forwards to a running daemon so the daemon stays the only writer.
type Backend interface {
	State(ctx context.Context) (model.State, error)
	Start(ctx context.Context, label string, target *int) (model.Session, error)
	Tap(ctx context.Context, n int) (model.Session, error)
	End(ctx context.Context) (model.Session, error)
	Mode() string
}

// LocalBackend drives an in-process tracker.
type LocalBackend struct {
	Tracker *tracker.Tracker
}

// State returns the tracker snapshot.
func (b LocalBackend) State(context.Context) (model.State, error) {
	return b.Tracker.Snapshot(), nil
}

// Start begins a session.
func (b LocalBackend) Start(_ context.Context, label string, target *int) (model.Session, error) {
	return b.Tracker.StartSession(label, target)
}

// Tap adds n taps to the active session.
func (b LocalBackend) Tap(_ context.Context, n int) (model.Session, error) {
	s, ok := b.Tracker.Increment(n)
	if !ok {
		return model.Session{}, tracker.ErrNoActiveSession
	}
	return s, nil
}

// End finishes the active session.
func (b LocalBackend) End(context.Context) (model.Session, error) {
	return b.Tracker.EndSession()
}

// Mode implements Backend.
func (LocalBackend) Mode() string { return "local" }

// RemoteBackend forwards to a daemon. History is read from the daemon's
// store through History because the API does not ship it.
type RemoteBackend struct {
	Client  *daemon.Client
	History func() ([]model.DailyStats, error)
}

// State combines the daemon snapshot with the persisted history.
func (b RemoteBackend) State(ctx context.Context) (model.State, error) {
	st, err := b.Client.Status(ctx)
	if err != nil {
		return model.State{}, err
	}
	state := model.State{
		Profile: st.Summary.Profile,
		Session: st.Summary.Session,
	}
	if b.History != nil {
		history, err := b.History()
		if err != nil {
			return state, err
		}
		state.History = history
	}
	return state, nil
}

// Start begins a session on the daemon.
func (b RemoteBackend) Start(ctx context.Context, label string, target *int) (model.Session, error) {
	resp, err := b.Client.StartSession(ctx, label, target)
	return resp.Session, err
}

// Tap forwards taps to the daemon.
func (b RemoteBackend) Tap(ctx context.Context, n int) (model.Session, error) {
	resp, err := b.Client.Tap(ctx, n)
	return resp.Session, err
}

// End finishes the daemon's active session.
func (b RemoteBackend) End(ctx context.Context) (model.Session, error) {
	resp, err := b.Client.EndSession(ctx)
	return resp.Session, err
}

// Mode implements Backend.
func (RemoteBackend) Mode() string { return "daemon" }
