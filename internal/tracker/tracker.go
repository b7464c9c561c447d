// Package tracker coordinates the active session, the daily history and the
// profile. A Tracker is the single writer for that state: every mutation
// takes its lock, then persists and publishes on a best-effort basis.
package tracker

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/pipeline"
)

// Gateway loads and stores the full state.
type Gateway interface {
	Load() (model.State, error)
	Save(model.State) error
}

// Publisher mirrors the widget numbers into a region other processes read.
type Publisher interface {
	Publish(model.WidgetData) error
}

// Channel carries outbound messages to a companion device.
type Channel interface {
	SendCountUpdate(count, lifetime int) error
	SendSessionUpdate(s model.Session) error
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithPublisher sets the widget publisher.
func WithPublisher(p Publisher) Option {
	return func(t *Tracker) { t.pub = p }
}

// WithChannel sets the companion channel.
func WithChannel(c Channel) Option {
	return func(t *Tracker) { t.ch = c }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// Tracker owns the in-memory state. It is safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	state model.State

	gw  Gateway
	pub Publisher
	ch  Channel
	now func() time.Time
}

// New loads state through gw and returns a ready Tracker.
func New(gw Gateway, opts ...Option) (*Tracker, error) {
	t := &Tracker{gw: gw, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}

	st, err := gw.Load()
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}
	t.state = st
	return t, nil
}

// SetChannel swaps the companion channel. A nil channel disables sends.
func (t *Tracker) SetChannel(c Channel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ch = c
}

// Snapshot returns a deep copy of the current state.
func (t *Tracker) Snapshot() model.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// Widget returns the numbers the widget shows right now.
func (t *Tracker) Widget() model.WidgetData {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.widgetLocked()
}

// Republish pushes the widget numbers again without changing state. The
// daemon calls it after midnight so today's count resets for readers.
func (t *Tracker) Republish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.publishLocked()
}

func (t *Tracker) widgetLocked() model.WidgetData {
	now := t.now()
	return model.WidgetData{
		TotalLifetimeCount: t.state.Profile.TotalLifetimeCount,
		CurrentStreak:      t.state.Profile.CurrentStreak,
		TodayCount:         pipeline.TodayCount(t.state.History, now),
		UpdatedAt:          now,
	}
}

// commitLocked persists and publishes. Failures leave memory authoritative.
func (t *Tracker) commitLocked() {
	if err := t.gw.Save(t.state.Clone()); err != nil {
		log.Printf("[tracker] save failed: %v", err)
	}
	t.publishLocked()
}

func (t *Tracker) publishLocked() {
	if t.pub == nil {
		return
	}
	if err := t.pub.Publish(t.widgetLocked()); err != nil {
		log.Printf("[tracker] widget publish failed: %v", err)
	}
}

func (t *Tracker) sendCountLocked(count, lifetime int) {
	if t.ch == nil {
		return
	}
	if err := t.ch.SendCountUpdate(count, lifetime); err != nil {
		log.Printf("[tracker] count update dropped: %v", err)
	}
}

func (t *Tracker) sendSessionLocked(s model.Session) {
	if t.ch == nil {
		return
	}
	if err := t.ch.SendSessionUpdate(s); err != nil {
		log.Printf("[tracker] session update dropped: %v", err)
	}
}
