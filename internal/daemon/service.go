// Package daemon runs the companion service: it hosts the tracker as the single
// writer, serves the HTTP API a watch or second device talks to, streams
// count updates over SSE and republishes the widget after midnight.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/pipeline"
	"github.com/theirongolddev/japa/internal/tracker"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr            string
	DataDir         string
	EventsBuffer    int
	TokenSecret     string
	RefreshSchedule string
}

// Snapshot is the companion view of the tracker state.
type Snapshot struct {
	At            time.Time      `json:"at"`
	SessionActive bool           `json:"session_active"`
	Session       *model.Session `json:"session,omitempty"`
	Progress      float64        `json:"progress"`
	TodayCount    int            `json:"today_count"`
	LifetimeCount int            `json:"lifetime_count"`
	CurrentStreak int            `json:"current_streak"`
	LongestStreak int            `json:"longest_streak"`
	Profile       model.Profile  `json:"profile"`
}

// Event is emitted on every state change a companion cares about.
type Event struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Count     int            `json:"count,omitempty"`
	Lifetime  int            `json:"lifetime,omitempty"`
	Session   *model.Session `json:"session,omitempty"`
	Snapshot  *Snapshot      `json:"snapshot,omitempty"`
}

// Event types.
const (
	EventSnapshot      = "snapshot"
	EventCountUpdate   = "count_update"
	EventSessionUpdate = "session_update"
	EventSessionEnd    = "session_end"
	EventRemoteCount   = "remote_count"
	EventProfile       = "profile"
	EventRollover      = "rollover"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastRolloverAt  time.Time `json:"last_rollover_at,omitempty"`
	DataDir         string    `json:"data_dir"`
	AuthRequired    bool      `json:"auth_required"`
	Summary         Snapshot  `json:"summary"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	tr      *tracker.Tracker
	metrics *metrics

	mu             sync.RWMutex
	startedAt      time.Time
	lastRolloverAt time.Time
	nextEventID    int64
	events         []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service around tr and registers itself as tr's
// companion channel.
func New(cfg Config, tr *tracker.Tracker) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.RefreshSchedule == "" {
		cfg.RefreshSchedule = "0 0 0 * * *"
	}

	s := &Service{
		cfg:       cfg,
		tr:        tr,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.metrics = newMetrics(s)
	tr.SetChannel(s)
	return s
}

// Run serves HTTP and runs the rollover schedule until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sched := cron.New(cron.WithSeconds())
	if _, err := sched.AddFunc(s.cfg.RefreshSchedule, s.rollover); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.cfg.RefreshSchedule, err)
	}
	sched.Start()
	defer sched.Stop()
	log.Printf("[cron] widget refresh scheduled at %q", s.cfg.RefreshSchedule)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Make sure readers see fresh numbers as soon as the daemon is up.
	s.tr.Republish()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// Handler returns the HTTP API with metrics and auth applied.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)

	mux.HandleFunc("POST /v1/session/start", s.requireAuth(s.handleStart))
	mux.HandleFunc("POST /v1/tap", s.requireAuth(s.handleTap))
	mux.HandleFunc("POST /v1/session/end", s.requireAuth(s.handleEnd))
	mux.HandleFunc("POST /v1/remote-count", s.requireAuth(s.handleRemoteCount))
	mux.HandleFunc("POST /v1/signin", s.requireAuth(s.handleSignIn))
	mux.HandleFunc("POST /v1/signout", s.requireAuth(s.handleSignOut))
	mux.HandleFunc("POST /v1/guest", s.requireAuth(s.handleGuest))
	mux.HandleFunc("POST /v1/donations", s.requireAuth(s.handleDonation))
	mux.HandleFunc("PATCH /v1/profile", s.requireAuth(s.handlePreferences))
	mux.HandleFunc("POST /v1/reset", s.requireAuth(s.handleReset))

	mux.Handle("GET /metrics", s.metrics.handler())
	return s.metrics.instrument(mux)
}

// rollover runs at the configured schedule, normally local midnight.
func (s *Service) rollover() {
	s.tr.Republish()

	s.mu.Lock()
	s.lastRolloverAt = time.Now()
	s.mu.Unlock()

	snap := s.snapshot()
	s.publishEvent(Event{Type: EventRollover, Snapshot: &snap})
	log.Printf("[cron] widget republished, today=%d streak=%d", snap.TodayCount, snap.CurrentStreak)
}

// SendCountUpdate implements tracker.Channel. It runs under the tracker's
// lock and must not call back into the tracker.
func (s *Service) SendCountUpdate(count, lifetime int) error {
	s.publishEvent(Event{Type: EventCountUpdate, Count: count, Lifetime: lifetime})
	return nil
}

// SendSessionUpdate implements tracker.Channel.
func (s *Service) SendSessionUpdate(sess model.Session) error {
	s.publishEvent(Event{Type: EventSessionUpdate, Count: sess.CurrentCount, Session: &sess})
	return nil
}

func (s *Service) snapshot() Snapshot {
	return snapshotFromState(s.tr.Snapshot(), time.Now())
}

func snapshotFromState(st model.State, at time.Time) Snapshot {
	snap := Snapshot{
		At:            at,
		SessionActive: st.Session != nil,
		Session:       st.Session,
		TodayCount:    pipeline.TodayCount(st.History, at),
		LifetimeCount: st.Profile.TotalLifetimeCount,
		CurrentStreak: st.Profile.CurrentStreak,
		LongestStreak: st.Profile.LongestStreak,
		Profile:       st.Profile,
	}
	if st.Session != nil {
		snap.Progress = st.Session.Progress()
	}
	return snap
}

// publishEvent appends to the ring buffer and fans out to stream
// subscribers. A subscriber that is not keeping up misses the event.
func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	dropped := 0
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			dropped++
		}
	}
	s.mu.Unlock()

	s.metrics.eventsTotal.WithLabelValues(ev.Type).Inc()
	if dropped > 0 {
		s.metrics.eventsDropped.Add(float64(dropped))
	}
}

func (s *Service) snapshotStatus() Status {
	summary := s.snapshot()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastRolloverAt:  s.lastRolloverAt,
		DataDir:         s.cfg.DataDir,
		AuthRequired:    s.cfg.TokenSecret != "",
		Summary:         summary,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	snap := s.snapshot()
	writeSSE(w, Event{Type: EventSnapshot, Timestamp: snap.At, Snapshot: &snap})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func (s *Service) subscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
