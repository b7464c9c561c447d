package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/tracker"
)

type memGateway struct{}

func (memGateway) Load() (model.State, error) {
	return model.State{Profile: model.NewProfile(time.Now())}, nil
}
func (memGateway) Save(model.State) error { return nil }

func newTestService(t *testing.T, secret string, buffer int) (*Service, *httptest.Server) {
	t.Helper()
	tr, err := tracker.New(memGateway{})
	require.NoError(t, err)
	s := New(Config{EventsBuffer: buffer, TokenSecret: secret}, tr)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func newTestClient(t *testing.T, srv *httptest.Server, secret string) *Client {
	t.Helper()
	c, err := NewClient(strings.TrimPrefix(srv.URL, "http://"), secret)
	require.NoError(t, err)
	return c
}

func TestPublishEventRingBuffer(t *testing.T) {
	s, _ := newTestService(t, "", 2)

	s.publishEvent(Event{Type: EventCountUpdate, Count: 1})
	s.publishEvent(Event{Type: EventCountUpdate, Count: 2})
	s.publishEvent(Event{Type: EventCountUpdate, Count: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].Count != 2 || s.events[1].Count != 3 {
		t.Fatalf("events ring contains counts [%d, %d], want [2, 3]", s.events[0].Count, s.events[1].Count)
	}
	if s.events[1].ID != 3 {
		t.Fatalf("last event ID = %d, want 3", s.events[1].ID)
	}
}

func TestSessionFlowOverHTTP(t *testing.T) {
	s, srv := newTestService(t, "", 50)
	c := newTestClient(t, srv, "")
	ctx := context.Background()

	target := 108
	started, err := c.StartSession(ctx, "krishna", &target)
	require.NoError(t, err)
	require.Equal(t, "Krishna", started.Session.Label)
	require.True(t, started.Snapshot.SessionActive)

	_, err = c.StartSession(ctx, "Om", nil)
	require.True(t, IsConflict(err))

	tapped, err := c.Tap(ctx, 54)
	require.NoError(t, err)
	require.Equal(t, 54, tapped.Session.CurrentCount)
	require.InDelta(t, 0.5, tapped.Snapshot.Progress, 1e-9)
	require.Equal(t, 54, tapped.Snapshot.LifetimeCount)

	ended, err := c.EndSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, ended.Session.EndTime)
	require.False(t, ended.Snapshot.SessionActive)
	require.Equal(t, 54, ended.Snapshot.TodayCount)
	require.Equal(t, 1, ended.Snapshot.CurrentStreak)

	_, err = c.Tap(ctx, 1)
	require.True(t, IsConflict(err))

	var types []string
	s.mu.RLock()
	for _, ev := range s.events {
		types = append(types, ev.Type)
	}
	s.mu.RUnlock()
	require.Equal(t, []string{EventSessionUpdate, EventCountUpdate, EventSessionEnd}, types)
}

func TestRemoteCountGuard(t *testing.T) {
	_, srv := newTestService(t, "", 50)
	c := newTestClient(t, srv, "")
	ctx := context.Background()

	_, err := c.StartSession(ctx, "Om", nil)
	require.NoError(t, err)
	_, err = c.Tap(ctx, 20)
	require.NoError(t, err)

	res, err := c.RemoteCount(ctx, 15)
	require.NoError(t, err)
	require.False(t, res.Applied)
	require.Equal(t, 20, res.Snapshot.Session.CurrentCount)

	res, err = c.RemoteCount(ctx, 25)
	require.NoError(t, err)
	require.True(t, res.Applied)
	require.Equal(t, 25, res.Snapshot.Session.CurrentCount)
	require.Equal(t, 25, res.Snapshot.LifetimeCount)
}

func TestValidationRejectsBadPayloads(t *testing.T) {
	_, srv := newTestService(t, "", 50)

	cases := []struct {
		path string
		body string
	}{
		{"/v1/session/start", `{"label":"Om","target":0}`},
		{"/v1/session/start", `{"label":"Om","unknown":1}`},
		{"/v1/tap", `{"n":-1}`},
		{"/v1/remote-count", `{}`},
		{"/v1/signin", `{"provider":"myspace","identifier":"x"}`},
		{"/v1/donations", `{"product_id":""}`},
		{"/v1/donations", `{"product_id":"com.example.fake"}`},
	}
	for _, tc := range cases {
		resp, err := http.Post(srv.URL+tc.path, "application/json", strings.NewReader(tc.body))
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "%s %s", tc.path, tc.body)
	}
}

func TestProfileEndpoints(t *testing.T) {
	_, srv := newTestService(t, "", 50)
	c := newTestClient(t, srv, "")
	ctx := context.Background()

	snap, err := c.SignIn(ctx, SignInRequest{Provider: "google", Identifier: "g@example.com", Name: "G"})
	require.NoError(t, err)
	require.Equal(t, "Google", snap.Profile.SignInMethod())

	don, err := c.Donate(ctx, "small")
	require.NoError(t, err)
	require.Equal(t, int64(299), don.Product.PriceCents)
	require.Equal(t, 1, don.Snapshot.Profile.TotalDonations)

	goal := 108
	snap, err = c.UpdatePreferences(ctx, PreferencesRequest{DailyGoal: &goal})
	require.NoError(t, err)
	require.Equal(t, 108, *snap.Profile.DailyGoal)

	snap, err = c.ContinueAsGuest(ctx)
	require.NoError(t, err)
	require.True(t, snap.Profile.IsGuest)
	require.Equal(t, "g@example.com", *snap.Profile.GoogleEmail)

	snap, err = c.SignOut(ctx)
	require.NoError(t, err)
	require.Nil(t, snap.Profile.GoogleEmail)
	require.True(t, snap.Profile.IsGuest)
	require.Equal(t, 1, snap.Profile.TotalDonations)

	snap, err = c.Reset(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, snap.Profile.TotalDonations)
}

func TestAuthRequiredWhenSecretSet(t *testing.T) {
	const secret = "s3cret"
	_, srv := newTestService(t, secret, 50)
	ctx := context.Background()

	anon := newTestClient(t, srv, "")
	_, err := anon.StartSession(ctx, "Om", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)

	wrong := newTestClient(t, srv, "other-secret")
	_, err = wrong.StartSession(ctx, "Om", nil)
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)

	// Reads stay open.
	st, err := anon.Status(ctx)
	require.NoError(t, err)
	require.True(t, st.AuthRequired)

	ok := newTestClient(t, srv, secret)
	_, err = ok.StartSession(ctx, "Om", nil)
	require.NoError(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := IssueToken("k", "watch", time.Hour)
	require.NoError(t, err)
	device, err := VerifyToken("k", tok)
	require.NoError(t, err)
	require.Equal(t, "watch", device)

	_, err = VerifyToken("other", tok)
	require.Error(t, err)

	forever, err := IssueToken("k", "watch", 0)
	require.NoError(t, err)
	_, err = VerifyToken("k", forever)
	require.NoError(t, err)

	_, err = IssueToken("", "watch", 0)
	require.Error(t, err)
}

func TestStreamSendsSnapshotThenUpdates(t *testing.T) {
	s, srv := newTestService(t, "", 50)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	ev := readSSE(t, r)
	require.Equal(t, EventSnapshot, ev.Type)
	require.NotNil(t, ev.Snapshot)

	require.Eventually(t, func() bool { return s.subscriberCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.SendCountUpdate(7, 700))

	ev = readSSE(t, r)
	require.Equal(t, EventCountUpdate, ev.Type)
	require.Equal(t, 7, ev.Count)
	require.Equal(t, 700, ev.Lifetime)
}

func readSSE(t *testing.T, r *bufio.Reader) Event {
	t.Helper()
	var ev Event
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if strings.HasPrefix(line, "data: ") {
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		}
		if line == "" && ev.Type != "" {
			return ev
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, srv := newTestService(t, "", 50)
	c := newTestClient(t, srv, "")
	ctx := context.Background()

	_, err := c.StartSession(ctx, "Om", nil)
	require.NoError(t, err)
	_, err = c.Tap(ctx, 3)
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	require.Contains(t, text, "japa_taps_total 3")
	require.Contains(t, text, "japa_lifetime_count 3")
	require.Contains(t, text, `japa_http_requests_total{method="POST",path="POST /v1/tap",status="200"} 1`)
}
