package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/theirongolddev/japa/internal/tracker"
)

const maxBodyBytes = 64 << 10

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeBody reads an optional JSON body into v and validates it.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// statusFor maps tracker errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tracker.ErrSessionActive), errors.Is(err, tracker.ErrNoActiveSession):
		return http.StatusConflict
	case errors.Is(err, tracker.ErrUnknownProduct), errors.Is(err, tracker.ErrInvalidProvider):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Service) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess, err := s.tr.StartSession(req.Label, req.Target)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{Session: sess, Snapshot: s.snapshot()})
}

func (s *Service) handleTap(w http.ResponseWriter, r *http.Request) {
	var req TapRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.N == 0 {
		req.N = 1
	}

	sess, ok := s.tr.Increment(req.N)
	if !ok {
		writeError(w, http.StatusConflict, tracker.ErrNoActiveSession)
		return
	}
	s.metrics.taps.Add(float64(req.N))
	writeJSON(w, http.StatusOK, SessionResponse{Session: sess, Snapshot: s.snapshot()})
}

func (s *Service) handleEnd(w http.ResponseWriter, _ *http.Request) {
	finished, err := s.tr.EndSession()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	snap := s.snapshot()
	s.publishEvent(Event{Type: EventSessionEnd, Count: finished.CurrentCount, Session: &finished, Snapshot: &snap})
	s.metrics.sessionsEnded.Inc()
	writeJSON(w, http.StatusOK, SessionResponse{Session: finished, Snapshot: snap})
}

func (s *Service) handleRemoteCount(w http.ResponseWriter, r *http.Request) {
	var req RemoteCountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	applied := s.tr.ApplyRemoteCount(*req.Count)
	snap := s.snapshot()
	if applied {
		s.metrics.remoteCounts.WithLabelValues("applied").Inc()
		s.publishEvent(Event{Type: EventRemoteCount, Count: *req.Count, Lifetime: snap.LifetimeCount, Snapshot: &snap})
	} else {
		s.metrics.remoteCounts.WithLabelValues("ignored").Inc()
	}
	writeJSON(w, http.StatusOK, RemoteCountResponse{Applied: applied, Snapshot: snap})
}

func (s *Service) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.tr.SignIn(req.Provider, req.Identifier, req.Name); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.profileChanged(w)
}

func (s *Service) handleSignOut(w http.ResponseWriter, _ *http.Request) {
	s.tr.SignOut()
	s.profileChanged(w)
}

func (s *Service) handleGuest(w http.ResponseWriter, _ *http.Request) {
	s.tr.ContinueAsGuest()
	s.profileChanged(w)
}

func (s *Service) handleDonation(w http.ResponseWriter, r *http.Request) {
	var req DonationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	product, err := s.tr.RecordDonation(req.ProductID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	snap := s.snapshot()
	s.publishEvent(Event{Type: EventProfile, Snapshot: &snap})
	writeJSON(w, http.StatusOK, DonationResponse{Product: product, Snapshot: snap})
}

func (s *Service) handlePreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.tr.UpdatePreferences(tracker.Preferences{
		DailyGoal:              req.DailyGoal,
		ClearDailyGoal:         req.ClearDailyGoal,
		PreferredLabels:        req.PreferredLabels,
		ReminderTime:           req.ReminderTime,
		ReminderEnabled:        req.ReminderEnabled,
		FavoriteSessionMinutes: req.FavoriteSessionMinutes,
		PreferredMusicTrack:    req.PreferredMusicTrack,
	})
	s.profileChanged(w)
}

func (s *Service) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.tr.Reset()
	s.profileChanged(w)
}

func (s *Service) profileChanged(w http.ResponseWriter) {
	snap := s.snapshot()
	s.publishEvent(Event{Type: EventProfile, Snapshot: &snap})
	writeJSON(w, http.StatusOK, snap)
}
