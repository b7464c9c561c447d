// Package model defines domain types for japa sessions, daily stats and the user profile.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is one in-progress tally with an optional goal.
type Session struct {
	ID           string     `json:"id"`
	Label        string     `json:"label"`
	TargetCount  *int       `json:"targetCount,omitempty"`
	CurrentCount int        `json:"currentCount"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	IsCompleted  bool       `json:"isCompleted"`
}

// NewSession starts a session at now. A nil target means the session has no goal.
func NewSession(label string, target *int, now time.Time) Session {
	var t *int
	if target != nil {
		v := *target
		t = &v
	}
	return Session{
		ID:          uuid.NewString(),
		Label:       label,
		TargetCount: t,
		StartTime:   now,
	}
}

// Increment adds one to the count. The first time the goal is reached the
// session is marked completed and its end time recorded; counting continues.
func (s *Session) Increment(now time.Time) {
	s.CurrentCount++
	if s.IsGoalReached() && !s.IsCompleted {
		s.IsCompleted = true
		end := now
		s.EndTime = &end
	}
}

// Finalize stamps the end time if it is still unset and returns the finished
// session together with the calendar day it is attributed to. The day comes
// from now, not from StartTime.
func (s Session) Finalize(now time.Time) (Session, time.Time) {
	if s.EndTime == nil {
		end := now
		s.EndTime = &end
	}
	return s, startOfDay(now)
}

// Progress returns the fraction of the target reached, clamped to [0, 1].
// Sessions without a positive target report zero.
func (s Session) Progress() float64 {
	if s.TargetCount == nil || *s.TargetCount <= 0 {
		return 0
	}
	p := float64(s.CurrentCount) / float64(*s.TargetCount)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// IsGoalReached reports whether the count met the target. False without a target.
func (s Session) IsGoalReached() bool {
	if s.TargetCount == nil {
		return false
	}
	return s.CurrentCount >= *s.TargetCount
}

// Duration is EndTime (or now, while running) minus StartTime.
func (s Session) Duration(now time.Time) time.Duration {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return end.Sub(s.StartTime)
}

// Ended reports whether an end time has been stamped.
func (s Session) Ended() bool {
	return s.EndTime != nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
