package daemon

import (
	"time"

	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/model"
)

// StartRequest is the body of POST /v1/session/start.
type StartRequest struct {
	Label  string `json:"label" validate:"max=64"`
	Target *int   `json:"target,omitempty" validate:"omitempty,gt=0,lte=1000000"`
}

// TapRequest is the body of POST /v1/tap. An empty body taps once.
type TapRequest struct {
	N int `json:"n" validate:"gte=0,lte=10000"`
}

// RemoteCountRequest is the body of POST /v1/remote-count.
type RemoteCountRequest struct {
	Count *int `json:"count" validate:"required,gte=0"`
}

// SignInRequest is the body of POST /v1/signin.
type SignInRequest struct {
	Provider   string `json:"provider" validate:"required,oneof=apple google"`
	Identifier string `json:"identifier" validate:"required,max=320"`
	Name       string `json:"name" validate:"max=128"`
}

// DonationRequest is the body of POST /v1/donations.
type DonationRequest struct {
	ProductID string `json:"product_id" validate:"required,max=128"`
}

// PreferencesRequest is the body of PATCH /v1/profile. Absent fields are unchanged.
type PreferencesRequest struct {
	DailyGoal              *int       `json:"daily_goal,omitempty" validate:"omitempty,gt=0"`
	ClearDailyGoal         bool       `json:"clear_daily_goal"`
	PreferredLabels        []string   `json:"preferred_labels,omitempty" validate:"omitempty,max=32,dive,max=64"`
	ReminderTime           *time.Time `json:"reminder_time,omitempty"`
	ReminderEnabled        *bool      `json:"reminder_enabled,omitempty"`
	FavoriteSessionMinutes *int       `json:"favorite_session_minutes,omitempty" validate:"omitempty,gte=1,lte=600"`
	PreferredMusicTrack    *string    `json:"preferred_music_track,omitempty" validate:"omitempty,max=128"`
}

// SessionResponse answers start, tap and end.
type SessionResponse struct {
	Session  model.Session `json:"session"`
	Snapshot Snapshot      `json:"snapshot"`
}

// RemoteCountResponse answers POST /v1/remote-count.
type RemoteCountResponse struct {
	Applied  bool     `json:"applied"`
	Snapshot Snapshot `json:"snapshot"`
}

// DonationResponse answers POST /v1/donations.
type DonationResponse struct {
	Product  config.Product `json:"product"`
	Snapshot Snapshot       `json:"snapshot"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
