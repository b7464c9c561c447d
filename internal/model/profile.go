package model

import (
	"time"

	"github.com/google/uuid"
)

// Sign-in providers understood by Profile.SignIn.
const (
	ProviderApple  = "apple"
	ProviderGoogle = "google"
)

// Profile holds identity, preferences and lifetime counters. There is one per installation.
type Profile struct {
	ID              string  `json:"id"`
	Name            *string `json:"name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Age             *int    `json:"age,omitempty"`
	Gender          *string `json:"gender,omitempty"`
	ProfileImageURL *string `json:"profileImageURL,omitempty"`
	IsGuest         bool    `json:"isGuest"`
	AppleUserID     *string `json:"appleUserID,omitempty"`
	GoogleEmail     *string `json:"googleEmail,omitempty"`

	PreferredLabels        []string   `json:"preferredLabels"`
	DailyGoal              *int       `json:"dailyGoal,omitempty"`
	ReminderTime           *time.Time `json:"reminderTime,omitempty"`
	IsReminderEnabled      bool       `json:"isReminderEnabled"`
	FavoriteSessionMinutes int        `json:"favoriteSessionDuration"`
	PreferredMusicTrack    *string    `json:"preferredMusicTrack,omitempty"`

	TotalLifetimeCount int       `json:"totalLifetimeCount"`
	JoinDate           time.Time `json:"joinDate"`
	CurrentStreak      int       `json:"currentStreak"`
	LongestStreak      int       `json:"longestStreak"`
	TotalDonations     int       `json:"totalDonations"`
	TotalDonationCents int64     `json:"totalDonationCents"`
}

// NewProfile returns a guest profile joined at now.
func NewProfile(now time.Time) Profile {
	return Profile{
		ID:                     uuid.NewString(),
		IsGuest:                true,
		PreferredLabels:        []string{},
		FavoriteSessionMinutes: 15,
		JoinDate:               now,
	}
}

// SignIn records an external identity. Signing in with one provider clears the other's identifier.
func (p *Profile) SignIn(provider, identifier, displayName string) {
	p.IsGuest = false
	switch provider {
	case ProviderApple:
		p.AppleUserID = strPtr(identifier)
		p.GoogleEmail = nil
	case ProviderGoogle:
		p.GoogleEmail = strPtr(identifier)
		p.AppleUserID = nil
	}
	if displayName != "" {
		p.Name = strPtr(displayName)
	} else {
		p.Name = nil
	}
}

// SignOut clears identity fields only. Counters, streaks, donations and
// preferences belong to the practice, not the account, and are kept.
func (p *Profile) SignOut() {
	p.IsGuest = true
	p.AppleUserID = nil
	p.GoogleEmail = nil
	p.Name = nil
	p.Email = nil
	p.Age = nil
	p.Gender = nil
	p.ProfileImageURL = nil
}

// ContinueAsGuest switches to guest mode without touching stored identity,
// so a later sign-in with the same provider picks up where it left off.
func (p *Profile) ContinueAsGuest() {
	p.IsGuest = true
}

// RecordDonation bumps the donation counter and running amount.
func (p *Profile) RecordDonation(cents int64) {
	p.TotalDonations++
	p.TotalDonationCents += cents
}

// IsSignedIn reports whether a non-guest identity is attached.
func (p Profile) IsSignedIn() bool {
	return !p.IsGuest && (p.AppleUserID != nil || p.GoogleEmail != nil)
}

// SignInMethod names the provider backing the current identity.
func (p Profile) SignInMethod() string {
	switch {
	case p.AppleUserID != nil:
		return "Apple"
	case p.GoogleEmail != nil:
		return "Google"
	default:
		return "Guest"
	}
}

// DisplayName is the name shown in greetings.
func (p Profile) DisplayName() string {
	if p.Name != nil && *p.Name != "" {
		return *p.Name
	}
	if p.IsGuest {
		return "Guest"
	}
	return "User"
}

func strPtr(s string) *string {
	return &s
}
