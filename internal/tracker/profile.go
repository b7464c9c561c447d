package tracker

import (
	"fmt"
	"time"

	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/model"
)

// SignIn attaches an external identity. Verifying it is the caller's job.
func (t *Tracker) SignIn(provider, identifier, displayName string) error {
	provider = normalizeProvider(provider)
	if provider != model.ProviderApple && provider != model.ProviderGoogle {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, provider)
	}
	if identifier == "" {
		return fmt.Errorf("%w: empty identifier", ErrInvalidProvider)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Profile.SignIn(provider, identifier, displayName)
	t.commitLocked()
	return nil
}

// SignOut clears identity fields and keeps every counter and preference.
func (t *Tracker) SignOut() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Profile.SignOut()
	t.commitLocked()
}

// ContinueAsGuest marks the profile as a guest. Identity fields are kept.
func (t *Tracker) ContinueAsGuest() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Profile.ContinueAsGuest()
	t.commitLocked()
}

// RecordDonation counts a completed purchase of productID at its current price.
func (t *Tracker) RecordDonation(productID string) (config.Product, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := config.LookupProductAt(productID, t.now())
	if !ok {
		return config.Product{}, fmt.Errorf("%w: %q", ErrUnknownProduct, productID)
	}
	t.state.Profile.RecordDonation(p.PriceCents)
	t.commitLocked()
	return p, nil
}

// Preferences holds the editable profile settings. Nil fields are left unchanged.
type Preferences struct {
	DailyGoal              *int
	ClearDailyGoal         bool
	PreferredLabels        []string
	ReminderTime           *time.Time
	ReminderEnabled        *bool
	FavoriteSessionMinutes *int
	PreferredMusicTrack    *string
}

// UpdatePreferences applies the non-nil fields of prefs.
func (t *Tracker) UpdatePreferences(prefs Preferences) model.Profile {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := &t.state.Profile
	switch {
	case prefs.ClearDailyGoal:
		p.DailyGoal = nil
	case prefs.DailyGoal != nil:
		g := *prefs.DailyGoal
		p.DailyGoal = &g
	}
	if prefs.PreferredLabels != nil {
		labels := make([]string, 0, len(prefs.PreferredLabels))
		for _, l := range prefs.PreferredLabels {
			if l = config.CanonicalLabel(l); l != "" {
				labels = append(labels, l)
			}
		}
		p.PreferredLabels = labels
	}
	if prefs.ReminderTime != nil {
		rt := *prefs.ReminderTime
		p.ReminderTime = &rt
	}
	if prefs.ReminderEnabled != nil {
		p.IsReminderEnabled = *prefs.ReminderEnabled
	}
	if prefs.FavoriteSessionMinutes != nil {
		p.FavoriteSessionMinutes = *prefs.FavoriteSessionMinutes
	}
	if prefs.PreferredMusicTrack != nil {
		if *prefs.PreferredMusicTrack == "" {
			p.PreferredMusicTrack = nil
		} else {
			track := *prefs.PreferredMusicTrack
			p.PreferredMusicTrack = &track
		}
	}

	t.commitLocked()
	return t.state.Clone().Profile
}

// Reset wipes the history, the active session and every profile counter.
// Identity and preferences survive.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := &t.state.Profile
	p.TotalLifetimeCount = 0
	p.CurrentStreak = 0
	p.LongestStreak = 0
	p.TotalDonations = 0
	p.TotalDonationCents = 0
	p.JoinDate = t.now()

	t.state.History = nil
	t.state.Session = nil
	t.commitLocked()
}
