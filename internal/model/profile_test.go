package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignIn_ProvidersAreExclusive(t *testing.T) {
	p := NewProfile(time.Now())
	require.Equal(t, "Guest", p.SignInMethod())
	require.False(t, p.IsSignedIn())

	p.SignIn(ProviderApple, "apple-123", "Mira")
	require.True(t, p.IsSignedIn())
	require.Equal(t, "Apple", p.SignInMethod())
	require.Equal(t, "Mira", p.DisplayName())

	p.SignIn(ProviderGoogle, "mira@example.com", "")
	require.Nil(t, p.AppleUserID)
	require.Equal(t, "mira@example.com", *p.GoogleEmail)
	require.Equal(t, "Google", p.SignInMethod())
	require.Equal(t, "User", p.DisplayName())
}

func TestContinueAsGuest_KeepsIdentity(t *testing.T) {
	p := NewProfile(time.Now())
	p.SignIn(ProviderGoogle, "g@example.com", "Dev")
	p.TotalLifetimeCount = 300
	require.True(t, p.IsSignedIn())

	p.ContinueAsGuest()

	require.True(t, p.IsGuest)
	require.False(t, p.IsSignedIn())
	require.Equal(t, "g@example.com", *p.GoogleEmail)
	require.Equal(t, "Dev", *p.Name)
	require.Equal(t, 300, p.TotalLifetimeCount)
}

func TestSignOut_PreservesPractice(t *testing.T) {
	p := NewProfile(time.Now())
	goal := 216
	p.DailyGoal = &goal
	p.PreferredLabels = []string{"Om", "Ram"}
	p.TotalLifetimeCount = 5000
	p.CurrentStreak = 4
	p.LongestStreak = 30
	p.RecordDonation(499)
	p.SignIn(ProviderApple, "apple-123", "Mira")

	p.SignOut()

	require.True(t, p.IsGuest)
	require.Nil(t, p.AppleUserID)
	require.Nil(t, p.Name)
	require.Equal(t, "Guest", p.DisplayName())
	require.Equal(t, 5000, p.TotalLifetimeCount)
	require.Equal(t, 4, p.CurrentStreak)
	require.Equal(t, 30, p.LongestStreak)
	require.Equal(t, 1, p.TotalDonations)
	require.Equal(t, int64(499), p.TotalDonationCents)
	require.Equal(t, 216, *p.DailyGoal)
	require.Equal(t, []string{"Om", "Ram"}, p.PreferredLabels)
}

func TestDailyStats_GoalMet(t *testing.T) {
	goal := 108
	require.False(t, DailyStats{TotalCount: 500}.GoalMet(nil))
	require.True(t, DailyStats{TotalCount: 108}.GoalMet(&goal))
	require.False(t, DailyStats{TotalCount: 107}.GoalMet(&goal))
}

func TestState_CloneIsDeep(t *testing.T) {
	target := 108
	st := State{
		Profile: NewProfile(time.Now()),
		History: []DailyStats{{TotalCount: 5, LabelBreakdown: map[string]int{"Om": 5}}},
		Session: &Session{Label: "Om", TargetCount: &target, CurrentCount: 3},
	}
	st.Profile.PreferredLabels = []string{"Om"}

	c := st.Clone()
	c.History[0].LabelBreakdown["Om"] = 99
	c.Session.CurrentCount = 50
	*c.Session.TargetCount = 1
	c.Profile.PreferredLabels[0] = "Ram"

	require.Equal(t, 5, st.History[0].LabelBreakdown["Om"])
	require.Equal(t, 3, st.Session.CurrentCount)
	require.Equal(t, 108, *st.Session.TargetCount)
	require.Equal(t, "Om", st.Profile.PreferredLabels[0])
}
