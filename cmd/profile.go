package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/japa/internal/cli"
	"github.com/theirongolddev/japa/internal/daemon"
	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/tracker"

	"github.com/spf13/cobra"
)

var (
	flagProfileGoal      int
	flagProfileClearGoal bool
	flagProfileLabels    []string
	flagProfileReminder  string
	flagProfileRemind    bool
	flagProfileMinutes   int
	flagProfileMusic     string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the profile: identity, counters and preferences",
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change profile preferences",
	Long:  "Change preferences. Only the flags given are applied; counters and identity are never touched here.",
	Args:  cobra.NoArgs,
	RunE:  runProfileSet,
}

func init() {
	f := profileSetCmd.Flags()
	f.IntVar(&flagProfileGoal, "goal", 0, "Daily goal count")
	f.BoolVar(&flagProfileClearGoal, "clear-goal", false, "Remove the daily goal")
	f.StringSliceVar(&flagProfileLabels, "labels", nil, "Preferred labels, comma separated")
	f.StringVar(&flagProfileReminder, "reminder", "", "Reminder time of day (HH:MM)")
	f.BoolVar(&flagProfileRemind, "remind", false, "Enable or disable the reminder (--remind=false)")
	f.IntVar(&flagProfileMinutes, "minutes", 0, "Favorite session length in minutes")
	f.StringVar(&flagProfileMusic, "music", "", "Preferred music track (empty clears)")

	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfile(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := loadState(cfg)
	if err != nil {
		return err
	}
	printProfile(st.Profile)
	return nil
}

func printProfile(p model.Profile) {
	account := "guest"
	switch {
	case p.AppleUserID != nil:
		account = "apple " + *p.AppleUserID
	case p.GoogleEmail != nil:
		account = "google " + *p.GoogleEmail
	}
	name := "-"
	if p.Name != nil {
		name = *p.Name
	}

	fmt.Println()
	fmt.Print(cli.RenderStats("Identity", [][2]string{
		{"Account", account},
		{"Name", name},
		{"Joined", p.JoinDate.Local().Format("2006-01-02")},
	}))
	fmt.Println()
	fmt.Print(cli.RenderStats("Practice", [][2]string{
		{"Lifetime", cli.Count(cli.FormatNumber(int64(p.TotalLifetimeCount)))},
		{"Current streak", cli.Streak(cli.FormatStreak(p.CurrentStreak))},
		{"Longest streak", cli.FormatStreak(p.LongestStreak)},
		{"Donations", fmt.Sprintf("%d · %s", p.TotalDonations, cli.FormatMoney(p.TotalDonationCents))},
	}))
	fmt.Println()

	reminder := "off"
	if p.ReminderTime != nil {
		reminder = p.ReminderTime.Local().Format("15:04")
		if !p.IsReminderEnabled {
			reminder += " (off)"
		}
	}
	labels := "-"
	if len(p.PreferredLabels) > 0 {
		labels = strings.Join(p.PreferredLabels, ", ")
	}
	music := "-"
	if p.PreferredMusicTrack != nil {
		music = *p.PreferredMusicTrack
	}
	fmt.Print(cli.RenderStats("Preferences", [][2]string{
		{"Daily goal", cli.FormatTarget(p.DailyGoal)},
		{"Labels", labels},
		{"Reminder", reminder},
		{"Session length", strconv.Itoa(p.FavoriteSessionMinutes) + " min"},
		{"Music", music},
	}))
}

// preferencesFromFlags collects only the flags the user set.
func preferencesFromFlags(cmd *cobra.Command, now time.Time) (tracker.Preferences, error) {
	var prefs tracker.Preferences
	f := cmd.Flags()

	if f.Changed("goal") {
		if flagProfileGoal <= 0 {
			return prefs, errors.New("--goal must be positive; use --clear-goal to remove it")
		}
		prefs.DailyGoal = &flagProfileGoal
	}
	prefs.ClearDailyGoal = flagProfileClearGoal
	if f.Changed("labels") {
		prefs.PreferredLabels = flagProfileLabels
		if prefs.PreferredLabels == nil {
			prefs.PreferredLabels = []string{}
		}
	}
	if f.Changed("reminder") {
		at, err := time.ParseInLocation("15:04", flagProfileReminder, now.Location())
		if err != nil {
			return prefs, fmt.Errorf("--reminder: want HH:MM: %w", err)
		}
		y, m, d := now.Date()
		rt := time.Date(y, m, d, at.Hour(), at.Minute(), 0, 0, now.Location())
		prefs.ReminderTime = &rt
		if !f.Changed("remind") {
			on := true
			prefs.ReminderEnabled = &on
		}
	}
	if f.Changed("remind") {
		prefs.ReminderEnabled = &flagProfileRemind
	}
	if f.Changed("minutes") {
		if flagProfileMinutes < 1 || flagProfileMinutes > 600 {
			return prefs, errors.New("--minutes must be between 1 and 600")
		}
		prefs.FavoriteSessionMinutes = &flagProfileMinutes
	}
	if f.Changed("music") {
		prefs.PreferredMusicTrack = &flagProfileMusic
	}
	return prefs, nil
}

func runProfileSet(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().NFlag() == 0 {
		return errors.New("nothing to change; see `japa profile set --help`")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prefs, err := preferencesFromFlags(cmd, time.Now())
	if err != nil {
		return err
	}

	var profile model.Profile
	err = withWriter(cfg,
		func(tr *tracker.Tracker) error {
			profile = tr.UpdatePreferences(prefs)
			return nil
		},
		func(ctx context.Context, c *daemon.Client) error {
			snap, err := c.UpdatePreferences(ctx, daemon.PreferencesRequest{
				DailyGoal:              prefs.DailyGoal,
				ClearDailyGoal:         prefs.ClearDailyGoal,
				PreferredLabels:        prefs.PreferredLabels,
				ReminderTime:           prefs.ReminderTime,
				ReminderEnabled:        prefs.ReminderEnabled,
				FavoriteSessionMinutes: prefs.FavoriteSessionMinutes,
				PreferredMusicTrack:    prefs.PreferredMusicTrack,
			})
			profile = snap.Profile
			return err
		},
	)
	if err != nil {
		return err
	}

	printProfile(profile)
	return nil
}
