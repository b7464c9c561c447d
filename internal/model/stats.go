package model

import "time"

// DailyStats aggregates every session folded into one calendar day.
type DailyStats struct {
	Date              time.Time      `json:"date"`
	TotalCount        int            `json:"totalCount"`
	SessionsCompleted int            `json:"sessionsCompleted"`
	TimeSpent         time.Duration  `json:"timeSpent"`
	LabelBreakdown    map[string]int `json:"labelBreakdown"`
}

// GoalMet reports whether the day's total reached dailyGoal. False when no goal is set.
func (d DailyStats) GoalMet(dailyGoal *int) bool {
	if dailyGoal == nil {
		return false
	}
	return d.TotalCount >= *dailyGoal
}

// LabelStats holds the cumulative count for one label across a range of days.
type LabelStats struct {
	Label        string
	Count        int
	ActiveDays   int
	SharePercent float64
}

// WeeklyStats holds totals for one calendar week (weeks start on Monday).
type WeeklyStats struct {
	WeekStart time.Time
	Count     int
	Sessions  int
	TimeSpent time.Duration
}

// SummaryStats holds the top-level aggregate over a range of days.
type SummaryStats struct {
	TotalCount    int
	TotalSessions int
	TimeSpent     time.Duration
	ActiveDays    int
	GoalDays      int

	CountPerDay   float64
	MinutesPerDay float64
}

// WidgetData is the small subset mirrored for widget and companion reads.
type WidgetData struct {
	TotalLifetimeCount int       `json:"totalLifetimeCount"`
	CurrentStreak      int       `json:"currentStreak"`
	TodayCount         int       `json:"todayCount"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
