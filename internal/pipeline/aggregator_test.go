package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/japa/internal/model"
)

var refNow = time.Date(2026, 3, 18, 15, 30, 0, 0, time.Local)

func day(offset int) time.Time {
	return StartOfDay(refNow).AddDate(0, 0, offset)
}

func finished(label string, count int, start time.Time, minutes int) model.Session {
	end := start.Add(time.Duration(minutes) * time.Minute)
	return model.Session{
		ID:           label + start.Format("150405"),
		Label:        label,
		CurrentCount: count,
		StartTime:    start,
		EndTime:      &end,
	}
}

func TestFold_MergesSameDay(t *testing.T) {
	var history []model.DailyStats
	history = Fold(history, finished("Om", 40, refNow.Add(-2*time.Hour), 10), refNow)
	history = Fold(history, finished("Ram", 10, refNow.Add(-time.Hour), 5), refNow)

	require.Len(t, history, 1)
	ds := history[0]
	require.Equal(t, day(0), ds.Date)
	require.Equal(t, 50, ds.TotalCount)
	require.Equal(t, 2, ds.SessionsCompleted)
	require.Equal(t, 15*time.Minute, ds.TimeSpent)
	require.Equal(t, map[string]int{"Om": 40, "Ram": 10}, ds.LabelBreakdown)
}

func TestFold_LeavesOtherDaysAlone(t *testing.T) {
	history := []model.DailyStats{
		{Date: day(-1), TotalCount: 7, SessionsCompleted: 1, LabelBreakdown: map[string]int{"Om": 7}},
	}
	history = Fold(history, finished("Om", 3, refNow, 1), refNow)

	require.Len(t, history, 2)
	require.Equal(t, 7, history[0].TotalCount)
	require.Equal(t, 1, history[0].SessionsCompleted)
	require.Equal(t, 3, history[1].TotalCount)
}

func TestFold_NotIdempotent(t *testing.T) {
	s := finished("Om", 5, refNow, 1)
	history := Fold(nil, s, refNow)
	history = Fold(history, s, refNow)

	require.Equal(t, 10, history[0].TotalCount)
	require.Equal(t, 2, history[0].SessionsCompleted)
}

func TestFold_AttributesToGivenDay(t *testing.T) {
	// Started before midnight, finalized after it.
	start := day(0).Add(-10 * time.Minute)
	history := Fold(nil, finished("Om", 20, start, 20), refNow)

	require.Equal(t, day(0), history[0].Date)
	require.Equal(t, 0, TodayCount(history, refNow.AddDate(0, 0, -1)))
	require.Equal(t, 20, TodayCount(history, refNow))
}

func TestFold_OpenSessionTimedToDay(t *testing.T) {
	s := model.Session{Label: "Om", CurrentCount: 4, StartTime: refNow.Add(-25 * time.Minute)}
	history := Fold(nil, s, refNow)

	require.Equal(t, 25*time.Minute, history[0].TimeSpent)
	require.Equal(t, day(0), history[0].Date)
}

func TestRecomputeStreaks(t *testing.T) {
	rec := func(offset, total int) model.DailyStats {
		return model.DailyStats{Date: day(offset), TotalCount: total}
	}

	tests := []struct {
		name        string
		history     []model.DailyStats
		prior       int
		wantCurrent int
		wantLongest int
	}{
		{
			name:        "empty",
			wantCurrent: 0,
			wantLongest: 0,
		},
		{
			name:        "today only",
			history:     []model.DailyStats{rec(0, 10)},
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "zero day breaks",
			history:     []model.DailyStats{rec(0, 10), rec(-1, 5), rec(-2, 0)},
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name:        "missing day breaks",
			history:     []model.DailyStats{rec(0, 10), rec(-2, 5)},
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "unordered input",
			history:     []model.DailyStats{rec(-2, 1), rec(0, 1), rec(-1, 1)},
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name:        "prior longest kept",
			history:     []model.DailyStats{rec(0, 1), rec(-1, 1), rec(-2, 1)},
			prior:       12,
			wantCurrent: 3,
			wantLongest: 12,
		},
		{
			name:        "nothing today",
			history:     []model.DailyStats{rec(-1, 5), rec(-2, 5)},
			prior:       2,
			wantCurrent: 0,
			wantLongest: 2,
		},
		{
			name:        "zero today",
			history:     []model.DailyStats{rec(0, 0), rec(-1, 5)},
			wantCurrent: 0,
			wantLongest: 0,
		},
		{
			name:        "future record breaks the walk",
			history:     []model.DailyStats{rec(1, 9), rec(0, 1)},
			wantCurrent: 0,
			wantLongest: 0,
		},
		{
			name:        "future record ahead of a run",
			history:     []model.DailyStats{rec(1, 9), rec(0, 1), rec(-1, 4)},
			prior:       1,
			wantCurrent: 0,
			wantLongest: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, longest := RecomputeStreaks(tt.history, refNow, tt.prior)
			require.Equal(t, tt.wantCurrent, current, "current")
			require.Equal(t, tt.wantLongest, longest, "longest")
		})
	}
}

func TestRecomputeStreaks_PastReference(t *testing.T) {
	history := []model.DailyStats{
		{Date: day(0), TotalCount: 1},
		{Date: day(-1), TotalCount: 4},
	}
	current, longest := RecomputeStreaks(history, refNow.AddDate(0, 0, -1), 0)
	require.Equal(t, 0, current)
	require.Equal(t, 0, longest)
}

func TestRecomputeStreaks_DoesNotReorderInput(t *testing.T) {
	history := []model.DailyStats{
		{Date: day(-1), TotalCount: 1},
		{Date: day(0), TotalCount: 1},
	}
	RecomputeStreaks(history, refNow, 0)
	require.Equal(t, day(-1), history[0].Date)
}

func TestAggregateDays_FillsGaps(t *testing.T) {
	history := []model.DailyStats{
		{Date: day(0), TotalCount: 3},
		{Date: day(-3), TotalCount: 8},
	}
	days := AggregateDays(history, day(-4), refNow)

	require.Len(t, days, 5)
	require.Equal(t, day(0), days[0].Date)
	require.Equal(t, 3, days[0].TotalCount)
	require.Equal(t, 0, days[1].TotalCount)
	require.Equal(t, 8, days[3].TotalCount)
	require.Equal(t, day(-4), days[4].Date)
}

func TestAggregate_Summary(t *testing.T) {
	goal := 100
	history := []model.DailyStats{
		{Date: day(0), TotalCount: 108, SessionsCompleted: 1, TimeSpent: 20 * time.Minute},
		{Date: day(-1), TotalCount: 54, SessionsCompleted: 2, TimeSpent: 10 * time.Minute},
		{Date: day(-2), TotalCount: 0},
		{Date: day(-40), TotalCount: 500, SessionsCompleted: 3},
	}

	stats := Aggregate(history, day(-30), time.Time{}, &goal)
	require.Equal(t, 162, stats.TotalCount)
	require.Equal(t, 3, stats.TotalSessions)
	require.Equal(t, 2, stats.ActiveDays)
	require.Equal(t, 1, stats.GoalDays)
	require.InDelta(t, 81.0, stats.CountPerDay, 0.001)
	require.InDelta(t, 15.0, stats.MinutesPerDay, 0.001)

	stats = Aggregate(history, time.Time{}, time.Time{}, nil)
	require.Equal(t, 662, stats.TotalCount)
	require.Equal(t, 0, stats.GoalDays)
}

func TestAggregateLabels_ShareAndOrder(t *testing.T) {
	history := []model.DailyStats{
		{Date: day(0), LabelBreakdown: map[string]int{"Om": 30, "Ram": 10}},
		{Date: day(-1), LabelBreakdown: map[string]int{"Om": 30, "Krishna": 30}},
	}
	labels := AggregateLabels(history, time.Time{}, time.Time{})

	require.Len(t, labels, 3)
	require.Equal(t, "Om", labels[0].Label)
	require.Equal(t, 60, labels[0].Count)
	require.Equal(t, 2, labels[0].ActiveDays)
	require.InDelta(t, 60.0, labels[0].SharePercent, 0.001)
	require.Equal(t, "Krishna", labels[1].Label)
	require.Equal(t, "Ram", labels[2].Label)
}

func TestAggregateWeeks_MondayStart(t *testing.T) {
	// 2026-03-18 is a Wednesday.
	history := []model.DailyStats{
		{Date: day(0), TotalCount: 5, SessionsCompleted: 1},
		{Date: day(-2), TotalCount: 7, SessionsCompleted: 1},
		{Date: day(-3), TotalCount: 11, SessionsCompleted: 2},
	}
	weeks := AggregateWeeks(history)

	require.Len(t, weeks, 2)
	require.Equal(t, time.Monday, weeks[0].WeekStart.Weekday())
	require.Equal(t, 12, weeks[0].Count)
	require.Equal(t, 11, weeks[1].Count)
	require.Equal(t, 2, weeks[1].Sessions)
}
