// Package pipeline holds the statistics engine: folding finished sessions into
// per-day records, streak computation and the range aggregations behind the
// history views.
package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/japa/internal/model"
)

const dayKeyLayout = "2006-01-02"

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// sameDay compares calendar days in ref's location, so records written in
// another zone still line up with the reference day.
func sameDay(a, ref time.Time) bool {
	return dayKey(a.In(ref.Location())) == dayKey(ref)
}

// Fold merges a finished session into the record for day, creating the record
// if the day is not represented yet. Records for other days are untouched.
// Folding the same session twice counts it twice. A session without an end
// time is timed up to day as passed in, before truncation.
func Fold(history []model.DailyStats, s model.Session, day time.Time) []model.DailyStats {
	end := day
	day = StartOfDay(day)
	idx := -1
	for i := range history {
		if sameDay(history[i].Date, day) {
			idx = i
			break
		}
	}
	if idx < 0 {
		history = append(history, model.DailyStats{
			Date:           day,
			LabelBreakdown: make(map[string]int),
		})
		idx = len(history) - 1
	}

	ds := &history[idx]
	if ds.LabelBreakdown == nil {
		ds.LabelBreakdown = make(map[string]int)
	}
	ds.TotalCount += s.CurrentCount
	ds.SessionsCompleted++
	ds.TimeSpent += s.Duration(end)
	ds.LabelBreakdown[s.Label] += s.CurrentCount

	return history
}

// RecomputeStreaks walks the history backwards from ref's day. The walk stops
// at the first record not dated on the expected day or holding a zero total,
// so a missing day, a zero day and a record dated after ref all break it. Every day counted is part of a run that
// starts at ref's day, so current is that run's length and is zero unless
// ref's own day qualifies. longest never drops below priorLongest.
func RecomputeStreaks(history []model.DailyStats, ref time.Time, priorLongest int) (current, longest int) {
	sorted := make([]model.DailyStats, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	expected := StartOfDay(ref)
	streak := 0

	for _, ds := range sorted {
		if !sameDay(ds.Date, expected) || ds.TotalCount <= 0 {
			break
		}
		streak++
		if streak > longest {
			longest = streak
		}
		current = streak
		expected = StartOfDay(expected.AddDate(0, 0, -1))
	}

	if priorLongest > longest {
		longest = priorLongest
	}
	return current, longest
}

// TodayCount returns the total folded into now's day, or zero.
func TodayCount(history []model.DailyStats, now time.Time) int {
	for _, ds := range history {
		if sameDay(ds.Date, now) {
			return ds.TotalCount
		}
	}
	return 0
}

// FilterByTime returns records whose day falls within [since, until).
// Zero bounds are open.
func FilterByTime(history []model.DailyStats, since, until time.Time) []model.DailyStats {
	if since.IsZero() && until.IsZero() {
		return history
	}

	var result []model.DailyStats
	for _, ds := range history {
		if !since.IsZero() && ds.Date.Before(StartOfDay(since)) {
			continue
		}
		if !until.IsZero() && !ds.Date.Before(until) {
			continue
		}
		result = append(result, ds)
	}
	return result
}

// AggregateDays returns one record per day in [since, until], most recent
// first. Days without practice are filled with zero records so tables and
// charts show gaps.
func AggregateDays(history []model.DailyStats, since, until time.Time) []model.DailyStats {
	dayMap := make(map[string]model.DailyStats)
	for _, ds := range FilterByTime(history, since, until.AddDate(0, 0, 1)) {
		dayMap[dayKey(ds.Date.Local())] = ds
	}

	day := StartOfDay(since.Local())
	end := StartOfDay(until.Local())
	for !day.After(end) {
		k := dayKey(day)
		if _, ok := dayMap[k]; !ok {
			dayMap[k] = model.DailyStats{Date: day}
		}
		day = day.AddDate(0, 0, 1)
	}

	days := make([]model.DailyStats, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

// Aggregate computes summary totals over [since, until).
func Aggregate(history []model.DailyStats, since, until time.Time, dailyGoal *int) model.SummaryStats {
	var stats model.SummaryStats
	for _, ds := range FilterByTime(history, since, until) {
		stats.TotalCount += ds.TotalCount
		stats.TotalSessions += ds.SessionsCompleted
		stats.TimeSpent += ds.TimeSpent
		if ds.TotalCount > 0 {
			stats.ActiveDays++
		}
		if ds.GoalMet(dailyGoal) {
			stats.GoalDays++
		}
	}

	if stats.ActiveDays > 0 {
		days := float64(stats.ActiveDays)
		stats.CountPerDay = float64(stats.TotalCount) / days
		stats.MinutesPerDay = stats.TimeSpent.Minutes() / days
	}
	return stats
}

// AggregateLabels sums label breakdowns over [since, until), sorted by count descending.
func AggregateLabels(history []model.DailyStats, since, until time.Time) []model.LabelStats {
	labelMap := make(map[string]*model.LabelStats)
	total := 0

	for _, ds := range FilterByTime(history, since, until) {
		for label, n := range ds.LabelBreakdown {
			ls, ok := labelMap[label]
			if !ok {
				ls = &model.LabelStats{Label: label}
				labelMap[label] = ls
			}
			ls.Count += n
			if n > 0 {
				ls.ActiveDays++
			}
			total += n
		}
	}

	labels := make([]model.LabelStats, 0, len(labelMap))
	for _, ls := range labelMap {
		if total > 0 {
			ls.SharePercent = float64(ls.Count) / float64(total) * 100
		}
		labels = append(labels, *ls)
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Count != labels[j].Count {
			return labels[i].Count > labels[j].Count
		}
		return labels[i].Label < labels[j].Label
	})
	return labels
}

// AggregateWeeks buckets records into Monday-start weeks, most recent first.
func AggregateWeeks(history []model.DailyStats) []model.WeeklyStats {
	weekMap := make(map[string]*model.WeeklyStats)
	for _, ds := range history {
		start := weekStart(ds.Date)
		k := dayKey(start)
		ws, ok := weekMap[k]
		if !ok {
			ws = &model.WeeklyStats{WeekStart: start}
			weekMap[k] = ws
		}
		ws.Count += ds.TotalCount
		ws.Sessions += ds.SessionsCompleted
		ws.TimeSpent += ds.TimeSpent
	}

	weeks := make([]model.WeeklyStats, 0, len(weekMap))
	for _, ws := range weekMap {
		weeks = append(weeks, *ws)
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].WeekStart.After(weeks[j].WeekStart)
	})
	return weeks
}

func weekStart(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}
