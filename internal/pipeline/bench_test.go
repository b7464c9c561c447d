package pipeline

import (
	"testing"
	"time"

	"github.com/theirongolddev/japa/internal/model"
)

// syntheticHistory builds n consecutive practiced days ending at ref.
func syntheticHistory(n int, ref time.Time) []model.DailyStats {
	history := make([]model.DailyStats, 0, n)
	for i := 0; i < n; i++ {
		history = append(history, model.DailyStats{
			Date:              StartOfDay(ref).AddDate(0, 0, -i),
			TotalCount:        108,
			SessionsCompleted: 1,
			TimeSpent:         15 * time.Minute,
			LabelBreakdown:    map[string]int{"Om": 108},
		})
	}
	return history
}

func BenchmarkRecomputeStreaks(b *testing.B) {
	now := time.Now()
	history := syntheticHistory(3650, now)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		current, _ := RecomputeStreaks(history, now, 0)
		if current != len(history) {
			b.Fatalf("current = %d, want %d", current, len(history))
		}
	}
}

func BenchmarkFold(b *testing.B) {
	now := time.Now()
	history := syntheticHistory(365, now.AddDate(0, 0, -1))
	end := now
	s := model.Session{Label: "Ram", CurrentCount: 27, StartTime: now.Add(-time.Minute), EndTime: &end}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h := make([]model.DailyStats, len(history))
		copy(h, history)
		_ = Fold(h, s, now)
	}
}

func BenchmarkAggregateLabels(b *testing.B) {
	now := time.Now()
	history := syntheticHistory(3650, now)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = AggregateLabels(history, time.Time{}, time.Time{})
	}
}
