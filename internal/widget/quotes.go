package widget

import "time"

var quotes = []string{
	"Every chant brings you closer to inner peace 🙏",
	"Your spiritual journey is a path of love and light ✨",
	"Consistency in practice leads to transformation 🌟",
	"Each count is a step towards divine connection 🕉️",
	"Your dedication to practice inspires others ❤️",
	"Today is a beautiful day for spiritual growth 🌸",
	"Keep counting, keep growing, keep believing 💫",
	"Your spiritual practice is a gift to yourself 🎁",
	"Every moment of devotion matters 🌺",
	"You are on a sacred journey of the soul 🦋",
}

// Quote returns the motivational line for t's day. It changes once per day.
func Quote(t time.Time) string {
	return quotes[t.YearDay()%len(quotes)]
}
