package timeutil

import "time"

// DayKeyLayout is the canonical calendar-day key format.
const DayKeyLayout = "2006-01-02"

// TruncateDay strips the time of day, keeping t's location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayKey formats t as a calendar-day key.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// YesterdayKey is the day key of the day before t.
func YesterdayKey(t time.Time) string {
	return DayKey(t.AddDate(0, 0, -1))
}

// EndOfDay is the last instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return TruncateDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DaysBetween counts whole calendar days from earlier to later.
func DaysBetween(earlier, later time.Time) int {
	return int(TruncateDay(later).Sub(TruncateDay(earlier)) / (24 * time.Hour))
}
