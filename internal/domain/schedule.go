package domain

import "time"

// IsDueOn reports whether a habit's schedule rule selects the given calendar
// date. Pure; no side effects.
//
// Weekly habits are due every day, same as daily. The upstream product never
// defined a once-per-week rule, so the behaviour is kept literal rather than
// guessed at.
func IsDueOn(habit Habit, date time.Time) bool {
	switch habit.Frequency {
	case FrequencyDaily:
		return true
	case FrequencyWeekly:
		return true
	case FrequencySpecificDays:
		weekday := int(date.Weekday()) // 0 = Sunday .. 6 = Saturday
		for _, day := range habit.DaysOfWeek {
			if day == weekday {
				return true
			}
		}
		return false
	default:
		// Unknown frequency fails closed.
		return false
	}
}
