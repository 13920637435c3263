package domain

import (
	"fmt"
	"strings"
	"time"
)

// Frequency describes the schedule rule attached to a habit.
type Frequency string

const (
	FrequencyDaily        Frequency = "daily"
	FrequencyWeekly       Frequency = "weekly"
	FrequencySpecificDays Frequency = "specific_days"
)

// DateLayout is the wire format for calendar dates. Completions are keyed by
// date only; no time-of-day or timezone component is ever stored.
const DateLayout = "2006-01-02"

// Habit is the user-defined recurring task stored in PostgreSQL.
type Habit struct {
	ID           string
	UserID       string
	Name         string
	Frequency    Frequency
	DaysOfWeek   []int // 0 = Sunday .. 6 = Saturday; populated only for specific_days
	ReminderTime string // "HH:MM", empty when no reminder is set
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Normalize enforces the days-of-week invariant: the set is meaningful only for
// specific_days and must be cleared on save for every other frequency, even if
// stale form state carried one.
func (h *Habit) Normalize() {
	if h.Frequency != FrequencySpecificDays {
		h.DaysOfWeek = nil
	}
}

// Validate checks the habit definition before it is persisted.
func (h Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return ValidationError{Field: "name", Reason: "must not be empty"}
	}
	switch h.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencySpecificDays:
	default:
		return ValidationError{Field: "frequency", Reason: fmt.Sprintf("unknown value %q", h.Frequency)}
	}
	for _, day := range h.DaysOfWeek {
		if day < 0 || day > 6 {
			return ValidationError{Field: "days_of_week", Reason: fmt.Sprintf("day %d out of range 0..6", day)}
		}
	}
	if h.ReminderTime != "" {
		if _, err := time.Parse("15:04", h.ReminderTime); err != nil {
			return ValidationError{Field: "reminder_time", Reason: "must be HH:MM"}
		}
	}
	return nil
}

// FormatDate renders a calendar date in the canonical YYYY-MM-DD form.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a canonical YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
