// Package events defines the payloads emitted through the outbox.
package events

import "time"

// HabitCreated is emitted when a new habit definition is accepted.
type HabitCreated struct {
	HabitID      string    `json:"habit_id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Frequency    string    `json:"frequency"`
	DaysOfWeek   []int     `json:"days_of_week,omitempty"`
	ReminderTime string    `json:"reminder_time,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// HabitUpdated is emitted when a habit definition changes, carrying the full
// post-update state so consumers can re-arm reminders.
type HabitUpdated struct {
	HabitID      string    `json:"habit_id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Frequency    string    `json:"frequency"`
	DaysOfWeek   []int     `json:"days_of_week,omitempty"`
	ReminderTime string    `json:"reminder_time,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HabitDeleted is emitted when a habit is removed, so downstream consumers can
// drop any scheduled reminders.
type HabitDeleted struct {
	HabitID    string    `json:"habit_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CompletionToggled tracks ledger flips for notification and audit flows.
type CompletionToggled struct {
	HabitID    string    `json:"habit_id"`
	UserID     string    `json:"user_id"`
	Date       string    `json:"date"`
	Completed  bool      `json:"completed"`
	OccurredAt time.Time `json:"occurred_at"`
}
