package domain

import "time"

// Completion records that a habit was performed on a specific calendar day.
// At most one row exists per (user, habit, date).
type Completion struct {
	ID        string
	UserID    string
	HabitID   string
	Date      string // YYYY-MM-DD
	CreatedAt time.Time
}

// CompletionDay is one (date, habit) pair returned by range queries.
type CompletionDay struct {
	Date    string
	HabitID string
}

// ToggleOutcome reports the ledger state after a toggle: Created carries the
// new record when one was inserted, and is nil when an existing record was
// deleted.
type ToggleOutcome struct {
	Completed bool
	Created   *Completion
}
