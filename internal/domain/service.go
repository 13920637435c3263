// Package domain defines the business logic for the habit service.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HabitRepository captures persistence operations for habit definitions.
// Every operation is scoped to the owning user; the store enforces row-level
// isolation and the service does not re-validate ownership.
type HabitRepository interface {
	Create(ctx context.Context, habit Habit) error
	Update(ctx context.Context, habit Habit) error
	Delete(ctx context.Context, userID, habitID string) (bool, error)
	Get(ctx context.Context, userID, habitID string) (*Habit, error)
	ListByUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]Habit, *Cursor, error)
}

// CompletionLedger captures the per-day completion records for a user.
type CompletionLedger interface {
	Toggle(ctx context.Context, userID, habitID, date string) (ToggleOutcome, error)
	ListForDate(ctx context.Context, userID, date string) ([]string, error)
	ListForRange(ctx context.Context, userID, startDate, endDate string) ([]CompletionDay, error)
}

// Cursor models the pagination token for habit listings (newest first).
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// Service orchestrates habit workflows over the repository and ledger.
type Service struct {
	habits HabitRepository
	ledger CompletionLedger
}

// NewService constructs a Service.
func NewService(habits HabitRepository, ledger CompletionLedger) *Service {
	return &Service{habits: habits, ledger: ledger}
}

// CreateHabitInput captures the payload from the API layer.
type CreateHabitInput struct {
	Name         string
	Frequency    Frequency
	DaysOfWeek   []int
	ReminderTime string
}

// HabitPatch carries partial updates; nil fields are left unchanged.
type HabitPatch struct {
	Name         *string
	Frequency    *Frequency
	DaysOfWeek   *[]int
	ReminderTime *string
}

// CreateHabit validates, normalizes, and persists a new habit for the user.
func (s *Service) CreateHabit(ctx context.Context, userID string, input CreateHabitInput) (*Habit, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	now := time.Now().UTC()
	habit := Habit{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         input.Name,
		Frequency:    input.Frequency,
		DaysOfWeek:   input.DaysOfWeek,
		ReminderTime: input.ReminderTime,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	habit.Normalize()
	if err := habit.Validate(); err != nil {
		return nil, err
	}

	if err := s.habits.Create(ctx, habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

// UpdateHabit applies a patch to an existing habit, re-running normalization
// so a frequency change away from specific_days clears any stale day set.
func (s *Service) UpdateHabit(ctx context.Context, userID, habitID string, patch HabitPatch) (*Habit, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	habit, err := s.habits.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}
	if habit == nil {
		return nil, ErrHabitNotFound
	}

	if patch.Name != nil {
		habit.Name = *patch.Name
	}
	if patch.Frequency != nil {
		habit.Frequency = *patch.Frequency
	}
	if patch.DaysOfWeek != nil {
		habit.DaysOfWeek = *patch.DaysOfWeek
	}
	if patch.ReminderTime != nil {
		habit.ReminderTime = *patch.ReminderTime
	}
	habit.UpdatedAt = time.Now().UTC()

	habit.Normalize()
	if err := habit.Validate(); err != nil {
		return nil, err
	}

	if err := s.habits.Update(ctx, *habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// DeleteHabit removes a habit. Completions cascade at the store level.
func (s *Service) DeleteHabit(ctx context.Context, userID, habitID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	deleted, err := s.habits.Delete(ctx, userID, habitID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrHabitNotFound
	}
	return nil
}

// GetHabit fetches a single habit owned by the user.
func (s *Service) GetHabit(ctx context.Context, userID, habitID string) (*Habit, error) {
	habit, err := s.habits.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}
	if habit == nil {
		return nil, ErrHabitNotFound
	}
	return habit, nil
}

// ListHabits fetches habits newest-first with cursor pagination.
func (s *Service) ListHabits(ctx context.Context, userID string, cursor *Cursor, limit int) ([]Habit, *Cursor, error) {
	return s.habits.ListByUser(ctx, userID, cursor, limit)
}

// HabitStatus pairs a due habit with its completion state for a day.
type HabitStatus struct {
	Habit     Habit
	Completed bool
}

// DailySummary carries running completion counts for the day.
type DailySummary struct {
	Total       int
	Completed   int
	ProgressPct float64
}

// TodaysHabits returns the habits due on the given day with their completion
// status. Ordering follows the underlying habit list.
func (s *Service) TodaysHabits(ctx context.Context, userID string, today time.Time) ([]HabitStatus, DailySummary, error) {
	habits, _, err := s.habits.ListByUser(ctx, userID, nil, 0)
	if err != nil {
		return nil, DailySummary{}, err
	}

	due := make([]Habit, 0, len(habits))
	for _, habit := range habits {
		if IsDueOn(habit, today) {
			due = append(due, habit)
		}
	}

	completedIDs, err := s.ledger.ListForDate(ctx, userID, FormatDate(today))
	if err != nil {
		return nil, DailySummary{}, err
	}
	completed := make(map[string]struct{}, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = struct{}{}
	}

	statuses := make([]HabitStatus, 0, len(due))
	summary := DailySummary{Total: len(due)}
	for _, habit := range due {
		_, done := completed[habit.ID]
		if done {
			summary.Completed++
		}
		statuses = append(statuses, HabitStatus{Habit: habit, Completed: done})
	}
	if summary.Total > 0 {
		summary.ProgressPct = float64(summary.Completed) / float64(summary.Total) * 100
	}
	return statuses, summary, nil
}

// ToggleCompletion flips the completion record for (habit, date): created when
// absent, deleted when present. The caller owns any display-state update.
func (s *Service) ToggleCompletion(ctx context.Context, userID, habitID string, date time.Time) (ToggleOutcome, error) {
	if userID == "" {
		return ToggleOutcome{}, ErrUnauthenticated
	}
	return s.ledger.Toggle(ctx, userID, habitID, FormatDate(date))
}
