package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/habits/internal/domain"
	"example.com/habits/internal/events"
	"example.com/habits/internal/observability"
)

// Repository provides Postgres-backed persistence for habits, completions,
// and outbox events. Every transaction sets app.user_id so the row-level
// security policies scope all reads and writes to the calling user.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const habitColumns = `habit_id, user_id, name, frequency, days_of_week, reminder_time, created_at, updated_at`

// Create persists the habit and records a habit.created outbox event inside a
// single transaction.
func (r *Repository) Create(ctx context.Context, habit domain.Habit) error {
	err := r.withUserTx(ctx, habit.UserID, func(tx pgx.Tx) error {
		const stmt = `INSERT INTO habits (habit_id, user_id, name, frequency, days_of_week, reminder_time, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

		if _, err := tx.Exec(ctx, stmt,
			habit.ID,
			habit.UserID,
			habit.Name,
			string(habit.Frequency),
			habit.DaysOfWeek,
			nullIfEmpty(habit.ReminderTime),
			habit.CreatedAt,
			habit.UpdatedAt,
		); err != nil {
			return err
		}

		return insertOutbox(ctx, tx, habit.UserID, "habit", habit.ID, "habit.created", events.HabitCreated{
			HabitID:      habit.ID,
			UserID:       habit.UserID,
			Name:         habit.Name,
			Frequency:    string(habit.Frequency),
			DaysOfWeek:   habit.DaysOfWeek,
			ReminderTime: habit.ReminderTime,
			CreatedAt:    habit.CreatedAt,
		})
	})
	if err != nil {
		return domain.StorageError{Op: "create habit", Err: err}
	}
	return nil
}

// Update overwrites the mutable habit fields.
func (r *Repository) Update(ctx context.Context, habit domain.Habit) error {
	err := r.withUserTx(ctx, habit.UserID, func(tx pgx.Tx) error {
		const stmt = `UPDATE habits SET name=$3, frequency=$4, days_of_week=$5, reminder_time=$6, updated_at=$7
        WHERE user_id=$1 AND habit_id=$2`

		tag, err := tx.Exec(ctx, stmt,
			habit.UserID,
			habit.ID,
			habit.Name,
			string(habit.Frequency),
			habit.DaysOfWeek,
			nullIfEmpty(habit.ReminderTime),
			habit.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrHabitNotFound
		}
		return insertOutbox(ctx, tx, habit.UserID, "habit", habit.ID, "habit.updated", events.HabitUpdated{
			HabitID:      habit.ID,
			UserID:       habit.UserID,
			Name:         habit.Name,
			Frequency:    string(habit.Frequency),
			DaysOfWeek:   habit.DaysOfWeek,
			ReminderTime: habit.ReminderTime,
			UpdatedAt:    habit.UpdatedAt,
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			return err
		}
		return domain.StorageError{Op: "update habit", Err: err}
	}
	return nil
}

// Delete removes the habit; completion rows cascade via the foreign key. A
// habit.deleted outbox event is recorded in the same transaction.
func (r *Repository) Delete(ctx context.Context, userID, habitID string) (bool, error) {
	var deleted bool
	err := r.withUserTx(ctx, userID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM habits WHERE user_id=$1 AND habit_id=$2`, userID, habitID)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		if !deleted {
			return nil
		}
		return insertOutbox(ctx, tx, userID, "habit", habitID, "habit.deleted", events.HabitDeleted{
			HabitID:    habitID,
			UserID:     userID,
			OccurredAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return false, domain.StorageError{Op: "delete habit", Err: err}
	}
	return deleted, nil
}

// Get retrieves a habit by ID, nil when no row is visible to the user.
func (r *Repository) Get(ctx context.Context, userID, habitID string) (*domain.Habit, error) {
	var habit *domain.Habit
	err := r.withUserTx(ctx, userID, func(tx pgx.Tx) error {
		query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id=$1 AND habit_id=$2`
		row := tx.QueryRow(ctx, query, userID, habitID)

		h, err := scanHabit(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		habit = &h
		return nil
	})
	if err != nil {
		return nil, domain.StorageError{Op: "get habit", Err: err}
	}
	return habit, nil
}

// ListByUser returns habits newest first. A non-positive limit fetches the
// full list without pagination.
func (r *Repository) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.Habit, *domain.Cursor, error) {
	args := []interface{}{userID}
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id=$1`

	if cursor != nil {
		query += fmt.Sprintf(` AND (created_at, habit_id) < ($%d, $%d)`, len(args)+1, len(args)+2)
		args = append(args, cursor.CreatedAt, cursor.ID)
	}

	query += ` ORDER BY created_at DESC, habit_id DESC`

	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	var habits []domain.Habit
	err := r.withUserTx(ctx, userID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			h, err := scanHabit(rows)
			if err != nil {
				return err
			}
			habits = append(habits, h)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, nil, domain.StorageError{Op: "list habits", Err: err}
	}

	var nextCursor *domain.Cursor
	if limit > 0 && len(habits) == limit {
		last := habits[len(habits)-1]
		nextCursor = &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return habits, nextCursor, nil
}

// Toggle flips the completion record for (habit, date) in one transaction:
// delete when present, insert when absent. The unique constraint on
// (user_id, habit_id, completion_date) makes a racing duplicate create land
// as "already completed" instead of an error.
func (r *Repository) Toggle(ctx context.Context, userID, habitID, date string) (domain.ToggleOutcome, error) {
	var outcome domain.ToggleOutcome
	err := r.withUserTx(ctx, userID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM completions WHERE user_id=$1 AND habit_id=$2 AND completion_date=$3`,
			userID, habitID, date)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			outcome = domain.ToggleOutcome{Completed: false}
			return insertOutbox(ctx, tx, userID, "completion", habitID, "completion.toggled", events.CompletionToggled{
				HabitID:    habitID,
				UserID:     userID,
				Date:       date,
				Completed:  false,
				OccurredAt: time.Now().UTC(),
			})
		}

		completion := domain.Completion{
			ID:        uuid.NewString(),
			UserID:    userID,
			HabitID:   habitID,
			Date:      date,
			CreatedAt: time.Now().UTC(),
		}

		const stmt = `INSERT INTO completions (completion_id, user_id, habit_id, completion_date, created_at)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (user_id, habit_id, completion_date) DO NOTHING`

		tag, err = tx.Exec(ctx, stmt, completion.ID, userID, habitID, date, completion.CreatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			// Concurrent toggle won the insert; report completed without a new record.
			outcome = domain.ToggleOutcome{Completed: true}
			return nil
		}

		outcome = domain.ToggleOutcome{Completed: true, Created: &completion}
		return insertOutbox(ctx, tx, userID, "completion", habitID, "completion.toggled", events.CompletionToggled{
			HabitID:    habitID,
			UserID:     userID,
			Date:       date,
			Completed:  true,
			OccurredAt: completion.CreatedAt,
		})
	})
	if err != nil {
		return domain.ToggleOutcome{}, domain.StorageError{Op: "toggle completion", Err: err}
	}
	observability.RecordCompletionToggled(outcome.Completed)
	return outcome, nil
}

// ListForDate returns the IDs of habits completed by the user on the date.
func (r *Repository) ListForDate(ctx context.Context, userID, date string) ([]string, error) {
	var habitIDs []string
	err := r.withUserTx(ctx, userID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT habit_id FROM completions WHERE user_id=$1 AND completion_date=$2`,
			userID, date)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			habitIDs = append(habitIDs, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, domain.StorageError{Op: "list completions for date", Err: err}
	}
	return habitIDs, nil
}

// ListForRange returns (date, habit) pairs between the endpoints, inclusive.
func (r *Repository) ListForRange(ctx context.Context, userID, startDate, endDate string) ([]domain.CompletionDay, error) {
	var completions []domain.CompletionDay
	err := r.withUserTx(ctx, userID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT completion_date, habit_id FROM completions
             WHERE user_id=$1 AND completion_date BETWEEN $2 AND $3`,
			userID, startDate, endDate)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var day time.Time
			var habitID string
			if err := rows.Scan(&day, &habitID); err != nil {
				return err
			}
			completions = append(completions, domain.CompletionDay{
				Date:    domain.FormatDate(day),
				HabitID: habitID,
			})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, domain.StorageError{Op: "list completions for range", Err: err}
	}
	return completions, nil
}

// ListReminders returns every habit with a reminder time set, across all
// users. Used by the reminder daemon to prime its timers on startup, so it
// runs outside the per-user scoping.
func (r *Repository) ListReminders(ctx context.Context) ([]domain.Habit, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE reminder_time IS NOT NULL`)
	if err != nil {
		return nil, domain.StorageError{Op: "list reminders", Err: err}
	}
	defer rows.Close()

	var habits []domain.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, domain.StorageError{Op: "list reminders", Err: err}
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError{Op: "list reminders", Err: err}
	}
	return habits, nil
}

// withUserTx runs fn inside a transaction with app.user_id configured for the
// row-level security policies.
func (r *Repository) withUserTx(ctx context.Context, userID string, fn func(pgx.Tx) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.user_id', $1, true)", userID); err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanHabit(row pgx.Row) (domain.Habit, error) {
	var habit domain.Habit
	var frequency string
	var days []int32
	var reminder *string
	if err := row.Scan(&habit.ID, &habit.UserID, &habit.Name, &frequency, &days, &reminder, &habit.CreatedAt, &habit.UpdatedAt); err != nil {
		return domain.Habit{}, err
	}
	habit.Frequency = domain.Frequency(frequency)
	if len(days) > 0 {
		habit.DaysOfWeek = make([]int, 0, len(days))
		for _, day := range days {
			habit.DaysOfWeek = append(habit.DaysOfWeek, int(day))
		}
	}
	if reminder != nil {
		habit.ReminderTime = *reminder
	}
	return habit, nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, userID, aggregateType, aggregateID, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	const stmt = `INSERT INTO outbox (user_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, stmt,
		userID,
		aggregateType,
		aggregateID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		userID,
		body,
	)
	return err
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
}

var eventCatalog = map[string]EventMetadata{
	"habit.created": {
		Topic:         "habit_events",
		SchemaSubject: "habit_events-value",
	},
	"habit.updated": {
		Topic:         "habit_events",
		SchemaSubject: "habit_events-value",
	},
	"habit.deleted": {
		Topic:         "habit_events",
		SchemaSubject: "habit_events-value",
	},
	"completion.toggled": {
		Topic:         "completion_events",
		SchemaSubject: "completion_events-value",
	},
}
