package notify

import (
	"fmt"
	"sync"
	"time"

	"example.com/habits/internal/observability"
)

// Scheduler arms one-shot in-memory reminder timers. Timers are lost on
// process restart and are not re-armed after firing; the daemon re-primes
// them from the store at startup.
type Scheduler struct {
	notifier Notifier
	now      func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewScheduler constructs a Scheduler delivering through the notifier.
func NewScheduler(notifier Notifier) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		now:      time.Now,
		timers:   make(map[string]*time.Timer),
	}
}

// NextDelay computes the wait until the next occurrence of the HH:MM
// time-of-day: today if still in the future, otherwise tomorrow.
func (s *Scheduler) NextDelay(reminderTime string) (time.Duration, error) {
	parsed, err := time.Parse("15:04", reminderTime)
	if err != nil {
		return 0, fmt.Errorf("invalid reminder time %q: %w", reminderTime, err)
	}

	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now), nil
}

// Schedule arms (or re-arms) the reminder timer for a habit and returns the
// delay until it fires.
func (s *Scheduler) Schedule(habitID, habitName, reminderTime string) (time.Duration, error) {
	delay, err := s.NextDelay(reminderTime)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[habitID]; ok {
		existing.Stop()
	}
	s.timers[habitID] = time.AfterFunc(delay, func() {
		s.fire(habitID, habitName)
	})
	observability.RecordReminderScheduled()
	return delay, nil
}

// Cancel stops the reminder timer for a habit, if one is armed.
func (s *Scheduler) Cancel(habitID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[habitID]; ok {
		timer.Stop()
		delete(s.timers, habitID)
	}
}

// Stop cancels every armed timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) fire(habitID, habitName string) {
	s.mu.Lock()
	delete(s.timers, habitID)
	s.mu.Unlock()

	if !s.notifier.RequestPermission() {
		return
	}
	title := fmt.Sprintf("Time for %s!", habitName)
	body := fmt.Sprintf("Don't forget to complete your habit: %s", habitName)
	if err := s.notifier.Show(title, body, "habit-"+habitID); err != nil {
		return
	}
	observability.RecordReminderFired()
}
