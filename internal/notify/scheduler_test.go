package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu         sync.Mutex
	permission bool
	shown      []shownNotification
}

type shownNotification struct {
	title, body, tag string
}

func (n *recordingNotifier) RequestPermission() bool { return n.permission }

func (n *recordingNotifier) Show(title, body, tag string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shown = append(n.shown, shownNotification{title: title, body: body, tag: tag})
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.shown)
}

func newTestScheduler(now time.Time) (*Scheduler, *recordingNotifier) {
	notifier := &recordingNotifier{permission: true}
	scheduler := NewScheduler(notifier)
	scheduler.now = func() time.Time { return now }
	return scheduler, notifier
}

func TestNextDelayLaterToday(t *testing.T) {
	now := time.Date(2024, time.May, 6, 8, 0, 0, 0, time.UTC)
	scheduler, _ := newTestScheduler(now)

	delay, err := scheduler.NextDelay("09:30")
	require.NoError(t, err)
	require.Equal(t, 90*time.Minute, delay)
}

func TestNextDelayRollsToTomorrow(t *testing.T) {
	now := time.Date(2024, time.May, 6, 8, 0, 0, 0, time.UTC)
	scheduler, _ := newTestScheduler(now)

	delay, err := scheduler.NextDelay("07:00")
	require.NoError(t, err)
	require.Equal(t, 23*time.Hour, delay)

	// Exactly now also rolls over; the timer must never fire immediately in a loop.
	delay, err = scheduler.NextDelay("08:00")
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, delay)
}

func TestNextDelayRejectsBadFormat(t *testing.T) {
	scheduler, _ := newTestScheduler(time.Now())

	_, err := scheduler.NextDelay("25:99")
	require.Error(t, err)
	_, err = scheduler.NextDelay("9am")
	require.Error(t, err)
}

func TestScheduleReplacesExistingTimer(t *testing.T) {
	now := time.Date(2024, time.May, 6, 8, 0, 0, 0, time.UTC)
	scheduler, _ := newTestScheduler(now)
	defer scheduler.Stop()

	_, err := scheduler.Schedule("h-1", "Read", "09:00")
	require.NoError(t, err)
	_, err = scheduler.Schedule("h-1", "Read", "10:00")
	require.NoError(t, err)

	scheduler.mu.Lock()
	armed := len(scheduler.timers)
	scheduler.mu.Unlock()
	require.Equal(t, 1, armed)
}

func TestCancelDisarmsTimer(t *testing.T) {
	scheduler, _ := newTestScheduler(time.Date(2024, time.May, 6, 8, 0, 0, 0, time.UTC))
	defer scheduler.Stop()

	_, err := scheduler.Schedule("h-1", "Read", "09:00")
	require.NoError(t, err)
	scheduler.Cancel("h-1")

	scheduler.mu.Lock()
	armed := len(scheduler.timers)
	scheduler.mu.Unlock()
	require.Equal(t, 0, armed)

	// Cancelling an unknown habit is a no-op.
	scheduler.Cancel("h-missing")
}

func TestFireDeliversNotification(t *testing.T) {
	scheduler, notifier := newTestScheduler(time.Now())

	scheduler.fire("h-1", "Meditate")

	require.Equal(t, 1, notifier.count())
	require.Equal(t, "Time for Meditate!", notifier.shown[0].title)
	require.Equal(t, "Don't forget to complete your habit: Meditate", notifier.shown[0].body)
	require.Equal(t, "habit-h-1", notifier.shown[0].tag)
}

func TestFireSkippedWithoutPermission(t *testing.T) {
	scheduler, notifier := newTestScheduler(time.Now())
	notifier.permission = false

	scheduler.fire("h-1", "Meditate")

	require.Equal(t, 0, notifier.count())
}
