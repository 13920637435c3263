package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	completionToggleCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "habit_service",
		Subsystem: "ledger",
		Name:      "completions_toggled_total",
		Help:      "Number of completion toggles, labeled by resulting state.",
	}, []string{"state"})

	lastCompletionGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "habit_service",
		Subsystem: "ledger",
		Name:      "last_completion_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completion persisted to Postgres.",
	})

	remindersScheduledCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "habit_service",
		Subsystem: "reminders",
		Name:      "scheduled_total",
		Help:      "Number of one-shot reminder timers armed.",
	})

	remindersFiredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "habit_service",
		Subsystem: "reminders",
		Name:      "fired_total",
		Help:      "Number of reminder notifications delivered.",
	})
)

func init() {
	prometheus.MustRegister(completionToggleCounter, lastCompletionGauge, remindersScheduledCounter, remindersFiredCounter)
}

// RecordCompletionToggled counts a ledger flip and, for creations, moves the
// persistence watermark.
func RecordCompletionToggled(completed bool) {
	state := "uncompleted"
	if completed {
		state = "completed"
		lastCompletionGauge.Set(float64(time.Now().Unix()))
	}
	completionToggleCounter.WithLabelValues(state).Inc()
}

// RecordReminderScheduled counts an armed reminder timer.
func RecordReminderScheduled() {
	remindersScheduledCounter.Inc()
}

// RecordReminderFired counts a delivered reminder notification.
func RecordReminderFired() {
	remindersFiredCounter.Inc()
}
