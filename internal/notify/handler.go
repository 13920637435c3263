package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"example.com/habits/internal/consumer"
	"example.com/habits/internal/events"
)

// EventHandler reacts to habit-service events: arming and cancelling reminder
// timers as habit definitions change, and surfacing a notification when a
// habit is marked done.
type EventHandler struct {
	scheduler *Scheduler
	notifier  Notifier
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(scheduler *Scheduler, notifier Notifier) *EventHandler {
	return &EventHandler{scheduler: scheduler, notifier: notifier}
}

// Handle dispatches on event type. Unknown types are ignored so new producers
// do not wedge the consumer group.
func (h *EventHandler) Handle(_ context.Context, msg consumer.Message) error {
	switch msg.EventType {
	case "habit.created":
		var event events.HabitCreated
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return err
		}
		return h.armOrCancel(event.HabitID, event.Name, event.ReminderTime)

	case "habit.updated":
		var event events.HabitUpdated
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return err
		}
		return h.armOrCancel(event.HabitID, event.Name, event.ReminderTime)

	case "habit.deleted":
		var event events.HabitDeleted
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return err
		}
		h.scheduler.Cancel(event.HabitID)
		return nil

	case "completion.toggled":
		var event events.CompletionToggled
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return err
		}
		if !event.Completed {
			return nil
		}
		body := fmt.Sprintf("Habit marked done for %s", event.Date)
		return h.notifier.Show("Habit complete!", body, "habit-done-"+event.HabitID)

	default:
		return nil
	}
}

func (h *EventHandler) armOrCancel(habitID, name, reminderTime string) error {
	if reminderTime == "" {
		h.scheduler.Cancel(habitID)
		return nil
	}
	_, err := h.scheduler.Schedule(habitID, name, reminderTime)
	return err
}
