// Package notify delivers habit reminders through best-effort local
// notifications.
package notify

import "log"

// Notifier is the outbound notification channel. The real push transport
// lives outside this service; implementations only need permission gating and
// a fire-and-forget show call.
type Notifier interface {
	RequestPermission() bool
	Show(title, body, tag string) error
}

// LogNotifier writes notifications to the process log. Used as the default
// channel for the reminder daemon and as a stand-in wherever no push
// transport is configured.
type LogNotifier struct {
	Logger *log.Logger
}

// NewLogNotifier constructs a LogNotifier; a nil logger falls back to the
// standard logger.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{Logger: logger}
}

// RequestPermission always grants; there is nothing to ask for a log sink.
func (n *LogNotifier) RequestPermission() bool { return true }

// Show writes the notification to the log.
func (n *LogNotifier) Show(title, body, tag string) error {
	n.Logger.Printf("notification [%s] %s: %s", tag, title, body)
	return nil
}
