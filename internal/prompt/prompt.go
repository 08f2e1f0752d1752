// Package prompt holds the user-interaction collaborators: confirmation
// before destructive operations and severity-tagged notifications.
package prompt

import (
	"context"
	"sync"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Confirmer asks the user to approve an action.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Notifier shows a message to the user.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Auto answers every confirmation with a fixed value.
type Auto bool

// Confirm returns the fixed answer without prompting.
func (a Auto) Confirm(context.Context, string) (bool, error) {
	return bool(a), nil
}

// Discard drops every notification.
type Discard struct{}

// Notify does nothing.
func (Discard) Notify(string, Severity) {}

// Notification is a recorded Notify call.
type Notification struct {
	Message  string
	Severity Severity
}

// Recorder is a Confirmer and Notifier that records every interaction.
// Answer is returned from Confirm.
type Recorder struct {
	Answer bool

	mu            sync.Mutex
	Confirmations []string
	Notifications []Notification
}

// Confirm records the message and returns Answer.
func (r *Recorder) Confirm(_ context.Context, message string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Confirmations = append(r.Confirmations, message)
	return r.Answer, nil
}

// Notify records the notification.
func (r *Recorder) Notify(message string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notifications = append(r.Notifications, Notification{Message: message, Severity: severity})
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Notifications) == 0 {
		return Notification{}, false
	}
	return r.Notifications[len(r.Notifications)-1], true
}

// WithSeverity returns the recorded notifications of one severity.
func (r *Recorder) WithSeverity(s Severity) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.Notifications {
		if n.Severity == s {
			out = append(out, n)
		}
	}
	return out
}
