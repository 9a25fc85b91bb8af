// Package notify is the toast side channel: stores report user-visible
// outcomes through an injected Notifier instead of importing a UI layer,
// which keeps them independently testable.
package notify

import "go.uber.org/zap"

// Severity classifies a notification for presentation.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification is one toast-style message.
type Notification struct {
	Title       string
	Description string
	Severity    Severity
}

// Notifier receives notifications. A nil Notifier drops them.
type Notifier func(Notification)

// Success emits a success notification.
func (n Notifier) Success(title, description string) {
	n.emit(Notification{Title: title, Description: description, Severity: SeveritySuccess})
}

// Error emits an error notification.
func (n Notifier) Error(title, description string) {
	n.emit(Notification{Title: title, Description: description, Severity: SeverityError})
}

// Info emits an informational notification.
func (n Notifier) Info(title, description string) {
	n.emit(Notification{Title: title, Description: description, Severity: SeverityInfo})
}

func (n Notifier) emit(msg Notification) {
	if n != nil {
		n(msg)
	}
}

// Zap returns a Notifier that writes notifications to a structured logger.
// Used by headless consumers (the CLI) that have no toast surface.
func Zap(logger *zap.Logger) Notifier {
	return func(msg Notification) {
		fields := []zap.Field{
			zap.String("title", msg.Title),
			zap.String("description", msg.Description),
		}
		switch msg.Severity {
		case SeverityError:
			logger.Warn("Notification", fields...)
		default:
			logger.Info("Notification", fields...)
		}
	}
}
