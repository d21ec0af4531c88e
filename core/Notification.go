package core

type NotificationLevel string

const (
	NotificationInfo    NotificationLevel = "info"
	NotificationWarning NotificationLevel = "warning"
	NotificationError   NotificationLevel = "error"
)

// Notification is a run-level message that is not tied to a rule finding,
// for example a file that failed to parse or a report that could not be written.
type Notification struct {
	Message string            `json:"message"`
	Level   NotificationLevel `json:"level"`
}

func NewNotification(level NotificationLevel, message string) Notification {
	return Notification{Message: message, Level: level}
}

// ErrorNotification converts an error into an error-level notification.
func ErrorNotification(err error) Notification {
	return Notification{Message: err.Error(), Level: NotificationError}
}
