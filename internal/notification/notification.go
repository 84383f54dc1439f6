package notification

import (
    "context"
    "log/slog"
)

const (
    // KindEventRecorded is sent to administrators when a driver records an event.
    KindEventRecorded = "attendance_recorded"
    // KindEventVerified is sent to the owning driver when an admin changes the verified flag.
    KindEventVerified = "attendance_verified"
)

// Message describes a notification payload.
type Message struct {
    Kind        string
    Destination string
    Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
    Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger. It is the only
// delivery channel; there is no push transport.
type LoggerNotifier struct {
    logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
    return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
    if n == nil || n.logger == nil {
        return nil
    }
    n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
    return nil
}
