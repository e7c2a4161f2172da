package workers

import (
	"context"
	"time"

	"github.com/benvon/smart-journal/internal/models"
	"go.uber.org/zap"
)

// Reminder is one due reminder handed to a Notifier
type Reminder struct {
	Owner      string
	Occurrence *models.Task
	RemindAt   time.Time
}

// Notifier delivers reminders to their owner
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// LogNotifier writes reminders to the structured log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that logs each reminder
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier
func (n *LogNotifier) Notify(_ context.Context, r Reminder) error {
	n.logger.Info("reminder_due",
		zap.String("owner", r.Owner),
		zap.String("task_id", r.Occurrence.ID.String()),
		zap.String("task_name", r.Occurrence.Name),
		zap.String("due_date", r.Occurrence.DueDate),
		zap.String("due_time", r.Occurrence.DueTime),
		zap.String("timezone", r.Occurrence.Timezone),
		zap.Time("remind_at", r.RemindAt),
	)
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
