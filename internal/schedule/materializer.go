package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/benvon/smart-journal/internal/recurrence"
	"github.com/benvon/smart-journal/internal/reminder"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// slot is one candidate resolved in the occurrence timezone
type slot struct {
	start time.Time
	end   time.Time
}

func resolveSlot(timezone string, candidate time.Time) (slot, error) {
	loc, err := recurrence.LoadZone(timezone)
	if err != nil {
		return slot{}, err
	}
	local := candidate.In(loc)
	date, clock := recurrence.FormatDate(local), recurrence.FormatTime(local)

	// EndInstant only diverges from StartInstant for date-only slots.
	start, err := recurrence.StartInstant(date, clock, loc)
	if err != nil {
		return slot{}, err
	}
	end, err := recurrence.EndInstant(date, clock, loc)
	if err != nil {
		return slot{}, err
	}
	return slot{start: start, end: end}, nil
}

// Materialize copies a recurring template and moves it to candidate in timezone.
// The result never shares slices or pointers with tmpl.
func (e *Expander) Materialize(tmpl models.Template, timezone string, candidate time.Time) (models.Template, error) {
	switch t := tmpl.(type) {
	case *models.Task:
		occurrence, err := e.materializeTask(t, timezone, candidate)
		if err != nil {
			return nil, err
		}
		return occurrence, nil
	case *models.Transaction:
		occurrence, err := e.materializeTransaction(t, timezone, candidate)
		if err != nil {
			return nil, err
		}
		return occurrence, nil
	default:
		return nil, fmt.Errorf("%w: unsupported template %T", ErrCloneFailed, tmpl)
	}
}

// MaterializeAtMillis moves a recurring task to a Unix millisecond timestamp in its own timezone
func (e *Expander) MaterializeAtMillis(task *models.Task, millis int64) (*models.Task, error) {
	if task == nil {
		return nil, ErrCloneFailed
	}
	return e.materializeTask(task, task.Timezone, time.UnixMilli(millis))
}

func (e *Expander) materializeTask(task *models.Task, timezone string, candidate time.Time) (*models.Task, error) {
	if task == nil {
		return nil, ErrCloneFailed
	}
	if err := requireRule(task.ID, task.RecurrenceRule); err != nil {
		e.logger.Error("materialize_task_without_recurrence_rule", zap.String("task_id", task.ID.String()))
		return nil, err
	}

	s, err := resolveSlot(timezone, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve task %s occurrence: %w", task.ID, err)
	}

	cloned, err := task.Clone()
	if err != nil {
		return nil, err
	}
	cloned.DueDate = recurrence.FormatDate(s.start)
	cloned.DueTime = recurrence.FormatTime(s.end)
	cloned.StartTime = &s.start
	cloned.EndTime = &s.end
	cloned.Timezone = timezone
	cloned.ReminderSetting = task.ReminderSetting.Clone()

	if _, ok := reminder.Instant(cloned); !ok && cloned.ReminderSetting != nil {
		e.logger.Warn("task_occurrence_without_reminder",
			zap.String("task_id", task.ID.String()),
			zap.String("due_date", cloned.DueDate),
			zap.String("due_time", cloned.DueTime),
		)
	}
	return cloned, nil
}

func (e *Expander) materializeTransaction(txn *models.Transaction, timezone string, candidate time.Time) (*models.Transaction, error) {
	if txn == nil {
		return nil, ErrCloneFailed
	}
	if err := requireRule(txn.ID, txn.RecurrenceRule); err != nil {
		e.logger.Error("materialize_transaction_without_recurrence_rule", zap.String("transaction_id", txn.ID.String()))
		return nil, err
	}

	s, err := resolveSlot(timezone, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve transaction %s occurrence: %w", txn.ID, err)
	}

	cloned, err := txn.Clone()
	if err != nil {
		return nil, err
	}
	cloned.Date = recurrence.FormatDate(s.start)
	cloned.Time = recurrence.FormatTime(s.end)
	cloned.StartTime = &s.start
	cloned.EndTime = &s.end
	cloned.Timezone = timezone
	return cloned, nil
}

func requireRule(id uuid.UUID, rule string) error {
	if strings.TrimSpace(rule) == "" {
		return fmt.Errorf("%w: %s", ErrMissingRecurrenceRule, id)
	}
	return nil
}
