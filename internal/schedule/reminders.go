package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/benvon/smart-journal/internal/reminder"
	"go.uber.org/zap"
)

// ReminderRecords maps each reminder of task within [start, end] to the occurrence it
// belongs to. A one-time task contributes its own reminder regardless of the window.
func (e *Expander) ReminderRecords(ctx context.Context, task *models.Task, start, end time.Time) (map[models.ReminderRecord]*models.Task, error) {
	if task == nil {
		return nil, ErrCloneFailed
	}
	records := make(map[models.ReminderRecord]*models.Task)

	if !models.IsRecurring(task) {
		at, ok := reminder.Instant(task)
		if !ok {
			return records, nil
		}
		cloned, err := task.Clone()
		if err != nil {
			return nil, err
		}
		records[reminder.Record(task, at)] = cloned
		return records, nil
	}

	occurrences, err := e.ExpandTask(ctx, task, start, end)
	if err != nil {
		return nil, err
	}
	for _, occurrence := range occurrences {
		at, ok := reminder.Instant(occurrence)
		if !ok {
			e.logger.Error("task_occurrence_missing_reminder",
				zap.String("task_id", occurrence.ID.String()),
				zap.String("due_date", occurrence.DueDate),
				zap.String("due_time", occurrence.DueTime),
			)
			continue
		}
		records[reminder.Record(occurrence, at)] = occurrence
	}
	return records, nil
}

// ReminderRecordsForTasks merges the reminder records of several tasks
func (e *Expander) ReminderRecordsForTasks(ctx context.Context, tasks []*models.Task, start, end time.Time) (map[models.ReminderRecord]*models.Task, error) {
	merged := make(map[models.ReminderRecord]*models.Task)
	for _, task := range tasks {
		records, err := e.ReminderRecords(ctx, task, start, end)
		if err != nil {
			return nil, err
		}
		for rec, occurrence := range records {
			merged[rec] = occurrence
		}
	}
	return merged, nil
}

// SortedRecords returns the records of m ordered by instant, then task ID
func SortedRecords(m map[models.ReminderRecord]*models.Task) []models.ReminderRecord {
	out := make([]models.ReminderRecord, 0, len(m))
	for rec := range m {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Instant != out[j].Instant {
			return out[i].Instant < out[j].Instant
		}
		return out[i].TaskID.String() < out[j].TaskID.String()
	})
	return out
}
