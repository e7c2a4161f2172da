package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-journal/internal/database"
	"github.com/benvon/smart-journal/internal/models"
	"github.com/benvon/smart-journal/internal/queue"
	"github.com/benvon/smart-journal/internal/reminder"
	"github.com/benvon/smart-journal/internal/schedule"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderScheduler expands upcoming task occurrences and enqueues one delayed job per
// reminder record. Records are claimed in the dedup store first so overlapping ticks and
// parallel schedulers never enqueue the same reminder twice.
type ReminderScheduler struct {
	tasks    database.ReminderTaskSource
	expander *schedule.Expander
	dedup    reminder.DedupStore
	jobQueue queue.JobQueue
	horizon  time.Duration
	grace    time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewReminderScheduler creates a new reminder scheduler
func NewReminderScheduler(
	tasks database.ReminderTaskSource,
	expander *schedule.Expander,
	dedup reminder.DedupStore,
	jobQueue queue.JobQueue,
	horizon, grace time.Duration,
	logger *zap.Logger,
) *ReminderScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderScheduler{
		tasks:    tasks,
		expander: expander,
		dedup:    dedup,
		jobQueue: jobQueue,
		horizon:  horizon,
		grace:    grace,
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs ScheduleDueReminders on the cron spec until ctx is cancelled
func (s *ReminderScheduler) Start(ctx context.Context, spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := s.ScheduleDueReminders(ctx); err != nil {
			s.logger.Error("reminder_schedule_tick_failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}

	c.Start()
	s.logger.Info("reminder_scheduler_started",
		zap.String("schedule", spec),
		zap.Duration("horizon", s.horizon),
		zap.Duration("grace", s.grace),
	)

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("reminder_scheduler_stopped")
	return ctx.Err()
}

// ScheduleDueReminders enqueues every reminder whose instant lies between now minus the
// grace period and now plus the horizon. It returns the number of jobs enqueued.
func (s *ReminderScheduler) ScheduleDueReminders(ctx context.Context) (int, error) {
	now := s.now()
	from := now.Add(-s.grace)
	until := now.Add(s.horizon)

	tasks, err := s.tasks.ListWithReminders(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tasks with reminders: %w", err)
	}

	records := make(map[models.ReminderRecord]*models.Task)
	for _, task := range tasks {
		taskRecords, err := s.expander.ReminderRecords(ctx, task, from, until.Add(lookahead(task)))
		if err != nil {
			// One broken rule must not block the other owners' reminders
			s.logger.Warn("failed_to_expand_task_reminders",
				zap.String("task_id", task.ID.String()),
				zap.String("owner", task.Owner),
				zap.Error(err),
			)
			continue
		}
		for rec, occurrence := range taskRecords {
			records[rec] = occurrence
		}
	}

	enqueued := 0
	for _, rec := range schedule.SortedRecords(records) {
		at := time.UnixMilli(rec.Instant)
		if at.Before(from) || at.After(until) {
			continue
		}

		ok, err := s.enqueue(ctx, rec, records[rec], now)
		if err != nil {
			s.logger.Error("failed_to_schedule_reminder",
				zap.String("task_id", rec.TaskID.String()),
				zap.Int64("instant", rec.Instant),
				zap.Error(err),
			)
			continue
		}
		if ok {
			enqueued++
		}
	}

	s.logger.Info("scheduled_reminders",
		zap.Int("task_count", len(tasks)),
		zap.Int("record_count", len(records)),
		zap.Int("enqueued", enqueued),
	)
	return enqueued, nil
}

// enqueue claims rec and publishes its job. It reports false when another tick already owns rec.
func (s *ReminderScheduler) enqueue(ctx context.Context, rec models.ReminderRecord, occurrence *models.Task, now time.Time) (bool, error) {
	at := time.UnixMilli(rec.Instant)
	ttl := at.Sub(now) + s.grace
	if ttl <= 0 {
		return false, nil
	}

	claimed, err := s.dedup.Claim(ctx, rec, ttl)
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder: %w", err)
	}
	if !claimed {
		return false, nil
	}

	job := queue.NewReminderJob(occurrence.Owner, rec, s.grace)
	job.Metadata["remind_at"] = at.UTC().Format(time.RFC3339)
	job.Metadata["due_date"] = occurrence.DueDate
	job.Metadata["due_time"] = occurrence.DueTime

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		if releaseErr := s.dedup.Release(ctx, rec); releaseErr != nil {
			s.logger.Warn("failed_to_release_reminder_claim",
				zap.String("task_id", rec.TaskID.String()),
				zap.Error(releaseErr),
			)
		}
		return false, fmt.Errorf("failed to enqueue reminder job: %w", err)
	}

	s.logger.Debug("reminder_enqueued",
		zap.String("task_id", rec.TaskID.String()),
		zap.String("job_id", job.ID.String()),
		zap.Time("remind_at", at),
	)
	return true, nil
}
