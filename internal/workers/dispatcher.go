package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/smart-journal/internal/database"
	"github.com/benvon/smart-journal/internal/models"
	"github.com/benvon/smart-journal/internal/queue"
	"github.com/benvon/smart-journal/internal/reminder"
	"github.com/benvon/smart-journal/internal/schedule"
	"go.uber.org/zap"
)

// retryDelay is how long a failed reminder waits before its next attempt
const retryDelay = 30 * time.Second

// ReminderDispatcher consumes send_reminder jobs and hands them to a Notifier
type ReminderDispatcher struct {
	tasks    database.TaskRepositoryInterface
	expander *schedule.Expander
	notifier Notifier
	jobQueue queue.JobQueue
	logger   *zap.Logger
}

// NewReminderDispatcher creates a new reminder dispatcher
func NewReminderDispatcher(
	tasks database.TaskRepositoryInterface,
	expander *schedule.Expander,
	notifier Notifier,
	jobQueue queue.JobQueue,
	logger *zap.Logger,
) *ReminderDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderDispatcher{
		tasks:    tasks,
		expander: expander,
		notifier: notifier,
		jobQueue: jobQueue,
		logger:   logger,
	}
}

// Run processes messages until ctx is cancelled or msgChan is closed
func (d *ReminderDispatcher) Run(ctx context.Context, msgChan <-chan queue.MessageInterface, errChan <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			d.logger.Error("queue_error", zap.Error(err))
		case msg, ok := <-msgChan:
			if !ok {
				d.logger.Info("message_channel_closed")
				return
			}
			if err := d.ProcessJob(ctx, msg); err != nil {
				job := msg.GetJob()
				d.logger.Error("failed_to_process_job",
					zap.Error(err),
					zap.String("job_id", job.ID.String()),
					zap.String("job_type", string(job.Type)),
				)
			}
		}
	}
}

// ProcessJob processes a job based on its type
func (d *ReminderDispatcher) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	switch job.Type {
	case queue.JobTypeSendReminder:
		if err := d.sendReminder(ctx, job); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				// The task was deleted after the reminder was scheduled
				d.logger.Info("reminder_task_gone", zap.String("task_id", job.TaskID.String()))
				return ackOrWrap(msg)
			}
			return d.handleJobError(ctx, msg, job, err)
		}
		return ackOrWrap(msg)

	default:
		if nackErr := msg.Nack(false); nackErr != nil {
			d.logger.Warn("failed_to_nack_unknown_job", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (d *ReminderDispatcher) sendReminder(ctx context.Context, job *queue.Job) error {
	task, err := d.tasks.GetByID(ctx, job.Owner, job.TaskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}

	occurrence, err := d.occurrenceFor(ctx, task, job.Record())
	if err != nil {
		return err
	}

	return d.notifier.Notify(ctx, Reminder{
		Owner:      job.Owner,
		Occurrence: occurrence,
		RemindAt:   time.UnixMilli(job.Instant),
	})
}

// occurrenceFor finds the occurrence a reminder record belongs to. A recurring task whose
// slot was completed or removed since scheduling yields database.ErrNotFound.
func (d *ReminderDispatcher) occurrenceFor(ctx context.Context, task *models.Task, rec models.ReminderRecord) (*models.Task, error) {
	if !models.IsRecurring(task) {
		at, ok := reminder.Instant(task)
		if !ok || at.UnixMilli() != rec.Instant {
			return nil, fmt.Errorf("reminder of task %s moved: %w", task.ID, database.ErrNotFound)
		}
		return task, nil
	}

	// Reminders precede their occurrence, so look ahead far enough for any lead time
	at := time.UnixMilli(rec.Instant)
	records, err := d.expander.ReminderRecords(ctx, task, at, at.Add(lookahead(task)))
	if err != nil {
		return nil, fmt.Errorf("failed to expand task: %w", err)
	}
	occurrence, ok := records[rec]
	if !ok {
		return nil, fmt.Errorf("occurrence of task %s at %d: %w", task.ID, rec.Instant, database.ErrNotFound)
	}
	return occurrence, nil
}

// lookahead bounds the distance between a reminder and the start of its occurrence
func lookahead(task *models.Task) time.Duration {
	lead := reminder.DefaultLeadMinutes
	if s := task.ReminderSetting; s != nil {
		for _, o := range s.Overrides {
			lead = max(lead, o)
		}
		if s.Before != nil {
			lead = max(lead, *s.Before)
		}
	}
	return time.Duration(lead)*time.Minute + time.Minute
}

// handleJobError re-enqueues a failed job with a delay while retries remain and dead-letters it otherwise
func (d *ReminderDispatcher) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if !job.CanRetry() {
		d.logger.Warn("reminder_job_failed_sending_to_dlq",
			zap.String("job_id", job.ID.String()),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			d.logger.Warn("failed_to_nack_job_to_dlq", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (max retries): %w", err)
	}

	retry := *job
	retry.IncrementRetry()
	notBefore := time.Now().Add(retryDelay)
	retry.NotBefore = &notBefore

	if enqueueErr := d.jobQueue.Enqueue(ctx, &retry); enqueueErr != nil {
		if nackErr := msg.Nack(true); nackErr != nil {
			d.logger.Warn("failed_to_nack_job", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed, failed to re-enqueue: %w", errors.Join(err, enqueueErr))
	}
	if ackErr := msg.Ack(); ackErr != nil {
		d.logger.Warn("failed_to_ack_retried_job", zap.Error(ackErr))
	}

	d.logger.Info("reminder_job_retry_scheduled",
		zap.String("job_id", job.ID.String()),
		zap.Int("attempt", retry.RetryCount),
		zap.Time("not_before", notBefore),
	)
	return fmt.Errorf("job failed (will retry): %w", err)
}

func ackOrWrap(msg queue.MessageInterface) error {
	if err := msg.Ack(); err != nil {
		return fmt.Errorf("failed to ack job: %w", err)
	}
	return nil
}
