package queue

import (
	"time"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeSendReminder delivers one task reminder
	JobTypeSendReminder JobType = "send_reminder"
)

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	Owner      string         `json:"owner"`
	TaskID     uuid.UUID      `json:"task_id"`
	Instant    int64          `json:"instant"`              // reminder instant in Unix milliseconds
	NotBefore  *time.Time     `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time     `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, owner string, taskID uuid.UUID) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		Owner:      owner,
		TaskID:     taskID,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		MaxRetries: 3,
	}
}

// NewReminderJob creates a send_reminder job that becomes eligible at the reminder instant
// and expires grace later
func NewReminderJob(owner string, rec models.ReminderRecord, grace time.Duration) *Job {
	job := NewJob(JobTypeSendReminder, owner, rec.TaskID)
	job.Instant = rec.Instant

	at := time.UnixMilli(rec.Instant).UTC()
	job.NotBefore = &at
	if grace > 0 {
		deadline := at.Add(grace)
		job.NotAfter = &deadline
	}
	return job
}

// Record returns the reminder record a send_reminder job was created from
func (j *Job) Record() models.ReminderRecord {
	return models.ReminderRecord{TaskID: j.TaskID, Instant: j.Instant}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
