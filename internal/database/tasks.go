package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const taskColumns = `id, owner, name, assignees, labels, due_date, due_time, duration, timezone,
	recurrence_rule, completed_slots, reminder_setting, location, created_at, updated_at`

// TaskRepository handles task template database operations
type TaskRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db, logger: zap.NewNop()}
}

// SetLogger sets the logger used for row-level diagnostics
func (r *TaskRepository) SetLogger(logger *zap.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Upsert inserts a task template or replaces the stored one with the same ID
func (r *TaskRepository) Upsert(ctx context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		ON CONFLICT (id) DO UPDATE SET
			owner = EXCLUDED.owner,
			name = EXCLUDED.name,
			assignees = EXCLUDED.assignees,
			labels = EXCLUDED.labels,
			due_date = EXCLUDED.due_date,
			due_time = EXCLUDED.due_time,
			duration = EXCLUDED.duration,
			timezone = EXCLUDED.timezone,
			recurrence_rule = EXCLUDED.recurrence_rule,
			completed_slots = EXCLUDED.completed_slots,
			reminder_setting = EXCLUDED.reminder_setting,
			location = EXCLUDED.location,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Owner,
		task.Name,
		pq.Array(nonNil(task.Assignees)),
		pq.Array(nonNil(task.Labels)),
		task.DueDate,
		task.DueTime,
		task.Duration,
		task.Timezone,
		task.RecurrenceRule,
		task.CompletedSlots,
		reminderColumn{setting: &task.ReminderSetting},
		task.Location,
		time.Now().UTC(),
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert task: %w", err)
	}
	return nil
}

// GetByID retrieves one task template of an owner
func (r *TaskRepository) GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner = $1 AND id = $2`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, owner, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListByOwner retrieves every task template of an owner
func (r *TaskRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner = $1 ORDER BY created_at, id`
	return r.list(ctx, query, owner)
}

// ListWithReminders retrieves every task template that carries a reminder setting
func (r *TaskRepository) ListWithReminders(ctx context.Context) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE reminder_setting IS NOT NULL ORDER BY owner, id`
	return r.list(ctx, query)
}

func (r *TaskRepository) list(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("failed_to_close_task_rows", zap.Error(err))
		}
	}()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	r.logger.Debug("tasks_loaded", zap.Int("count", len(tasks)))
	return tasks, nil
}

func scanTask(row scanner) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID,
		&task.Owner,
		&task.Name,
		pq.Array(&task.Assignees),
		pq.Array(&task.Labels),
		&task.DueDate,
		&task.DueTime,
		&task.Duration,
		&task.Timezone,
		&task.RecurrenceRule,
		&task.CompletedSlots,
		reminderColumn{setting: &task.ReminderSetting},
		&task.Location,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
