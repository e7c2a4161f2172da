package database

import (
	"context"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/google/uuid"
)

// TaskRepositoryInterface defines the task template reads used by handlers and workers
type TaskRepositoryInterface interface {
	GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Task, error)
	ListByOwner(ctx context.Context, owner string) ([]*models.Task, error)
}

// ReminderTaskSource lists the task templates the reminder scheduler expands
type ReminderTaskSource interface {
	ListWithReminders(ctx context.Context) ([]*models.Task, error)
}

// TransactionRepositoryInterface defines the transaction template reads used by handlers
type TransactionRepositoryInterface interface {
	GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Transaction, error)
	ListByOwner(ctx context.Context, owner string) ([]*models.Transaction, error)
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface        = (*TaskRepository)(nil)
	_ ReminderTaskSource             = (*TaskRepository)(nil)
	_ TransactionRepositoryInterface = (*TransactionRepository)(nil)
)
