package handlers

import (
	"context"

	"github.com/benvon/smart-journal/internal/database"
	"github.com/benvon/smart-journal/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type mockTaskRepo struct {
	getByIDFunc     func(ctx context.Context, owner string, id uuid.UUID) (*models.Task, error)
	listByOwnerFunc func(ctx context.Context, owner string) ([]*models.Task, error)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Task, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, owner, id)
	}
	return nil, database.ErrNotFound
}

func (m *mockTaskRepo) ListByOwner(ctx context.Context, owner string) ([]*models.Task, error) {
	if m.listByOwnerFunc != nil {
		return m.listByOwnerFunc(ctx, owner)
	}
	return nil, nil
}

type mockTransactionRepo struct {
	listByOwnerFunc func(ctx context.Context, owner string) ([]*models.Transaction, error)
}

func (m *mockTransactionRepo) GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Transaction, error) {
	return nil, database.ErrNotFound
}

func (m *mockTransactionRepo) ListByOwner(ctx context.Context, owner string) ([]*models.Transaction, error) {
	if m.listByOwnerFunc != nil {
		return m.listByOwnerFunc(ctx, owner)
	}
	return nil, nil
}

var (
	_ database.TaskRepositoryInterface        = (*mockTaskRepo)(nil)
	_ database.TransactionRepositoryInterface = (*mockTransactionRepo)(nil)
)

// taskStore serves a fixed set of tasks the way the Postgres repository does
func taskStore(tasks ...*models.Task) *mockTaskRepo {
	return &mockTaskRepo{
		getByIDFunc: func(ctx context.Context, owner string, id uuid.UUID) (*models.Task, error) {
			for _, t := range tasks {
				if t.Owner == owner && t.ID == id {
					return t, nil
				}
			}
			return nil, database.ErrNotFound
		},
		listByOwnerFunc: func(ctx context.Context, owner string) ([]*models.Task, error) {
			var out []*models.Task
			for _, t := range tasks {
				if t.Owner == owner {
					out = append(out, t)
				}
			}
			return out, nil
		},
	}
}

func transactionStore(txns ...*models.Transaction) *mockTransactionRepo {
	return &mockTransactionRepo{
		listByOwnerFunc: func(ctx context.Context, owner string) ([]*models.Transaction, error) {
			var out []*models.Transaction
			for _, t := range txns {
				if t.Owner == owner {
					out = append(out, t)
				}
			}
			return out, nil
		},
	}
}

func dailyTask(owner string) *models.Task {
	return &models.Task{
		ID:              uuid.New(),
		Owner:           owner,
		Name:            "water plants",
		DueDate:         "2024-01-01",
		DueTime:         "10:00",
		Timezone:        "UTC",
		RecurrenceRule:  "DTSTART:20240101T100000Z RRULE:FREQ=DAILY;COUNT=10",
		ReminderSetting: &models.ReminderSetting{Overrides: []int{10, 45, 20}},
	}
}

func monthlyTransaction(owner, name, payer string, kind models.TransactionType, amount string, day string) *models.Transaction {
	return &models.Transaction{
		ID:              uuid.New(),
		Owner:           owner,
		Name:            name,
		Payer:           payer,
		Amount:          decimal.RequireFromString(amount),
		TransactionType: kind,
		Date:            "2024-01-" + day,
		Time:            "09:00",
		Timezone:        "UTC",
		RecurrenceRule:  "DTSTART:202401" + day + "T090000Z RRULE:FREQ=MONTHLY",
	}
}
