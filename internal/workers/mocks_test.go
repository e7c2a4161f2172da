package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benvon/smart-journal/internal/database"
	"github.com/benvon/smart-journal/internal/models"
	"github.com/benvon/smart-journal/internal/queue"
	"github.com/benvon/smart-journal/internal/reminder"
	"github.com/google/uuid"
)

type mockTaskRepo struct {
	tasks   []*models.Task
	listErr error
}

func (m *mockTaskRepo) ListWithReminders(ctx context.Context) ([]*models.Task, error) {
	return m.tasks, m.listErr
}

func (m *mockTaskRepo) ListByOwner(ctx context.Context, owner string) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range m.tasks {
		if t.Owner == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, owner string, id uuid.UUID) (*models.Task, error) {
	for _, t := range m.tasks {
		if t.Owner == owner && t.ID == id {
			return t, nil
		}
	}
	return nil, database.ErrNotFound
}

var (
	_ database.ReminderTaskSource      = (*mockTaskRepo)(nil)
	_ database.TaskRepositoryInterface = (*mockTaskRepo)(nil)
)

type mockDedupStore struct {
	mu       sync.Mutex
	claimed  map[models.ReminderRecord]time.Duration
	released []models.ReminderRecord
	claimErr error
}

func newMockDedupStore() *mockDedupStore {
	return &mockDedupStore{claimed: make(map[models.ReminderRecord]time.Duration)}
}

func (m *mockDedupStore) Claim(ctx context.Context, rec models.ReminderRecord, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimErr != nil {
		return false, m.claimErr
	}
	if _, ok := m.claimed[rec]; ok {
		return false, nil
	}
	m.claimed[rec] = ttl
	return true, nil
}

func (m *mockDedupStore) Release(ctx context.Context, rec models.ReminderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claimed, rec)
	m.released = append(m.released, rec)
	return nil
}

var _ reminder.DedupStore = (*mockDedupStore)(nil)

type mockJobQueue struct {
	mu          sync.Mutex
	enqueued    []*queue.Job
	enqueueFunc func(ctx context.Context, job *queue.Job) error
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	if m.enqueueFunc != nil {
		if err := m.enqueueFunc(ctx, job); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, job)
	return nil
}

func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan queue.MessageInterface, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error {
	return nil
}

func (m *mockJobQueue) HealthCheck(ctx context.Context) error {
	return nil
}

var _ queue.JobQueue = (*mockJobQueue)(nil)

type mockMessage struct {
	job     *queue.Job
	acked   int
	nacked  int
	requeue bool
}

func (m *mockMessage) Ack() error {
	m.acked++
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked++
	m.requeue = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

var _ queue.MessageInterface = (*mockMessage)(nil)

type mockNotifier struct {
	mu        sync.Mutex
	reminders []Reminder
	err       error
}

func (m *mockNotifier) Notify(ctx context.Context, r Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.reminders = append(m.reminders, r)
	return nil
}

var _ Notifier = (*mockNotifier)(nil)

func intPtr(v int) *int {
	return &v
}

func hourlyTask() *models.Task {
	return &models.Task{
		ID:              uuid.New(),
		Owner:           "alice",
		Name:            "stretch",
		Timezone:        "UTC",
		RecurrenceRule:  "DTSTART:20240301T000000Z RRULE:FREQ=HOURLY",
		ReminderSetting: &models.ReminderSetting{Before: intPtr(10)},
	}
}

func oneTimeTask(date, clock string) *models.Task {
	return &models.Task{
		ID:              uuid.New(),
		Owner:           "bob",
		Name:            "dentist",
		DueDate:         date,
		DueTime:         clock,
		Timezone:        "UTC",
		ReminderSetting: &models.ReminderSetting{UseDefault: true},
	}
}
