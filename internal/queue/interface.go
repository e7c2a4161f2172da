package queue

import (
	"context"
	"time"
)

// MessageInterface defines the interface for queue messages
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue is the interface for job queues
type JobQueue interface {
	// Enqueue adds a job to the queue. Jobs with a future NotBefore are delayed.
	Enqueue(ctx context.Context, job *Job) error

	// Consume returns a channel of messages from the queue.
	// The caller is responsible for acknowledging each message.
	// Both channels are closed when ctx is cancelled or the delivery channel is lost.
	Consume(ctx context.Context, prefetchCount int) (<-chan MessageInterface, <-chan error, error)

	// Close closes the queue connection
	Close() error

	// HealthCheck verifies the queue connection is healthy
	HealthCheck(ctx context.Context) error
}

// DLQPurger removes dead-lettered messages older than retention and reports how many were removed
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
