package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// DefaultQueueName is the default queue name
	DefaultQueueName = "journal_reminder_jobs"
	// DefaultDLQName is the default dead letter queue name
	DefaultDLQName = "journal_reminder_jobs_dlq"
	// DefaultExchangeName is the default exchange name
	DefaultExchangeName = "journal_jobs"
	// DefaultDelayedExchangeName is the default delayed exchange name (requires plugin)
	DefaultDelayedExchangeName = "journal_jobs_delayed"

	jobsRoutingKey = "jobs"
	dlqRoutingKey  = "dlq"
)

// ErrQueueClosed is returned by HealthCheck when the connection or channel is gone
var ErrQueueClosed = errors.New("queue connection closed")

// RabbitMQQueue implements JobQueue and DLQPurger using RabbitMQ
type RabbitMQQueue struct {
	conn                *amqp.Connection
	channel             *amqp.Channel
	queueName           string
	dlqName             string
	exchangeName        string
	delayedExchangeName string
	delayed             bool
	logger              *zap.Logger
}

var (
	_ JobQueue  = (*RabbitMQQueue)(nil)
	_ DLQPurger = (*RabbitMQQueue)(nil)
)

// NewRabbitMQQueue creates a new RabbitMQ queue
func NewRabbitMQQueue(amqpURL string, logger *zap.Logger) (*RabbitMQQueue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queue := &RabbitMQQueue{
		conn:                conn,
		channel:             ch,
		queueName:           DefaultQueueName,
		dlqName:             DefaultDLQName,
		exchangeName:        DefaultExchangeName,
		delayedExchangeName: DefaultDelayedExchangeName,
		logger:              logger,
	}

	if err := queue.setup(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup queues: %w", err)
	}

	return queue, nil
}

// setup configures exchanges and queues
func (q *RabbitMQQueue) setup() error {
	// Delayed exchange requires the rabbitmq_delayed_message_exchange plugin
	err := q.channel.ExchangeDeclare(
		q.delayedExchangeName,
		"x-delayed-message",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		amqp.Table{"x-delayed-type": "direct"},
	)
	if err != nil {
		// A failed declare closes the channel
		if q.channel.IsClosed() {
			newCh, openErr := q.conn.Channel()
			if openErr != nil {
				return fmt.Errorf("failed to reopen channel after delayed exchange error: %w", openErr)
			}
			q.channel = newCh
		}
		q.logger.Warn("delayed_exchange_unavailable", zap.Error(err))
	} else {
		q.delayed = true
	}

	err = q.channel.ExchangeDeclare(q.exchangeName, "direct", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if _, err = q.channel.QueueDeclare(q.dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}
	if err = q.channel.QueueBind(q.dlqName, dlqRoutingKey, q.exchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	queueArgs := amqp.Table{
		"x-dead-letter-exchange":    q.exchangeName,
		"x-dead-letter-routing-key": dlqRoutingKey,
	}
	if _, err = q.channel.QueueDeclare(q.queueName, true, false, false, false, queueArgs); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err = q.channel.QueueBind(q.queueName, jobsRoutingKey, q.exchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue to exchange: %w", err)
	}

	if q.delayed {
		if err = q.channel.QueueBind(q.queueName, jobsRoutingKey, q.delayedExchangeName, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue to delayed exchange: %w", err)
		}
	}

	return nil
}

// Enqueue adds a job to the queue
func (q *RabbitMQQueue) Enqueue(ctx context.Context, job *Job) error {
	exchange, publishing, err := buildPublishing(job, time.Now(), q.exchangeName, q.delayedExchangeName, q.delayed)
	if err != nil {
		return err
	}

	if err := q.channel.PublishWithContext(ctx, exchange, jobsRoutingKey, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	q.logger.Debug("job_enqueued",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.String("exchange", exchange),
	)
	return nil
}

// buildPublishing encodes job and picks the exchange: the delayed exchange when NotBefore
// is still ahead of now and the plugin is present, the direct exchange otherwise
func buildPublishing(job *Job, now time.Time, exchange, delayedExchange string, delayed bool) (string, amqp.Publishing, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return "", amqp.Publishing{}, fmt.Errorf("failed to marshal job: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID.String(),
		Timestamp:    job.CreatedAt,
	}

	target := exchange
	var delay time.Duration
	if job.NotBefore != nil {
		delay = job.NotBefore.Sub(now)
	}
	if delay > 0 && delayed {
		target = delayedExchange
		publishing.Headers = amqp.Table{"x-delay": delay.Milliseconds()}
	}

	// Per-message TTL counts from the moment the message enters a queue. The delayed
	// exchange holds it until NotBefore, so the TTL only covers the grace period.
	if job.NotAfter != nil {
		ttl := job.NotAfter.Sub(now)
		if target == delayedExchange {
			ttl -= delay
		}
		if ttl > 0 {
			publishing.Expiration = strconv.FormatInt(ttl.Milliseconds(), 10)
		}
	}

	return target, publishing, nil
}

// deliveryAction is what Consume does with a raw delivery
type deliveryAction int

const (
	deliverMessage deliveryAction = iota
	deadLetter
	requeue
)

// classifyDelivery decodes a delivery body and decides whether to hand it to the consumer
func classifyDelivery(body []byte) (*Job, deliveryAction, error) {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, deadLetter, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	if job.IsExpired() {
		return &job, deadLetter, nil
	}
	if !job.ShouldProcess() {
		return &job, requeue, nil
	}
	return &job, deliverMessage, nil
}

// Consume returns a channel of messages from the queue using async delivery
func (q *RabbitMQQueue) Consume(ctx context.Context, prefetchCount int) (<-chan MessageInterface, <-chan error, error) {
	// Separate channel for consumers
	consumeCh, err := q.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create consumer channel: %w", err)
	}

	if err := consumeCh.Qos(prefetchCount, 0, false); err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := consumeCh.Consume(
		q.queueName,
		"",    // consumer tag (empty = auto-generate)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	msgChan := make(chan MessageInterface, prefetchCount)
	errChan := make(chan error, 1)

	go func() {
		defer close(msgChan)
		defer close(errChan)
		defer func() {
			if err := consumeCh.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
				q.logger.Warn("failed_to_close_consumer_channel", zap.Error(err))
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					errChan <- fmt.Errorf("delivery channel closed")
					return
				}

				job, action, err := classifyDelivery(delivery.Body)
				switch action {
				case deadLetter:
					if err != nil {
						q.logger.Warn("dropping_undecodable_job", zap.Error(err))
					} else {
						q.logger.Info("dropping_expired_job", zap.String("job_id", job.ID.String()))
					}
					_ = delivery.Nack(false, false)
					continue
				case requeue:
					_ = delivery.Nack(false, true)
					continue
				}

				msg := &Message{
					Job:         job,
					DeliveryTag: delivery.DeliveryTag,
					Channel:     consumeCh,
				}

				select {
				case <-ctx.Done():
					_ = delivery.Nack(false, true)
					return
				case msgChan <- msg:
				}
			}
		}
	}()

	return msgChan, errChan, nil
}

// PurgeOlderThan acknowledges (removes) DLQ messages published more than retention ago.
// Younger messages are returned to the DLQ.
func (q *RabbitMQQueue) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	ch, err := q.conn.Channel()
	if err != nil {
		return 0, fmt.Errorf("failed to open purge channel: %w", err)
	}
	defer func() {
		if err := ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			q.logger.Warn("failed_to_close_purge_channel", zap.Error(err))
		}
	}()

	info, err := ch.QueueDeclarePassive(q.dlqName, true, false, false, false, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect DLQ: %w", err)
	}

	cutoff := time.Now().Add(-retention)
	purged := 0
	var kept []uint64
	for i := 0; i < info.Messages; i++ {
		if ctx.Err() != nil {
			break
		}
		msg, ok, err := ch.Get(q.dlqName, false)
		if err != nil {
			return purged, fmt.Errorf("failed to read DLQ: %w", err)
		}
		if !ok {
			break
		}
		if !msg.Timestamp.IsZero() && msg.Timestamp.Before(cutoff) {
			if err := msg.Ack(false); err != nil {
				return purged, fmt.Errorf("failed to ack DLQ message: %w", err)
			}
			purged++
			continue
		}
		kept = append(kept, msg.DeliveryTag)
	}

	for _, tag := range kept {
		if err := ch.Nack(tag, false, true); err != nil {
			return purged, fmt.Errorf("failed to return DLQ message: %w", err)
		}
	}

	return purged, ctx.Err()
}

// HealthCheck verifies the queue connection is healthy
func (q *RabbitMQQueue) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if q.conn == nil || q.conn.IsClosed() {
		return ErrQueueClosed
	}
	if q.channel == nil || q.channel.IsClosed() {
		return ErrQueueClosed
	}
	return nil
}

// Close closes the queue connection
func (q *RabbitMQQueue) Close() error {
	var err error
	if q.channel != nil {
		err = q.channel.Close()
	}
	if q.conn != nil {
		if closeErr := q.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
