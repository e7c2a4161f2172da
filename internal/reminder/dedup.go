package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "reminder"

// DedupStore remembers which reminder records have already been scheduled
type DedupStore interface {
	// Claim marks rec as scheduled for ttl and reports whether this call claimed it
	Claim(ctx context.Context, rec models.ReminderRecord, ttl time.Duration) (bool, error)
	// Release forgets rec so that it can be claimed again
	Release(ctx context.Context, rec models.ReminderRecord) error
}

// redisClient is the subset of the go-redis client used by RedisDedupStore
type redisClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisDedupStore implements DedupStore with SETNX keys that expire after the reminder
type RedisDedupStore struct {
	client redisClient
	prefix string
}

// NewRedisDedupStore creates a dedup store on top of a go-redis client
func NewRedisDedupStore(client redisClient) *RedisDedupStore {
	return &RedisDedupStore{client: client, prefix: defaultKeyPrefix}
}

// Key returns the Redis key of a reminder record
func (s *RedisDedupStore) Key(rec models.ReminderRecord) string {
	return fmt.Sprintf("%s:%s:%d", s.prefix, rec.TaskID, rec.Instant)
}

// Claim implements DedupStore
func (s *RedisDedupStore) Claim(ctx context.Context, rec models.ReminderRecord, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.Key(rec), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder %s: %w", s.Key(rec), err)
	}
	return ok, nil
}

// Release implements DedupStore
func (s *RedisDedupStore) Release(ctx context.Context, rec models.ReminderRecord) error {
	if err := s.client.Del(ctx, s.Key(rec)).Err(); err != nil {
		return fmt.Errorf("failed to release reminder %s: %w", s.Key(rec), err)
	}
	return nil
}

var _ DedupStore = (*RedisDedupStore)(nil)
