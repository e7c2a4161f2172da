package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	keys   map[string]time.Duration
	setErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{keys: make(map[string]time.Duration)}
}

func (f *fakeRedis) SetNX(_ context.Context, key string, _ any, expiration time.Duration) *redis.BoolCmd {
	if f.setErr != nil {
		return redis.NewBoolResult(false, f.setErr)
	}
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			delete(f.keys, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

var _ redisClient = (*fakeRedis)(nil)

func TestRedisDedupStore_Claim(t *testing.T) {
	client := newFakeRedis()
	store := NewRedisDedupStore(client)
	rec := models.ReminderRecord{TaskID: uuid.New(), Instant: 1718000000000}

	claimed, err := store.Claim(context.Background(), rec, time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, time.Hour, client.keys[store.Key(rec)])

	claimed, err = store.Claim(context.Background(), rec, time.Hour)
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, store.Release(context.Background(), rec))
	claimed, err = store.Claim(context.Background(), rec, time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestRedisDedupStore_Key(t *testing.T) {
	id := uuid.MustParse("7f1c1c52-2f0e-4a55-9a36-8f0d4b8c2a11")
	store := NewRedisDedupStore(newFakeRedis())

	assert.Equal(t, "reminder:7f1c1c52-2f0e-4a55-9a36-8f0d4b8c2a11:1718000000000",
		store.Key(models.ReminderRecord{TaskID: id, Instant: 1718000000000}))
}

func TestRedisDedupStore_ClaimError(t *testing.T) {
	client := newFakeRedis()
	client.setErr = errors.New("connection refused")
	store := NewRedisDedupStore(client)

	claimed, err := store.Claim(context.Background(), models.ReminderRecord{TaskID: uuid.New()}, time.Minute)
	assert.Error(t, err)
	assert.False(t, claimed)
}
