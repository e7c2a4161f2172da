package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	logpkg "github.com/benvon/smart-journal/internal/logger"
	"github.com/benvon/smart-journal/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

// DefaultRate is the ulule formatted rate used when none is configured
const DefaultRate = "5-S"

const rateLimitPrefix = "journal_ratelimit"

// RedisRateLimiter owns the Redis connection backing the rate limiter
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter connects to redisURL and verifies the connection
func NewRedisRateLimiter(redisURL string) (*RedisRateLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisRateLimiter{client: client}, nil
}

// Client exposes the Redis client so reminder deduplication can share the connection
func (r *RedisRateLimiter) Client() *redis.Client {
	return r.client
}

// Close closes the Redis connection
func (r *RedisRateLimiter) Close() error {
	return r.client.Close()
}

// Ping checks if Redis is reachable
func (r *RedisRateLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// RateLimit limits requests per client IP at rate, a ulule formatted string such as
// "5-S" or "1000-H". Store failures are logged and answered with 500.
func RateLimit(client *redis.Client, rate string, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: rateLimitPrefix})
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit store: %w", err)
	}
	return rateLimitWithStore(store, rate, logger)
}

func rateLimitWithStore(store limiter.Store, rate string, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	if rate == "" {
		rate = DefaultRate
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	instance := limiter.New(store, parsed)
	mw := stdlibmw.NewMiddleware(instance,
		stdlibmw.WithKeyGetter(request.ClientIP),
		stdlibmw.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("rate_limit_store_failed",
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.Error(err),
			)
			respondErrorJSON(w, r, http.StatusInternalServerError, "Internal Server Error", "rate limiter unavailable", logger)
		}),
		stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			respondErrorJSON(w, r, http.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded", logger)
		}),
	)
	return mw.Handler, nil
}
