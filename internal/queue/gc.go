package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// defaultSweepTimeout bounds a single pass over the dead letter queue
const defaultSweepTimeout = 2 * time.Minute

// GarbageCollector drops dead-lettered reminder jobs once they are older than retention.
// A reminder that missed its delivery window is never retried, so its dead letter only
// serves inspection until it ages out.
type GarbageCollector struct {
	purger       DLQPurger
	interval     time.Duration
	retention    time.Duration
	sweepTimeout time.Duration
	logger       *zap.Logger
}

// NewGarbageCollector creates a collector sweeping every interval
func NewGarbageCollector(purger DLQPurger, interval, retention time.Duration, logger *zap.Logger) *GarbageCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GarbageCollector{
		purger:       purger,
		interval:     interval,
		retention:    retention,
		sweepTimeout: defaultSweepTimeout,
		logger:       logger,
	}
}

// Start sweeps once immediately, then on every tick until ctx is cancelled
func (gc *GarbageCollector) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	gc.sweep(ctx)

	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			gc.sweep(ctx)
		}
	}
}

func (gc *GarbageCollector) sweep(ctx context.Context) {
	if err := gc.collect(ctx); err != nil {
		gc.logger.Error("dlq_gc_failed", zap.Error(err))
	}
}

func (gc *GarbageCollector) collect(ctx context.Context) error {
	if gc.purger == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, gc.sweepTimeout)
	defer cancel()

	purged, err := gc.purger.PurgeOlderThan(ctx, gc.retention)
	if err != nil {
		return fmt.Errorf("failed to purge expired reminder jobs after %d removals: %w", purged, err)
	}
	if purged > 0 {
		gc.logger.Info("dlq_gc_purged",
			zap.Int("count", purged),
			zap.Duration("retention", gc.retention),
		)
	}
	return nil
}
