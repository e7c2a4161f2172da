package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/benvon/smart-journal/internal/config"
	"github.com/benvon/smart-journal/internal/database"
	"github.com/benvon/smart-journal/internal/logger"
	"github.com/benvon/smart-journal/internal/middleware"
	"github.com/benvon/smart-journal/internal/queue"
	"github.com/benvon/smart-journal/internal/reminder"
	"github.com/benvon/smart-journal/internal/schedule"
	"github.com/benvon/smart-journal/internal/telemetry"
	"github.com/benvon/smart-journal/internal/workers"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const (
	maxQueueRetries   = 10
	initialRetryDelay = 2 * time.Second
	maxRetryDelay     = 30 * time.Second

	dlqInterval  = time.Hour
	dlqRetention = 24 * time.Hour
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.LoadWorker()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("reminder_cron", cfg.ReminderCron),
		zap.Duration("reminder_horizon", cfg.ReminderHorizon),
		zap.Duration("reminder_grace", cfg.ReminderGrace),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	expanderOpts := []schedule.Option{schedule.WithLogger(zapLogger)}
	if cfg.OTELEnabled && cfg.OTELEndpoint != "" {
		tp, err := telemetry.InitTracer(ctx, telemetry.ServiceWorker, cfg.OTELEndpoint)
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			expanderOpts = append(expanderOpts, schedule.WithTracer(otel.Tracer(telemetry.ServiceWorker)))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	redisConn, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisConn.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	dedup := reminder.NewRedisDedupStore(redisConn.Client())
	zapLogger.Info("connected_to_redis")

	jobQueue, err := connectQueue(ctx, cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
			zap.Int("max_retries", maxQueueRetries),
			zap.Error(err),
		)
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	taskRepo := database.NewTaskRepository(db)
	taskRepo.SetLogger(zapLogger)
	expander := schedule.NewExpander(expanderOpts...)

	scheduler := workers.NewReminderScheduler(taskRepo, expander, dedup, jobQueue, cfg.ReminderHorizon, cfg.ReminderGrace, zapLogger)
	dispatcher := workers.NewReminderDispatcher(taskRepo, expander, workers.NewLogNotifier(zapLogger), jobQueue, zapLogger)
	dlqGC := queue.NewGarbageCollector(jobQueue, dlqInterval, dlqRetention, zapLogger)

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := scheduler.Start(ctx, cfg.ReminderCron); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("reminder_scheduler_stopped_with_error", zap.Error(err))
			stop()
		}
	}()
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx, msgChan, errChan)
	}()
	go func() {
		defer wg.Done()
		if err := dlqGC.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
		}
	}()

	zapLogger.Info("worker_started")
	<-ctx.Done()
	zapLogger.Info("worker_shutting_down")
	wg.Wait()
	zapLogger.Info("worker_stopped")
}

// connectQueue dials RabbitMQ with exponential backoff to ride out broker startup
func connectQueue(ctx context.Context, url string, logger *zap.Logger) (*queue.RabbitMQQueue, error) {
	var lastErr error
	for attempt := 0; attempt < maxQueueRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(url, logger)
		if err == nil {
			logger.Info("connected_to_rabbitmq")
			return q, nil
		}
		lastErr = err

		delay := min(initialRetryDelay*time.Duration(1<<uint(attempt)), maxRetryDelay)
		logger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxQueueRetries),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}
