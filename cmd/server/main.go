package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/smart-journal/internal/config"
	"github.com/benvon/smart-journal/internal/database"
	"github.com/benvon/smart-journal/internal/handlers"
	"github.com/benvon/smart-journal/internal/logger"
	"github.com/benvon/smart-journal/internal/middleware"
	"github.com/benvon/smart-journal/internal/queue"
	"github.com/benvon/smart-journal/internal/schedule"
	"github.com/benvon/smart-journal/internal/telemetry"
	"github.com/gorilla/mux"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	migrateFlag := flag.Bool("migrate", false, "Create missing tables before serving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("default_timezone", cfg.DefaultTimezone),
		zap.Int("expansion_workers", cfg.ExpansionWorkers),
		zap.Duration("max_expansion_window", cfg.MaxExpansionWindow),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	var tracerProvider *sdktrace.TracerProvider
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else if tp, err := telemetry.InitTracer(context.Background(), telemetry.ServiceAPI, cfg.OTELEndpoint); err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			tracerProvider = tp
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := telemetry.Shutdown(shutdownCtx, tracerProvider); err != nil {
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

	if *migrateFlag {
		if err := db.Migrate(context.Background()); err != nil {
			zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
		}
		zapLogger.Info("database_migrated")
	}

	redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisLimiter.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	rateLimitMW, err := middleware.RateLimit(redisLimiter.Client(), cfg.RateLimit, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.String("rate", cfg.RateLimit), zap.Error(err))
	}

	healthChecker := handlers.NewHealthChecker(zapLogger).
		AddCheck("database", db.PingContext).
		AddCheck("redis", redisLimiter.Ping)

	// The API does not publish jobs; the queue is only probed so /healthz reflects the worker path.
	if cfg.RabbitMQURL != "" {
		jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Warn("failed_to_connect_to_rabbitmq", zap.Error(err))
		} else {
			defer func() {
				if err := jobQueue.Close(); err != nil {
					zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
				}
			}()
			healthChecker.AddCheck("rabbitmq", jobQueue.HealthCheck)
			zapLogger.Info("connected_to_rabbitmq")
		}
	}

	taskRepo := database.NewTaskRepository(db)
	taskRepo.SetLogger(zapLogger)
	txnRepo := database.NewTransactionRepository(db)
	txnRepo.SetLogger(zapLogger)

	expander := schedule.NewExpander(schedule.WithLogger(zapLogger))
	occurrenceHandler := handlers.NewOccurrenceHandler(taskRepo, txnRepo, expander, zapLogger,
		handlers.WithDefaultTimezone(cfg.DefaultTimezone),
		handlers.WithExpansionWorkers(cfg.ExpansionWorkers),
		handlers.WithMaxWindow(cfg.MaxExpansionWindow),
	)
	expandHandler := handlers.NewExpandHandler(expander, zapLogger, cfg.ExpansionWorkers, cfg.MaxExpansionWindow)

	r := mux.NewRouter()
	if tracerProvider != nil {
		r.Use(telemetry.RouterMiddleware(telemetry.ServiceAPI))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.RequireJSON(zapLogger))
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", handlers.VersionInfo).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	handlers.NewOpenAPIHandler().RegisterRoutes(apiRouter)

	limited := apiRouter.PathPrefix("").Subrouter()
	limited.Use(rateLimitMW)
	expandHandler.RegisterRoutes(limited)
	occurrenceHandler.RegisterRoutes(limited.PathPrefix("/users/{owner}").Subrouter())

	// Preflight requests are answered by the CORS middleware; this keeps mux from returning 405.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		zapLogger.Info("server_listening", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}
	zapLogger.Info("server_exited")
}
