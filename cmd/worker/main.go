package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/iacol-backend/internal/cron"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/internal/tasks"
	"github.com/angelmondragon/iacol-backend/pkg/config"
	"github.com/angelmondragon/iacol-backend/pkg/db"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/mailer"
	"github.com/angelmondragon/iacol-backend/pkg/metrics"
	"github.com/angelmondragon/iacol-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "worker stopped", err)
		os.Exit(1)
	}
	logg.Info(ctx, "worker shut down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	taskMetrics := metrics.NewTaskMetrics(prometheus.DefaultRegisterer)

	worker, err := tasks.NewWorker(tasks.WorkerParams{
		Store:       redisClient,
		Queue:       cfg.Tasks.QueueKey,
		Concurrency: cfg.Tasks.Concurrency,
		PollTimeout: cfg.Tasks.PollTimeout,
		TaskTimeout: cfg.Tasks.HeavyTimeout,
		Logger:      logg,
		Metrics:     taskMetrics,
	})
	if err != nil {
		return err
	}
	registerHandlers(ctx, worker, cfg, logg)

	scheduler, closeDB, err := newScheduler(ctx, cfg, logg, redisClient, taskMetrics)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeDB()) }()

	logg.Info(logg.WithFields(ctx, map[string]any{
		"queue":       cfg.Tasks.QueueKey,
		"concurrency": cfg.Tasks.Concurrency,
	}), "starting worker")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		schedErr error
	)
	if cfg.Tasks.MetricsAddr != "" {
		srv := metricsServer(cfg.Tasks.MetricsAddr, prometheus.DefaultGatherer)
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveMetrics(ctx, srv, logg)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			schedErr = err
		}
	}()

	runErr := worker.Run(ctx)
	cancel()
	wg.Wait()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return multierr.Append(runErr, schedErr)
	}
	return schedErr
}

// registerHandlers binds every task type. Without SMTP settings the mailer
// logs messages instead of sending them.
func registerHandlers(ctx context.Context, worker *tasks.Worker, cfg *config.Config, logg *logger.Logger) {
	if !cfg.Mail.Enabled() {
		logg.Warn(ctx, "smtp is not configured; emails will be logged only")
	}
	worker.Register(enums.TaskTypeSendEmail, tasks.EmailHandler(mailer.New(cfg.Mail, logg)))
	worker.Register(enums.TaskTypeHeavyProcessing, tasks.HeavyProcessingHandler(logg))
}

func metricsServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// serveMetrics runs srv until ctx ends. A listener failure is logged and does
// not stop the worker.
func serveMetrics(ctx context.Context, srv *http.Server, logg *logger.Logger) {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logg.Info(logg.WithFields(ctx, map[string]any{"addr": srv.Addr}), "metrics listener started")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics listener failed", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "metrics listener shutdown", err)
		}
	}
}

// newScheduler wires the maintenance jobs. The returned func closes the
// database handle they share.
func newScheduler(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, taskMetrics *metrics.TaskMetrics) (*cron.Service, func() error, error) {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return nil, nil, err
	}
	fail := func(err error) (*cron.Service, func() error, error) {
		return nil, nil, multierr.Append(err, dbClient.Close())
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.CacheKey("schedule", "lock"), cfg.Tasks.ScheduleLockTTL)
	if err != nil {
		return fail(err)
	}
	expiry, err := cron.NewSubscriptionExpiryJob(entitlements.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return fail(err)
	}
	scheduler, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Jobs:     []cron.Job{expiry},
		Lock:     lock,
		Interval: cfg.Tasks.ScheduleInterval,
		Metrics:  taskMetrics,
	})
	if err != nil {
		return fail(err)
	}
	return scheduler, dbClient.Close, nil
}
