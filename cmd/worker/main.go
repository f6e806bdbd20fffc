package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jwalitptl/patient-registry/internal/config"
	"github.com/jwalitptl/patient-registry/internal/email"
	"github.com/jwalitptl/patient-registry/internal/repository/postgres"
	reminder "github.com/jwalitptl/patient-registry/internal/worker"
	"github.com/jwalitptl/patient-registry/pkg/messaging"
	"github.com/jwalitptl/patient-registry/pkg/messaging/redis"
	"github.com/jwalitptl/patient-registry/pkg/metrics"
	"github.com/jwalitptl/patient-registry/pkg/worker"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "worker",
		Short:         "Outbox relay and follow-up reminder worker",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "worker failed: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.App.IsDevelopment() {
		zc = zap.NewDevelopmentConfig()
	}
	if level, err := zap.ParseAtomicLevel(cfg.Log.Level); err == nil {
		zc.Level = level
	}
	return zc.Build()
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, "patient_registry_worker")

	broker, brokerPing, err := newBroker(ctx, cfg.Redis, logger, m)
	if err != nil {
		return err
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)

	processor, err := worker.NewOutboxProcessor(
		outboxRepo,
		messaging.NewJSONPublisher(broker),
		worker.OutboxProcessorConfig{
			Channel:      cfg.Redis.Channel,
			BatchSize:    cfg.Outbox.BatchSize,
			PollInterval: cfg.Outbox.PollInterval,
			MaxAttempts:  cfg.Outbox.MaxAttempts,
			RetryDelay:   cfg.Outbox.RetryDelay,
			StaleAfter:   cfg.Outbox.StaleAfter,
		},
		logger,
		m,
	)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	start := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
		}()
	}

	start(processor.Start)
	start(worker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.Retention, time.Hour, logger, m).Start)

	if cfg.SMTP.Enabled() {
		job := reminder.NewReminderJob(postgres.NewFollowUpRepository(base), email.NewSMTPService(cfg.SMTP, logger), cfg.Reminder, logger, m)
		start(job.Start)
	} else {
		logger.Info("smtp host not configured, follow-up reminders disabled")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
		Handler:           opsMux(reg, db, brokerPing),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics and health", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	wg.Wait()

	logger.Info("worker stopped")
	return nil
}

// newBroker connects to Redis, or falls back to an in-process broker when no
// URL is configured.
func newBroker(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger, m *metrics.Metrics) (messaging.Broker, func(context.Context) error, error) {
	if cfg.URL == "" {
		logger.Warn("redis url not configured, events are relayed in-process only")
		return messaging.NewMemoryBroker(), nil, nil
	}

	b, err := redis.NewRedisBroker(ctx, redis.DefaultConfig(cfg.URL), logger, func(s gobreaker.State) {
		m.BrokerState.Set(float64(s))
	})
	if err != nil {
		return nil, nil, err
	}
	return b, b.Ping, nil
}

type pinger interface {
	PingContext(ctx context.Context) error
}

func opsMux(reg *prometheus.Registry, db pinger, brokerPing func(context.Context) error) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
		}
		if brokerPing != nil {
			if err := brokerPing(ctx); err != nil {
				status = http.StatusServiceUnavailable
			}
		}
		w.WriteHeader(status)
	})
	return mux
}
