package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jwalitptl/patient-registry/internal/repository"
	"github.com/jwalitptl/patient-registry/pkg/metrics"
)

// OutboxCleanupWorker purges processed events once they are older than the
// retention period. Failed events are kept for inspection.
type OutboxCleanupWorker struct {
	repo      repository.OutboxRepository
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retention, interval time.Duration, logger *zap.Logger, metrics *metrics.Metrics) *OutboxCleanupWorker {
	return &OutboxCleanupWorker{
		repo:      repo,
		retention: retention,
		interval:  interval,
		logger:    logger.Named("outbox_cleanup"),
		metrics:   metrics,
		now:       time.Now,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	RunEvery(ctx, w.interval, func(ctx context.Context) {
		if _, err := w.Cleanup(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("failed to clean up outbox events", zap.Error(err))
		}
	})
}

func (w *OutboxCleanupWorker) Cleanup(ctx context.Context) (int64, error) {
	cutoff := w.now().Add(-w.retention)

	rows, err := w.repo.DeleteProcessedBefore(ctx, cutoff)
	w.metrics.ObserveDB("delete_processed", err)
	if err != nil {
		return 0, err
	}

	w.metrics.OutboxEventsPurged.Add(float64(rows))
	if rows > 0 {
		w.logger.Info("purged processed outbox events", zap.Int64("rows", rows), zap.Time("before", cutoff))
	}
	return rows, nil
}
