package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
	"github.com/jwalitptl/patient-registry/pkg/messaging"
	"github.com/jwalitptl/patient-registry/pkg/metrics"
)

type OutboxProcessorConfig struct {
	Channel      string
	BatchSize    int
	PollInterval time.Duration
	MaxAttempts  int
	RetryDelay   time.Duration
	// StaleAfter reclaims events left in PROCESSING by a relay that died.
	StaleAfter time.Duration
}

func (c OutboxProcessorConfig) validate() error {
	switch {
	case c.Channel == "":
		return errors.New("channel is required")
	case c.BatchSize <= 0:
		return errors.New("batch size must be greater than 0")
	case c.PollInterval <= 0:
		return errors.New("poll interval must be greater than 0")
	case c.MaxAttempts <= 0:
		return errors.New("max attempts must be greater than 0")
	case c.RetryDelay <= 0:
		return errors.New("retry delay must be greater than 0")
	case c.StaleAfter <= 0:
		return errors.New("stale after must be greater than 0")
	}
	return nil
}

// OutboxProcessor relays committed outbox events to the message broker.
// Delivery is at least once: an event is marked processed only after a
// successful publish.
type OutboxProcessor struct {
	repo      repository.OutboxRepository
	publisher messaging.Publisher
	config    OutboxProcessorConfig
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	publisher messaging.Publisher,
	config OutboxProcessorConfig,
	logger *zap.Logger,
	metrics *metrics.Metrics,
) (*OutboxProcessor, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid outbox processor config: %w", err)
	}

	return &OutboxProcessor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger.Named("outbox"),
		metrics:   metrics,
		now:       time.Now,
	}, nil
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	p.logger.Info("starting outbox processor",
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Int("batch_size", p.config.BatchSize))

	RunEvery(ctx, p.config.PollInterval, func(ctx context.Context) {
		for {
			n, err := p.ProcessBatch(ctx)
			if err != nil {
				if ctx.Err() == nil {
					p.logger.Error("failed to process events", zap.Error(err))
				}
				return
			}
			// Keep draining while batches come back full.
			if n < p.config.BatchSize || ctx.Err() != nil {
				return
			}
		}
	})

	p.logger.Info("outbox processor stopped")
}

// ProcessBatch claims one batch and publishes it. It returns the number of
// events claimed.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.ClaimPending(ctx, p.config.BatchSize, p.config.StaleAfter)
	p.metrics.ObserveDB("claim_pending", err)
	if err != nil {
		return 0, fmt.Errorf("failed to claim pending events: %w", err)
	}
	p.metrics.OutboxBatchSize.Set(float64(len(events)))

	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error("failed to update event status",
				zap.String("event_id", event.ID.String()),
				zap.String("event_type", event.EventType),
				zap.Error(err))
		}
	}

	return len(events), nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	publishErr := p.publisher.Publish(ctx, p.config.Channel, event.Message())
	if publishErr == nil {
		p.metrics.OutboxEventsProcessed.Inc()
		p.metrics.OutboxEventLag.WithLabelValues(event.EventType).Observe(p.now().Sub(event.CreatedAt).Seconds())

		err := p.repo.MarkProcessed(ctx, event.ID)
		p.metrics.ObserveDB("mark_processed", err)
		return err
	}

	p.metrics.OutboxEventsFailed.Inc()
	attempts := event.Attempts + 1

	var retryAt *time.Time
	if attempts < p.config.MaxAttempts {
		next := p.now().Add(time.Duration(attempts) * p.config.RetryDelay)
		retryAt = &next
		p.logger.Warn("publish failed, scheduling retry",
			zap.String("event_id", event.ID.String()),
			zap.String("event_type", event.EventType),
			zap.Int("attempt", attempts),
			zap.Time("retry_at", next),
			zap.Error(publishErr))
	} else {
		p.metrics.OutboxEventsAbandoned.Inc()
		p.logger.Error("publish failed, giving up",
			zap.String("event_id", event.ID.String()),
			zap.String("event_type", event.EventType),
			zap.Int("attempts", attempts),
			zap.Error(publishErr))
	}

	err := p.repo.MarkFailed(ctx, event.ID, publishErr.Error(), retryAt)
	p.metrics.ObserveDB("mark_failed", err)
	return err
}
