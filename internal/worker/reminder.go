package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/patient-registry/internal/config"
	"github.com/jwalitptl/patient-registry/internal/email"
	"github.com/jwalitptl/patient-registry/internal/repository"
	"github.com/jwalitptl/patient-registry/pkg/metrics"
	pkgworker "github.com/jwalitptl/patient-registry/pkg/worker"
)

// ReminderJob emails patients whose next follow-up visit falls within the
// lead window and stamps each follow-up so the reminder goes out once.
type ReminderJob struct {
	repo    repository.FollowUpRepository
	mailer  email.Service
	limiter *rate.Limiter
	config  config.ReminderConfig
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewReminderJob(repo repository.FollowUpRepository, mailer email.Service, cfg config.ReminderConfig, logger *zap.Logger, m *metrics.Metrics) *ReminderJob {
	limit := rate.Inf
	if cfg.RatePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RatePerMinute))
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	return &ReminderJob{
		repo:    repo,
		mailer:  mailer,
		limiter: rate.NewLimiter(limit, 1),
		config:  cfg,
		logger:  logger.Named("reminder"),
		metrics: m,
		now:     time.Now,
	}
}

func (j *ReminderJob) Start(ctx context.Context) {
	j.logger.Info("starting follow-up reminders",
		zap.Duration("interval", j.config.Interval),
		zap.Int("lead_days", j.config.LeadDays))

	pkgworker.RunEvery(ctx, j.config.Interval, func(ctx context.Context) {
		if _, err := j.Run(ctx); err != nil && ctx.Err() == nil {
			j.logger.Error("reminder run failed", zap.Error(err))
		}
	})
}

// Run sends every due reminder once and returns how many were sent. A failed
// send is logged and left unstamped so the next run retries it.
func (j *ReminderJob) Run(ctx context.Context) (int, error) {
	now := j.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, j.config.LeadDays)

	due, err := j.repo.ListDueReminders(ctx, from, to, j.config.BatchSize)
	j.metrics.ObserveDB("list_due_reminders", err)
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	sent := 0
	for _, r := range due {
		if err := j.limiter.Wait(ctx); err != nil {
			return sent, err
		}

		err := j.mailer.SendFollowUpReminder(ctx, email.Reminder{
			To:          r.PatientEmail,
			PatientName: r.PatientName,
			PatientCode: r.PatientCode,
			VisitDate:   r.NextFollowUpDate,
		})
		if err != nil {
			j.metrics.RemindersFailed.Inc()
			j.logger.Warn("failed to send reminder",
				zap.String("follow_up_id", r.FollowUpID.String()),
				zap.String("patient_code", r.PatientCode),
				zap.Error(err))
			continue
		}

		err = j.repo.MarkReminderSent(ctx, r.FollowUpID, j.now().UTC())
		j.metrics.ObserveDB("mark_reminder_sent", err)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return sent, fmt.Errorf("failed to mark reminder sent: %w", err)
		}

		j.metrics.RemindersSent.Inc()
		sent++
	}

	if sent > 0 {
		j.logger.Info("follow-up reminders sent", zap.Int("count", sent))
	}
	return sent, nil
}
