package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jwalitptl/patient-registry/internal/config"
	"github.com/jwalitptl/patient-registry/internal/email"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
	"github.com/jwalitptl/patient-registry/internal/repository/mocks"
	"github.com/jwalitptl/patient-registry/pkg/metrics"
)

type fakeMailer struct {
	fail map[string]bool
	sent []email.Reminder
}

func (m *fakeMailer) SendFollowUpReminder(ctx context.Context, r email.Reminder) error {
	if m.fail[r.To] {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, r)
	return nil
}

var now = time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)

func newJob(repo *mocks.FollowUpRepository, mailer email.Service) (*ReminderJob, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry(), "test")
	j := NewReminderJob(repo, mailer, config.ReminderConfig{
		Interval:  time.Hour,
		LeadDays:  3,
		BatchSize: 50,
	}, zap.NewNop(), m)
	j.now = func() time.Time { return now }
	return j, m
}

func reminder(mail string) *model.FollowUpReminder {
	return &model.FollowUpReminder{
		FollowUpID:       uuid.New(),
		NextFollowUpDate: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		PatientID:        uuid.New(),
		PatientCode:      "PT000007",
		PatientName:      "Arjun",
		PatientEmail:     mail,
	}
}

func TestReminderRunWindowAndStamp(t *testing.T) {
	repo := new(mocks.FollowUpRepository)
	mailer := &fakeMailer{}
	j, m := newJob(repo, mailer)

	from := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC)
	r := reminder("arjun@example.com")

	repo.On("ListDueReminders", mock.Anything, from, to, 50).Return([]*model.FollowUpReminder{r}, nil)
	repo.On("MarkReminderSent", mock.Anything, r.FollowUpID, now).Return(nil)

	sent, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "arjun@example.com", mailer.sent[0].To)
	assert.Equal(t, "PT000007", mailer.sent[0].PatientCode)
	assert.Equal(t, r.NextFollowUpDate, mailer.sent[0].VisitDate)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemindersSent))
	repo.AssertExpectations(t)
}

func TestReminderSendFailureLeavesUnstamped(t *testing.T) {
	repo := new(mocks.FollowUpRepository)
	mailer := &fakeMailer{fail: map[string]bool{"bad@example.com": true}}
	j, m := newJob(repo, mailer)

	bad, good := reminder("bad@example.com"), reminder("good@example.com")
	repo.On("ListDueReminders", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]*model.FollowUpReminder{bad, good}, nil)
	repo.On("MarkReminderSent", mock.Anything, good.FollowUpID, mock.Anything).Return(nil)

	sent, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	repo.AssertNotCalled(t, "MarkReminderSent", mock.Anything, bad.FollowUpID, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemindersFailed))
}

func TestReminderAlreadyStampedIsNotAnError(t *testing.T) {
	repo := new(mocks.FollowUpRepository)
	j, _ := newJob(repo, &fakeMailer{})

	r := reminder("a@example.com")
	repo.On("ListDueReminders", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]*model.FollowUpReminder{r}, nil)
	repo.On("MarkReminderSent", mock.Anything, r.FollowUpID, mock.Anything).Return(repository.ErrNotFound)

	_, err := j.Run(context.Background())
	assert.NoError(t, err)
}

func TestReminderListError(t *testing.T) {
	repo := new(mocks.FollowUpRepository)
	j, _ := newJob(repo, &fakeMailer{})

	repo.On("ListDueReminders", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	sent, err := j.Run(context.Background())
	require.Error(t, err)
	assert.Zero(t, sent)
}

func TestReminderRateLimitHonoursContext(t *testing.T) {
	repo := new(mocks.FollowUpRepository)
	m := metrics.New(prometheus.NewRegistry(), "test")
	j := NewReminderJob(repo, &fakeMailer{}, config.ReminderConfig{Interval: time.Hour, LeadDays: 1, RatePerMinute: 1}, zap.NewNop(), m)

	r1, r2 := reminder("a@example.com"), reminder("b@example.com")
	repo.On("ListDueReminders", mock.Anything, mock.Anything, mock.Anything, 100).Return([]*model.FollowUpReminder{r1, r2}, nil)
	repo.On("MarkReminderSent", mock.Anything, r1.FollowUpID, mock.Anything).Return(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	sent, err := j.Run(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, sent)
	repo.AssertNotCalled(t, "MarkReminderSent", mock.Anything, r2.FollowUpID, mock.Anything)
}
