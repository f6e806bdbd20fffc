package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/patient-registry/internal/config"
)

var reminderTemplate = template.Must(template.New("reminder").Parse(`<p>Dear {{.PatientName}},</p>
<p>This is a reminder of your follow-up visit on <strong>{{.VisitDate.Format "Monday, 02 January 2006"}}</strong>.</p>
<p>Please bring your previous reports and quote your patient ID <strong>{{.PatientCode}}</strong> at the reception.</p>
<p>If you cannot attend, please contact the clinic to reschedule.</p>`))

const reminderSubject = "Upcoming follow-up visit"

type SMTPService struct {
	from   string
	send   func(...*gomail.Message) error
	logger *zap.Logger
}

func NewSMTPService(cfg config.SMTPConfig, logger *zap.Logger) *SMTPService {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPService{
		from:   cfg.From,
		send:   dialer.DialAndSend,
		logger: logger.Named("email"),
	}
}

func (s *SMTPService) SendFollowUpReminder(ctx context.Context, r Reminder) error {
	body, err := renderReminder(r)
	if err != nil {
		return err
	}
	return s.deliver(ctx, r.To, reminderSubject, body)
}

func renderReminder(r Reminder) (string, error) {
	var body bytes.Buffer
	if err := reminderTemplate.Execute(&body, r); err != nil {
		return "", fmt.Errorf("failed to render reminder: %w", err)
	}
	return body.String(), nil
}

func (s *SMTPService) deliver(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	s.logger.Debug("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
