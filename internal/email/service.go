package email

import (
	"context"
	"time"
)

// Service sends the notification emails the worker produces.
type Service interface {
	SendFollowUpReminder(ctx context.Context, r Reminder) error
}

// Reminder is the data rendered into a follow-up reminder email.
type Reminder struct {
	To          string
	PatientName string
	PatientCode string
	VisitDate   time.Time
}
