package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type PatientComorbidity struct {
	Base
	PatientID     uuid.UUID  `json:"patientId" db:"patient_id"`
	ConditionName string     `json:"conditionName" db:"condition_name"`
	DiagnosedDate *time.Time `json:"diagnosedDate" db:"diagnosed_date"`
	Severity      string     `json:"severity" db:"severity"`
	IsControlled  bool       `json:"isControlled" db:"is_controlled"`
	Medications   string     `json:"medications" db:"medications"`
	Notes         string     `json:"notes" db:"notes"`
	CreatedByID   *uuid.UUID `json:"createdById" db:"created_by_id"`
}

type ComorbidityRequest struct {
	ConditionName string  `json:"conditionName" binding:"required,min=2,max=200"`
	DiagnosedDate *string `json:"diagnosedDate" binding:"omitempty,isodate"`
	Severity      string  `json:"severity" binding:"omitempty,oneof=MILD MODERATE SEVERE"`
	IsControlled  bool    `json:"isControlled"`
	Medications   string  `json:"medications" binding:"max=2000"`
	Notes         string  `json:"notes" binding:"max=5000"`
}

func (r *ComorbidityRequest) Build(patientID uuid.UUID) *PatientComorbidity {
	return &PatientComorbidity{
		PatientID:     patientID,
		ConditionName: strings.TrimSpace(r.ConditionName),
		DiagnosedDate: optionalDate(r.DiagnosedDate),
		Severity:      r.Severity,
		IsControlled:  r.IsControlled,
		Medications:   r.Medications,
		Notes:         r.Notes,
	}
}
