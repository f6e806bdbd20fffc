package model

import (
	"time"

	"github.com/google/uuid"
)

type FollowUpRecord struct {
	Base
	PatientID             uuid.UUID       `json:"patientId" db:"patient_id"`
	FollowUpDate          time.Time       `json:"followUpDate" db:"follow_up_date"`
	NextFollowUpDate      *time.Time      `json:"nextFollowUpDate" db:"next_follow_up_date"`
	ClinicalStatus        string          `json:"clinicalStatus" db:"clinical_status"`
	Complaints            string          `json:"complaints" db:"complaints"`
	Examination           string          `json:"examination" db:"examination"`
	Weight                *float64        `json:"weight" db:"weight"`
	InvestigationsAdvised string          `json:"investigationsAdvised" db:"investigations_advised"`
	TreatmentAdvised      string          `json:"treatmentAdvised" db:"treatment_advised"`
	Notes                 string          `json:"notes" db:"notes"`
	ReminderSentAt        *time.Time      `json:"reminderSentAt" db:"reminder_sent_at"`
	CreatedByID           *uuid.UUID      `json:"createdById" db:"created_by_id"`
	Patient               *PatientSummary `json:"patient,omitempty" db:"patient"`
}

type FollowUpRequest struct {
	PatientID             string   `json:"patientId" binding:"required,uuid"`
	FollowUpDate          string   `json:"followUpDate" binding:"required,isodate"`
	NextFollowUpDate      *string  `json:"nextFollowUpDate" binding:"omitempty,isodate,dategte=FollowUpDate"`
	ClinicalStatus        string   `json:"clinicalStatus" binding:"omitempty,oneof=IMPROVED STABLE DETERIORATED"`
	Complaints            string   `json:"complaints" binding:"max=5000"`
	Examination           string   `json:"examination" binding:"max=5000"`
	Weight                *float64 `json:"weight" binding:"omitempty,gte=10,lte=300"`
	InvestigationsAdvised string   `json:"investigationsAdvised" binding:"max=5000"`
	TreatmentAdvised      string   `json:"treatmentAdvised" binding:"max=5000"`
	Notes                 string   `json:"notes" binding:"max=5000"`
}

func (r *FollowUpRequest) Build() *FollowUpRecord {
	status := r.ClinicalStatus
	if status == "" {
		status = "STABLE"
	}
	return &FollowUpRecord{
		PatientID:             parseUUID(r.PatientID),
		FollowUpDate:          requiredDate(r.FollowUpDate),
		NextFollowUpDate:      optionalDate(r.NextFollowUpDate),
		ClinicalStatus:        status,
		Complaints:            r.Complaints,
		Examination:           r.Examination,
		Weight:                r.Weight,
		InvestigationsAdvised: r.InvestigationsAdvised,
		TreatmentAdvised:      r.TreatmentAdvised,
		Notes:                 r.Notes,
	}
}

type FollowUpFilter struct {
	RecordFilter
	ClinicalStatus string `form:"clinicalStatus" binding:"omitempty,oneof=IMPROVED STABLE DETERIORATED"`
}

// FollowUpReminder is a follow-up whose next visit is close enough to notify the patient.
type FollowUpReminder struct {
	FollowUpID       uuid.UUID `db:"follow_up_id"`
	NextFollowUpDate time.Time `db:"next_follow_up_date"`
	PatientID        uuid.UUID `db:"patient_id"`
	PatientCode      string    `db:"patient_code"`
	PatientName      string    `db:"patient_name"`
	PatientEmail     string    `db:"patient_email"`
}
