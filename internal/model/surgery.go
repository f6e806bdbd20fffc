package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type SurgeryDetail struct {
	Base
	PatientID        uuid.UUID       `json:"patientId" db:"patient_id"`
	SurgeryDate      time.Time       `json:"surgeryDate" db:"surgery_date"`
	SurgeryName      string          `json:"surgeryName" db:"surgery_name"`
	SurgeryType      string          `json:"surgeryType" db:"surgery_type"`
	Surgeon          string          `json:"surgeon" db:"surgeon"`
	AnesthesiaType   string          `json:"anesthesiaType" db:"anesthesia_type"`
	DurationMinutes  *int            `json:"durationMinutes" db:"duration_minutes"`
	Findings         string          `json:"findings" db:"findings"`
	Complications    string          `json:"complications" db:"complications"`
	Outcome          string          `json:"outcome" db:"outcome"`
	NextFollowUpDate *time.Time      `json:"nextFollowUpDate" db:"next_follow_up_date"`
	Notes            string          `json:"notes" db:"notes"`
	CreatedByID      *uuid.UUID      `json:"createdById" db:"created_by_id"`
	Patient          *PatientSummary `json:"patient,omitempty" db:"patient"`
}

type SurgeryRequest struct {
	PatientID        string  `json:"patientId" binding:"required,uuid"`
	SurgeryDate      string  `json:"surgeryDate" binding:"required,isodate"`
	SurgeryName      string  `json:"surgeryName" binding:"required,min=2,max=200"`
	SurgeryType      string  `json:"surgeryType" binding:"omitempty,oneof=ELECTIVE EMERGENCY"`
	Surgeon          string  `json:"surgeon" binding:"max=200"`
	AnesthesiaType   string  `json:"anesthesiaType" binding:"max=100"`
	DurationMinutes  *int    `json:"durationMinutes" binding:"omitempty,gte=1,lte=2880"`
	Findings         string  `json:"findings" binding:"max=10000"`
	Complications    string  `json:"complications" binding:"max=5000"`
	Outcome          string  `json:"outcome" binding:"max=5000"`
	NextFollowUpDate *string `json:"nextFollowUpDate" binding:"omitempty,isodate,dategte=SurgeryDate"`
	Notes            string  `json:"notes" binding:"max=5000"`
}

func (r *SurgeryRequest) Build() *SurgeryDetail {
	surgeryType := r.SurgeryType
	if surgeryType == "" {
		surgeryType = "ELECTIVE"
	}
	return &SurgeryDetail{
		PatientID:        parseUUID(r.PatientID),
		SurgeryDate:      requiredDate(r.SurgeryDate),
		SurgeryName:      strings.TrimSpace(r.SurgeryName),
		SurgeryType:      surgeryType,
		Surgeon:          strings.TrimSpace(r.Surgeon),
		AnesthesiaType:   r.AnesthesiaType,
		DurationMinutes:  r.DurationMinutes,
		Findings:         r.Findings,
		Complications:    r.Complications,
		Outcome:          r.Outcome,
		NextFollowUpDate: optionalDate(r.NextFollowUpDate),
		Notes:            r.Notes,
	}
}

type SurgeryFilter struct {
	RecordFilter
	SurgeryType string `form:"surgeryType" binding:"omitempty,oneof=ELECTIVE EMERGENCY"`
}
