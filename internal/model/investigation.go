package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	InvestigationUltrasonography    = "ULTRASONOGRAPHY"
	InvestigationCECTAbdomen        = "CECT_ABDOMEN"
	InvestigationUpperGIEndoscopy   = "UPPER_GI_ENDOSCOPY"
	InvestigationEndoscopicBiopsy   = "ENDOSCOPIC_BIOPSY"
	InvestigationColonoscopy        = "COLONOSCOPY"
	InvestigationColonoscopicBiopsy = "COLONOSCOPIC_BIOPSY"
	InvestigationPETCTScan          = "PET_CT_SCAN"
	InvestigationOtherBiopsy        = "OTHER_BIOPSY"
	InvestigationBloodTest          = "BLOOD_TEST"
	InvestigationUrineTest          = "URINE_TEST"
	InvestigationImaging            = "IMAGING"
	InvestigationOther              = "OTHER"

	InvestigationPending   = "PENDING"
	InvestigationScheduled = "SCHEDULED"
	InvestigationCompleted = "COMPLETED"
	InvestigationReviewed  = "REVIEWED"
	InvestigationCancelled = "CANCELLED"
)

type PatientInvestigation struct {
	Base
	PatientID         uuid.UUID       `json:"patientId" db:"patient_id"`
	InvestigationType string          `json:"investigationType" db:"investigation_type"`
	Status            string          `json:"status" db:"status"`
	ScheduledDate     *time.Time      `json:"scheduledDate" db:"scheduled_date"`
	InvestigationDate *time.Time      `json:"investigationDate" db:"investigation_date"`
	ReportDate        *time.Time      `json:"reportDate" db:"report_date"`
	PerformedAt       string          `json:"performedAt" db:"performed_at"`
	Findings          string          `json:"findings" db:"findings"`
	Impression        string          `json:"impression" db:"impression"`
	Recommendations   string          `json:"recommendations" db:"recommendations"`
	Notes             string          `json:"notes" db:"notes"`
	CreatedByID       *uuid.UUID      `json:"createdById" db:"created_by_id"`
	Patient           *PatientSummary `json:"patient,omitempty" db:"patient"`
}

type InvestigationRequest struct {
	PatientID         string  `json:"patientId" binding:"required,uuid"`
	InvestigationType string  `json:"investigationType" binding:"required,oneof=ULTRASONOGRAPHY CECT_ABDOMEN UPPER_GI_ENDOSCOPY ENDOSCOPIC_BIOPSY COLONOSCOPY COLONOSCOPIC_BIOPSY PET_CT_SCAN OTHER_BIOPSY BLOOD_TEST URINE_TEST IMAGING OTHER"`
	Status            string  `json:"status" binding:"omitempty,oneof=PENDING SCHEDULED COMPLETED REVIEWED CANCELLED"`
	ScheduledDate     *string `json:"scheduledDate" binding:"omitempty,isodate"`
	InvestigationDate *string `json:"investigationDate" binding:"omitempty,isodate"`
	ReportDate        *string `json:"reportDate" binding:"omitempty,isodate,dategte=InvestigationDate"`
	PerformedAt       string  `json:"performedAt" binding:"max=200"`
	Findings          string  `json:"findings" binding:"max=10000"`
	Impression        string  `json:"impression" binding:"max=5000"`
	Recommendations   string  `json:"recommendations" binding:"max=5000"`
	Notes             string  `json:"notes" binding:"max=5000"`
}

func (r *InvestigationRequest) Build() *PatientInvestigation {
	status := r.Status
	if status == "" {
		status = InvestigationPending
	}
	return &PatientInvestigation{
		PatientID:         parseUUID(r.PatientID),
		InvestigationType: r.InvestigationType,
		Status:            status,
		ScheduledDate:     optionalDate(r.ScheduledDate),
		InvestigationDate: optionalDate(r.InvestigationDate),
		ReportDate:        optionalDate(r.ReportDate),
		PerformedAt:       strings.TrimSpace(r.PerformedAt),
		Findings:          r.Findings,
		Impression:        r.Impression,
		Recommendations:   r.Recommendations,
		Notes:             r.Notes,
	}
}

type InvestigationFilter struct {
	RecordFilter
	InvestigationType string `form:"investigationType" binding:"omitempty,oneof=ULTRASONOGRAPHY CECT_ABDOMEN UPPER_GI_ENDOSCOPY ENDOSCOPIC_BIOPSY COLONOSCOPY COLONOSCOPIC_BIOPSY PET_CT_SCAN OTHER_BIOPSY BLOOD_TEST URINE_TEST IMAGING OTHER"`
	Status            string `form:"status" binding:"omitempty,oneof=PENDING SCHEDULED COMPLETED REVIEWED CANCELLED"`
}
