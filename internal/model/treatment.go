package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type PatientTreatment struct {
	Base
	PatientID     uuid.UUID       `json:"patientId" db:"patient_id"`
	TreatmentType string          `json:"treatmentType" db:"treatment_type"`
	TreatmentName string          `json:"treatmentName" db:"treatment_name"`
	Status        string          `json:"status" db:"status"`
	StartDate     time.Time       `json:"startDate" db:"start_date"`
	EndDate       *time.Time      `json:"endDate" db:"end_date"`
	Medications   string          `json:"medications" db:"medications"`
	Dosage        string          `json:"dosage" db:"dosage"`
	PrescribedBy  string          `json:"prescribedBy" db:"prescribed_by"`
	Outcome       string          `json:"outcome" db:"outcome"`
	Notes         string          `json:"notes" db:"notes"`
	CreatedByID   *uuid.UUID      `json:"createdById" db:"created_by_id"`
	Patient       *PatientSummary `json:"patient,omitempty" db:"patient"`
}

type TreatmentRequest struct {
	PatientID     string  `json:"patientId" binding:"required,uuid"`
	TreatmentType string  `json:"treatmentType" binding:"required,oneof=MEDICAL SURGICAL CONSERVATIVE CHEMOTHERAPY RADIOTHERAPY TRANSPLANT OTHER"`
	TreatmentName string  `json:"treatmentName" binding:"required,min=2,max=200"`
	Status        string  `json:"status" binding:"omitempty,oneof=PLANNED ONGOING COMPLETED DISCONTINUED"`
	StartDate     string  `json:"startDate" binding:"required,isodate"`
	EndDate       *string `json:"endDate" binding:"omitempty,isodate,dategte=StartDate"`
	Medications   string  `json:"medications" binding:"max=5000"`
	Dosage        string  `json:"dosage" binding:"max=500"`
	PrescribedBy  string  `json:"prescribedBy" binding:"max=200"`
	Outcome       string  `json:"outcome" binding:"max=5000"`
	Notes         string  `json:"notes" binding:"max=5000"`
}

func (r *TreatmentRequest) Build() *PatientTreatment {
	status := r.Status
	if status == "" {
		status = "PLANNED"
	}
	return &PatientTreatment{
		PatientID:     parseUUID(r.PatientID),
		TreatmentType: r.TreatmentType,
		TreatmentName: strings.TrimSpace(r.TreatmentName),
		Status:        status,
		StartDate:     requiredDate(r.StartDate),
		EndDate:       optionalDate(r.EndDate),
		Medications:   r.Medications,
		Dosage:        r.Dosage,
		PrescribedBy:  strings.TrimSpace(r.PrescribedBy),
		Outcome:       r.Outcome,
		Notes:         r.Notes,
	}
}

type TreatmentFilter struct {
	RecordFilter
	TreatmentType string `form:"treatmentType" binding:"omitempty,oneof=MEDICAL SURGICAL CONSERVATIVE CHEMOTHERAPY RADIOTHERAPY TRANSPLANT OTHER"`
	Status        string `form:"status" binding:"omitempty,oneof=PLANNED ONGOING COMPLETED DISCONTINUED"`
}

type ConservativeTreatment struct {
	Base
	PatientID       uuid.UUID       `json:"patientId" db:"patient_id"`
	StartDate       time.Time       `json:"startDate" db:"start_date"`
	EndDate         *time.Time      `json:"endDate" db:"end_date"`
	Medications     string          `json:"medications" db:"medications"`
	DietaryAdvice   string          `json:"dietaryAdvice" db:"dietary_advice"`
	LifestyleAdvice string          `json:"lifestyleAdvice" db:"lifestyle_advice"`
	Response        string          `json:"response" db:"response"`
	NextReviewDate  *time.Time      `json:"nextReviewDate" db:"next_review_date"`
	Notes           string          `json:"notes" db:"notes"`
	CreatedByID     *uuid.UUID      `json:"createdById" db:"created_by_id"`
	Patient         *PatientSummary `json:"patient,omitempty" db:"patient"`
}

type ConservativeTreatmentRequest struct {
	PatientID       string  `json:"patientId" binding:"required,uuid"`
	StartDate       string  `json:"startDate" binding:"required,isodate"`
	EndDate         *string `json:"endDate" binding:"omitempty,isodate,dategte=StartDate"`
	Medications     string  `json:"medications" binding:"max=5000"`
	DietaryAdvice   string  `json:"dietaryAdvice" binding:"max=5000"`
	LifestyleAdvice string  `json:"lifestyleAdvice" binding:"max=5000"`
	Response        string  `json:"response" binding:"omitempty,oneof=IMPROVED STABLE WORSENED UNKNOWN"`
	NextReviewDate  *string `json:"nextReviewDate" binding:"omitempty,isodate,dategte=StartDate"`
	Notes           string  `json:"notes" binding:"max=5000"`
}

func (r *ConservativeTreatmentRequest) Build() *ConservativeTreatment {
	response := r.Response
	if response == "" {
		response = "UNKNOWN"
	}
	return &ConservativeTreatment{
		PatientID:       parseUUID(r.PatientID),
		StartDate:       requiredDate(r.StartDate),
		EndDate:         optionalDate(r.EndDate),
		Medications:     r.Medications,
		DietaryAdvice:   r.DietaryAdvice,
		LifestyleAdvice: r.LifestyleAdvice,
		Response:        response,
		NextReviewDate:  optionalDate(r.NextReviewDate),
		Notes:           r.Notes,
	}
}

type ConservativeTreatmentFilter struct {
	RecordFilter
	Response string `form:"response" binding:"omitempty,oneof=IMPROVED STABLE WORSENED UNKNOWN"`
}
