package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LiverTransplantEvaluation is a pre-transplant work-up snapshot.
type LiverTransplantEvaluation struct {
	Base
	PatientID      uuid.UUID       `json:"patientId" db:"patient_id"`
	EvaluationDate time.Time       `json:"evaluationDate" db:"evaluation_date"`
	Status         string          `json:"status" db:"status"`
	Hemoglobin     *float64        `json:"hemoglobin" db:"hemoglobin"`
	Platelets      *float64        `json:"platelets" db:"platelets"`
	TotalBilirubin *float64        `json:"totalBilirubin" db:"total_bilirubin"`
	Albumin        *float64        `json:"albumin" db:"albumin"`
	INR            *float64        `json:"inr" db:"inr"`
	Creatinine     *float64        `json:"creatinine" db:"creatinine"`
	Sodium         *float64        `json:"sodium" db:"sodium"`
	AST            *float64        `json:"ast" db:"ast"`
	ALT            *float64        `json:"alt" db:"alt"`
	ALP            *float64        `json:"alp" db:"alp"`
	HBsAg          string          `json:"hbsAg" db:"hbs_ag"`
	AntiHCV        string          `json:"antiHcv" db:"anti_hcv"`
	HIV            string          `json:"hiv" db:"hiv"`
	AntiHBc        string          `json:"antiHbc" db:"anti_hbc"`
	MeldScore      *float64        `json:"meldScore" db:"meld_score"`
	ChildPughClass string          `json:"childPughClass" db:"child_pugh_class"`
	DonorType      string          `json:"donorType" db:"donor_type"`
	DonorRelation  string          `json:"donorRelation" db:"donor_relation"`
	Recommendation string          `json:"recommendation" db:"recommendation"`
	Notes          string          `json:"notes" db:"notes"`
	CreatedByID    *uuid.UUID      `json:"createdById" db:"created_by_id"`
	Patient        *PatientSummary `json:"patient,omitempty" db:"patient"`
}

type TransplantEvaluationRequest struct {
	PatientID      string   `json:"patientId" binding:"required,uuid"`
	EvaluationDate string   `json:"evaluationDate" binding:"required,isodate"`
	Status         string   `json:"status" binding:"omitempty,oneof=PENDING ELIGIBLE NOT_ELIGIBLE LISTED TRANSPLANTED DEFERRED"`
	Hemoglobin     *float64 `json:"hemoglobin" binding:"omitempty,gte=0,lte=9999.99"`
	Platelets      *float64 `json:"platelets" binding:"omitempty,gte=0,lte=99999999.99"`
	TotalBilirubin *float64 `json:"totalBilirubin" binding:"omitempty,gte=0,lte=9999.99"`
	Albumin        *float64 `json:"albumin" binding:"omitempty,gte=0,lte=9999.99"`
	INR            *float64 `json:"inr" binding:"omitempty,gte=0,lte=9999.99"`
	Creatinine     *float64 `json:"creatinine" binding:"omitempty,gte=0,lte=9999.99"`
	Sodium         *float64 `json:"sodium" binding:"omitempty,gte=0,lte=9999.99"`
	AST            *float64 `json:"ast" binding:"omitempty,gte=0,lte=999999.99"`
	ALT            *float64 `json:"alt" binding:"omitempty,gte=0,lte=999999.99"`
	ALP            *float64 `json:"alp" binding:"omitempty,gte=0,lte=999999.99"`
	HBsAg          string   `json:"hbsAg" binding:"omitempty,oneof=POSITIVE NEGATIVE PENDING NOT_DONE"`
	AntiHCV        string   `json:"antiHcv" binding:"omitempty,oneof=POSITIVE NEGATIVE PENDING NOT_DONE"`
	HIV            string   `json:"hiv" binding:"omitempty,oneof=POSITIVE NEGATIVE PENDING NOT_DONE"`
	AntiHBc        string   `json:"antiHbc" binding:"omitempty,oneof=POSITIVE NEGATIVE PENDING NOT_DONE"`
	MeldScore      *float64 `json:"meldScore" binding:"omitempty,gte=0,lte=100"`
	ChildPughClass string   `json:"childPughClass" binding:"omitempty,oneof=A B C"`
	DonorType      string   `json:"donorType" binding:"omitempty,oneof=LIVING DECEASED"`
	DonorRelation  string   `json:"donorRelation" binding:"max=100"`
	Recommendation string   `json:"recommendation" binding:"max=5000"`
	Notes          string   `json:"notes" binding:"max=5000"`
}

func (r *TransplantEvaluationRequest) Build() *LiverTransplantEvaluation {
	status := r.Status
	if status == "" {
		status = "PENDING"
	}
	return &LiverTransplantEvaluation{
		PatientID:      parseUUID(r.PatientID),
		EvaluationDate: requiredDate(r.EvaluationDate),
		Status:         status,
		Hemoglobin:     r.Hemoglobin,
		Platelets:      r.Platelets,
		TotalBilirubin: r.TotalBilirubin,
		Albumin:        r.Albumin,
		INR:            r.INR,
		Creatinine:     r.Creatinine,
		Sodium:         r.Sodium,
		AST:            r.AST,
		ALT:            r.ALT,
		ALP:            r.ALP,
		HBsAg:          markerOrDefault(r.HBsAg),
		AntiHCV:        markerOrDefault(r.AntiHCV),
		HIV:            markerOrDefault(r.HIV),
		AntiHBc:        markerOrDefault(r.AntiHBc),
		MeldScore:      r.MeldScore,
		ChildPughClass: r.ChildPughClass,
		DonorType:      r.DonorType,
		DonorRelation:  strings.TrimSpace(r.DonorRelation),
		Recommendation: r.Recommendation,
		Notes:          r.Notes,
	}
}

func markerOrDefault(s string) string {
	if s == "" {
		return "NOT_DONE"
	}
	return s
}

type TransplantEvaluationFilter struct {
	RecordFilter
	Status    string `form:"status" binding:"omitempty,oneof=PENDING ELIGIBLE NOT_ELIGIBLE LISTED TRANSPLANTED DEFERRED"`
	DonorType string `form:"donorType" binding:"omitempty,oneof=LIVING DECEASED"`
}
