package model

import (
	"github.com/google/uuid"
)

const (
	FileCategoryInvestigationReport = "INVESTIGATION_REPORT"
	FileCategoryDischargeSummary    = "DISCHARGE_SUMMARY"
	FileCategoryPrescription        = "PRESCRIPTION"
	FileCategoryConsent             = "CONSENT"
	FileCategoryImage               = "IMAGE"
	FileCategoryOther               = "OTHER"
)

// PatientFile is the metadata of an uploaded document. The blob lives in the
// file store under StorageKey.
type PatientFile struct {
	Base
	PatientID    uuid.UUID       `json:"patientId" db:"patient_id"`
	FileName     string          `json:"fileName" db:"file_name"`
	ContentType  string          `json:"contentType" db:"content_type"`
	SizeBytes    int64           `json:"sizeBytes" db:"size_bytes"`
	Category     string          `json:"category" db:"category"`
	Description  string          `json:"description" db:"description"`
	StorageKey   string          `json:"-" db:"storage_key"`
	UploadedByID *uuid.UUID      `json:"uploadedById" db:"uploaded_by_id"`
	Patient      *PatientSummary `json:"patient,omitempty" db:"patient"`
}

// FileUploadForm is the non-file part of a multipart upload.
type FileUploadForm struct {
	PatientID   string `form:"patientId" binding:"required,uuid"`
	Category    string `form:"category" binding:"omitempty,oneof=INVESTIGATION_REPORT DISCHARGE_SUMMARY PRESCRIPTION CONSENT IMAGE OTHER"`
	Description string `form:"description" binding:"max=1000"`
}

type FileFilter struct {
	RecordFilter
	Category string `form:"category" binding:"omitempty,oneof=INVESTIGATION_REPORT DISCHARGE_SUMMARY PRESCRIPTION CONSENT IMAGE OTHER"`
}
