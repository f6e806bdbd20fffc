package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/pkg/validator"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit far from int overflow.
	MaxPage = 100000
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ListParams are the paging, search and sort parameters shared by every list endpoint.
type ListParams struct {
	Page      int    `form:"page" binding:"omitempty,max=100000"`
	Limit     int    `form:"limit"`
	Search    string `form:"search" binding:"max=100"`
	SortBy    string `form:"sortBy" binding:"max=50"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// Normalize applies defaults: page 1 (capped at MaxPage), limit 10 (capped
// at 100), newest first.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	p.Search = strings.TrimSpace(p.Search)
	p.SortOrder = strings.ToLower(p.SortOrder)
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// RecordFilter narrows a list of patient sub-records.
type RecordFilter struct {
	ListParams
	PatientID string `form:"patientId" binding:"omitempty,uuid"`
	FromDate  string `form:"fromDate" binding:"omitempty,isodate"`
	ToDate    string `form:"toDate" binding:"omitempty,isodate,dategte=FromDate"`
}

// PatientUUID returns the patient filter, or nil when unset or malformed.
func (f RecordFilter) PatientUUID() *uuid.UUID {
	if f.PatientID == "" {
		return nil
	}
	id, err := uuid.Parse(f.PatientID)
	if err != nil {
		return nil
	}
	return &id
}

// Range returns the inclusive date bounds of the filter.
func (f RecordFilter) Range() (from, to *time.Time) {
	return optionalDate(&f.FromDate), optionalDate(&f.ToDate)
}

// optionalDate converts a wire date that already passed the isodate rule.
func optionalDate(s *string) *time.Time {
	t, err := validator.ParseOptionalDate(s)
	if err != nil {
		return nil
	}
	return t
}

func requiredDate(s string) time.Time {
	t, err := validator.ParseDate(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
