package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/pkg/clinical"
)

const (
	SexMale   = "MALE"
	SexFemale = "FEMALE"
	SexOther  = "OTHER"

	TransplantLDLT = "LDLT"
	TransplantDDLT = "DDLT"
	TransplantNone = "NONE"
)

type Patient struct {
	Base
	PatientID      string     `json:"patientId" db:"patient_id"`
	Name           string     `json:"name" db:"name"`
	DateOfBirth    time.Time  `json:"dateOfBirth" db:"date_of_birth"`
	Age            int        `json:"age" db:"-"`
	Sex            string     `json:"sex" db:"sex"`
	Mobile         string     `json:"mobile" db:"mobile"`
	Email          string     `json:"email" db:"email"`
	AadharNumber   string     `json:"aadharNumber" db:"aadhar_number"`
	AddressLine    string     `json:"addressLine" db:"address_line"`
	City           string     `json:"city" db:"city"`
	State          string     `json:"state" db:"state"`
	Pincode        string     `json:"pincode" db:"pincode"`
	PrimaryDisease string     `json:"primaryDisease" db:"primary_disease"`
	Height         *float64   `json:"height" db:"height"`
	Weight         *float64   `json:"weight" db:"weight"`
	BMI            *float64   `json:"bmi" db:"bmi"`
	BloodGroup     string     `json:"bloodGroup" db:"blood_group"`
	MeldScore      *float64   `json:"meldScore" db:"meld_score"`
	TransplantType string     `json:"transplantType" db:"transplant_type"`
	IsActive       bool       `json:"isActive" db:"is_active"`
	CreatedByID    *uuid.UUID `json:"createdById" db:"created_by_id"`
	UpdatedByID    *uuid.UUID `json:"updatedById" db:"updated_by_id"`
	DeletedAt      *time.Time `json:"-" db:"deleted_at"`
}

// PatientRequest is the create and full-update payload for a patient.
type PatientRequest struct {
	PatientID      string   `json:"patientId" binding:"omitempty,patientcode"`
	Name           string   `json:"name" binding:"required,min=2,max=200"`
	DateOfBirth    string   `json:"dateOfBirth" binding:"required,dob"`
	Sex            string   `json:"sex" binding:"required,oneof=MALE FEMALE OTHER"`
	Mobile         string   `json:"mobile" binding:"omitempty,indianmobile"`
	Email          string   `json:"email" binding:"omitempty,email,max=255"`
	AadharNumber   string   `json:"aadharNumber" binding:"omitempty,aadhar"`
	AddressLine    string   `json:"addressLine" binding:"max=500"`
	City           string   `json:"city" binding:"max=100"`
	State          string   `json:"state" binding:"max=100"`
	Pincode        string   `json:"pincode" binding:"omitempty,pincode"`
	PrimaryDisease string   `json:"primaryDisease" binding:"max=200"`
	Height         *float64 `json:"height" binding:"omitempty,gte=50,lte=250"`
	Weight         *float64 `json:"weight" binding:"omitempty,gte=10,lte=300"`
	BloodGroup     string   `json:"bloodGroup" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	MeldScore      *float64 `json:"meldScore" binding:"omitempty,gte=0,lte=100"`
	TransplantType string   `json:"transplantType" binding:"omitempty,oneof=LDLT DDLT NONE"`
}

// Build maps the payload onto a new Patient. Derived fields are left to the service.
func (r *PatientRequest) Build() *Patient {
	return &Patient{
		PatientID:      strings.ToUpper(strings.TrimSpace(r.PatientID)),
		Name:           strings.TrimSpace(r.Name),
		DateOfBirth:    requiredDate(r.DateOfBirth),
		Sex:            r.Sex,
		Mobile:         r.Mobile,
		Email:          NormalizeEmail(r.Email),
		AadharNumber:   r.AadharNumber,
		AddressLine:    strings.TrimSpace(r.AddressLine),
		City:           strings.TrimSpace(r.City),
		State:          strings.TrimSpace(r.State),
		Pincode:        r.Pincode,
		PrimaryDisease: strings.TrimSpace(r.PrimaryDisease),
		Height:         r.Height,
		Weight:         r.Weight,
		BloodGroup:     r.BloodGroup,
		MeldScore:      r.MeldScore,
		TransplantType: r.TransplantType,
		IsActive:       true,
	}
}

// ComputeAge sets Age from the date of birth. Age is never stored.
func (p *Patient) ComputeAge(now time.Time) {
	p.Age = clinical.CalculateAge(p.DateOfBirth, now)
}

// ComputeBMI derives BMI when both height and weight are known and clears it otherwise.
func (p *Patient) ComputeBMI() {
	if p.Height == nil || p.Weight == nil {
		p.BMI = nil
		return
	}
	bmi := clinical.BMI(*p.Height, *p.Weight)
	p.BMI = &bmi
}

type PatientFilter struct {
	ListParams
	Sex            string `form:"sex" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	BloodGroup     string `form:"bloodGroup" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	TransplantType string `form:"transplantType" binding:"omitempty,oneof=LDLT DDLT NONE"`
	PrimaryDisease string `form:"primaryDisease" binding:"max=200"`
}

// PatientSummary is the slice of a patient joined into sub-record responses.
type PatientSummary struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PatientID   string    `json:"patientId" db:"patient_id"`
	Name        string    `json:"name" db:"name"`
	Sex         string    `json:"sex" db:"sex"`
	DateOfBirth time.Time `json:"dateOfBirth" db:"date_of_birth"`
	Age         int       `json:"age" db:"-"`
}

func (p *PatientSummary) ComputeAge(now time.Time) {
	if p != nil {
		p.Age = clinical.CalculateAge(p.DateOfBirth, now)
	}
}

// PatientSuggestion is one autocomplete entry.
type PatientSuggestion struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PatientID   string    `json:"patientId" db:"patient_id"`
	Name        string    `json:"name" db:"name"`
	Sex         string    `json:"sex" db:"sex"`
	Mobile      string    `json:"mobile" db:"mobile"`
	DateOfBirth time.Time `json:"dateOfBirth" db:"date_of_birth"`
	Age         int       `json:"age" db:"-"`
}

func (p *PatientSuggestion) ComputeAge(now time.Time) {
	p.Age = clinical.CalculateAge(p.DateOfBirth, now)
}

// RecordCounts tallies the sub-records attached to a patient.
type RecordCounts struct {
	Investigations         int `json:"investigations" db:"investigations"`
	Treatments             int `json:"treatments" db:"treatments"`
	ConservativeTreatments int `json:"conservativeTreatments" db:"conservative_treatments"`
	Surgeries              int `json:"surgeries" db:"surgeries"`
	TransplantEvaluations  int `json:"transplantEvaluations" db:"transplant_evaluations"`
	FollowUps              int `json:"followUps" db:"follow_ups"`
	Files                  int `json:"files" db:"files"`
}

// PatientDetail is the single-patient view.
type PatientDetail struct {
	*Patient
	Comorbidities []*PatientComorbidity `json:"comorbidities"`
	RecordCounts  RecordCounts          `json:"recordCounts"`
}
