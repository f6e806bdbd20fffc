package file

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx"

	"github.com/jwalitptl/patient-registry/internal/model"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
	"github.com/jwalitptl/patient-registry/pkg/validator"
)

// ExportContentType is the media type of the patient export workbook.
const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeader = []string{
	"Patient ID", "Name", "Date of Birth", "Age", "Sex", "Mobile", "Email",
	"City", "State", "Primary Disease", "Height (cm)", "Weight (kg)", "BMI",
	"Blood Group", "MELD Score", "Transplant Type", "Registered On",
}

// ExportFileName names the workbook after the export date.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("patients-%s.xlsx", now.Format("20060102"))
}

// ExportPatients writes the patients matching filter as an xlsx workbook and
// returns the number of data rows.
func (s *Service) ExportPatients(ctx context.Context, filter *model.PatientFilter, w io.Writer) (int, error) {
	patients, err := s.exporter.ExportPatients(ctx, filter, s.opts.ExportMaxRows)
	if err != nil {
		return 0, err
	}

	book, err := buildWorkbook(patients)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	if err := book.Write(w); err != nil {
		return 0, apperrors.Internal(fmt.Errorf("failed to write workbook: %w", err))
	}

	s.events.Emit(ctx, model.AggregatePatient, model.ActionExported, uuid.Nil, nil, map[string]int{
		"rows": len(patients),
	})
	return len(patients), nil
}

func buildWorkbook(patients []*model.Patient) (*xlsx.File, error) {
	book := xlsx.NewFile()
	sheet, err := book.AddSheet("Patients")
	if err != nil {
		return nil, fmt.Errorf("failed to add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, title := range exportHeader {
		header.AddCell().Value = title
	}

	for _, p := range patients {
		row := sheet.AddRow()
		addString(row, p.PatientID)
		addString(row, p.Name)
		addString(row, p.DateOfBirth.Format(validator.DateLayout))
		row.AddCell().SetInt(p.Age)
		addString(row, p.Sex)
		addString(row, p.Mobile)
		addString(row, p.Email)
		addString(row, p.City)
		addString(row, p.State)
		addString(row, p.PrimaryDisease)
		addFloat(row, p.Height)
		addFloat(row, p.Weight)
		addFloat(row, p.BMI)
		addString(row, p.BloodGroup)
		addFloat(row, p.MeldScore)
		addString(row, p.TransplantType)
		addString(row, p.CreatedAt.Format(validator.DateLayout))
	}
	return book, nil
}

func addString(row *xlsx.Row, v string) {
	row.AddCell().Value = v
}

func addFloat(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v != nil {
		cell.SetFloat(*v)
	}
}
