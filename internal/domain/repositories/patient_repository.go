package repositories

import (
	"context"

	"github.com/visitnote/visit-summary/internal/domain/entities"
)

// PatientRepository defines read access to patient records
type PatientRepository interface {
	// FindByPatientID returns entities.ErrPatientNotFound when no patient matches
	FindByPatientID(ctx context.Context, patientID int64) (*entities.Patient, error)
}
