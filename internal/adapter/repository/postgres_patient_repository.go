package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/visitnote/visit-summary/internal/domain/entities"
	"github.com/visitnote/visit-summary/internal/domain/repositories"
)

var _ repositories.PatientRepository = (*PostgresPatientRepository)(nil)

// patientRow is the patients table row
type patientRow struct {
	PatientID int64      `gorm:"column:patient_id;primaryKey"`
	Name      string     `gorm:"column:name"`
	DOB       *time.Time `gorm:"column:dob"`
	Gender    string     `gorm:"column:gender"`
	MRN       *int64     `gorm:"column:mrn"`
	Address   string     `gorm:"column:address"`
	Phone     string     `gorm:"column:phone"`
	Email     string     `gorm:"column:email"`
	XMLData   *string    `gorm:"column:xml_data"`
}

func (patientRow) TableName() string {
	return "patients"
}

func (r *patientRow) toEntity() *entities.Patient {
	return &entities.Patient{
		PatientID: r.PatientID,
		Name:      r.Name,
		DOB:       r.DOB,
		Gender:    r.Gender,
		MRN:       r.MRN,
		Address:   r.Address,
		Phone:     r.Phone,
		Email:     r.Email,
		XMLData:   r.XMLData,
	}
}

// PostgresPatientRepository reads patients using GORM
type PostgresPatientRepository struct {
	db *gorm.DB
}

// NewPostgresPatientRepository creates a new patient repository
func NewPostgresPatientRepository(db *gorm.DB) *PostgresPatientRepository {
	return &PostgresPatientRepository{db: db}
}

// FindByPatientID finds a patient by its patient id
func (r *PostgresPatientRepository) FindByPatientID(ctx context.Context, patientID int64) (*entities.Patient, error) {
	var row patientRow
	if err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to find patient by ID: %w", err)
	}
	return row.toEntity(), nil
}
