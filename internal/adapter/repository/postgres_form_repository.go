package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/visitnote/visit-summary/internal/domain/entities"
	"github.com/visitnote/visit-summary/internal/domain/repositories"
)

var _ repositories.FormRepository = (*PostgresFormRepository)(nil)

// formRow is the forms table row
type formRow struct {
	FormID     int64          `gorm:"column:form_id;primaryKey"`
	PatientID  int64          `gorm:"column:patient_id;index"`
	FormDate   time.Time      `gorm:"column:form_date"`
	FormType   string         `gorm:"column:form_type"`
	SurveyData datatypes.JSON `gorm:"column:survey_data;type:jsonb"`
}

func (formRow) TableName() string {
	return "forms"
}

func (r *formRow) toEntity() (*entities.Form, error) {
	survey, err := decodeSurveyData(r.SurveyData)
	if err != nil {
		return nil, fmt.Errorf("form %d: %w", r.FormID, err)
	}
	return &entities.Form{
		FormID:     r.FormID,
		PatientID:  r.PatientID,
		FormDate:   r.FormDate,
		FormType:   entities.FormType(r.FormType),
		SurveyData: survey,
	}, nil
}

// PostgresFormRepository reads forms using GORM
type PostgresFormRepository struct {
	db *gorm.DB
}

// NewPostgresFormRepository creates a new form repository
func NewPostgresFormRepository(db *gorm.DB) *PostgresFormRepository {
	return &PostgresFormRepository{db: db}
}

// FindByFormID finds a form by its form id
func (r *PostgresFormRepository) FindByFormID(ctx context.Context, formID int64) (*entities.Form, error) {
	var row formRow
	if err := r.db.WithContext(ctx).Where("form_id = ?", formID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to find form by ID: %w", err)
	}
	return row.toEntity()
}
