package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/visitnote/visit-summary/internal/domain/entities"
	"github.com/visitnote/visit-summary/internal/domain/repositories"
)

const patientsCollection = "patients"

var _ repositories.PatientRepository = (*MongoPatientRepository)(nil)

type patientDocument struct {
	PatientID int64      `bson:"patient_id"`
	Name      string     `bson:"name"`
	DOB       *time.Time `bson:"dob,omitempty"`
	Gender    string     `bson:"gender,omitempty"`
	MRN       *int64     `bson:"mrn,omitempty"`
	Address   string     `bson:"address,omitempty"`
	Phone     string     `bson:"phone,omitempty"`
	Email     string     `bson:"email,omitempty"`
	XMLData   *string    `bson:"xml_data,omitempty"`
}

func (d *patientDocument) toEntity() *entities.Patient {
	return &entities.Patient{
		PatientID: d.PatientID,
		Name:      d.Name,
		DOB:       d.DOB,
		Gender:    d.Gender,
		MRN:       d.MRN,
		Address:   d.Address,
		Phone:     d.Phone,
		Email:     d.Email,
		XMLData:   d.XMLData,
	}
}

// MongoPatientRepository reads patients from the patients collection
type MongoPatientRepository struct {
	collection *mongo.Collection
}

// NewMongoPatientRepository creates a new patient repository on db
func NewMongoPatientRepository(db *mongo.Database) *MongoPatientRepository {
	return &MongoPatientRepository{collection: db.Collection(patientsCollection)}
}

// FindByPatientID finds a patient by its patient id
func (r *MongoPatientRepository) FindByPatientID(ctx context.Context, patientID int64) (*entities.Patient, error) {
	var doc patientDocument
	if err := r.collection.FindOne(ctx, bson.M{"patient_id": patientID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entities.ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to find patient by ID: %w", err)
	}
	return doc.toEntity(), nil
}
