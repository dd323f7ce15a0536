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

const formsCollection = "forms"

var _ repositories.FormRepository = (*MongoFormRepository)(nil)

type formDocument struct {
	FormID     int64     `bson:"form_id"`
	PatientID  int64     `bson:"patient_id"`
	FormDate   time.Time `bson:"form_date"`
	FormType   string    `bson:"form_type"`
	SurveyData bson.Raw  `bson:"survey_data,omitempty"`
}

func (d *formDocument) toEntity() (*entities.Form, error) {
	survey := entities.SurveyData{}
	if len(d.SurveyData) > 0 {
		// relaxed extended JSON keeps numbers as plain JSON numbers
		raw, err := bson.MarshalExtJSON(d.SurveyData, false, false)
		if err != nil {
			return nil, fmt.Errorf("form %d: failed to convert survey data: %w", d.FormID, err)
		}
		if survey, err = decodeSurveyData(raw); err != nil {
			return nil, fmt.Errorf("form %d: %w", d.FormID, err)
		}
	}
	return &entities.Form{
		FormID:     d.FormID,
		PatientID:  d.PatientID,
		FormDate:   d.FormDate,
		FormType:   entities.FormType(d.FormType),
		SurveyData: survey,
	}, nil
}

// MongoFormRepository reads forms from the forms collection
type MongoFormRepository struct {
	collection *mongo.Collection
}

// NewMongoFormRepository creates a new form repository on db
func NewMongoFormRepository(db *mongo.Database) *MongoFormRepository {
	return &MongoFormRepository{collection: db.Collection(formsCollection)}
}

// FindByFormID finds a form by its form id
func (r *MongoFormRepository) FindByFormID(ctx context.Context, formID int64) (*entities.Form, error) {
	var doc formDocument
	if err := r.collection.FindOne(ctx, bson.M{"form_id": formID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entities.ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to find form by ID: %w", err)
	}
	return doc.toEntity()
}
