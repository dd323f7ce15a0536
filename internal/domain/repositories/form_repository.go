package repositories

import (
	"context"

	"github.com/visitnote/visit-summary/internal/domain/entities"
)

// FormRepository defines read access to visit forms
type FormRepository interface {
	// FindByFormID returns entities.ErrFormNotFound when no form matches
	FindByFormID(ctx context.Context, formID int64) (*entities.Form, error)
}
