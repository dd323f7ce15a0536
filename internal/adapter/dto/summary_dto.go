package dto

import (
	"github.com/visitnote/visit-summary/internal/domain/entities"
)

// FormSummaryRequest identifies the form a summary request is about
type FormSummaryRequest struct {
	FormID  int64 `param:"id" validate:"required,gt=0"`
	Refresh bool  `query:"refresh"`
}

// SummaryResponse represents the API response for a visit summary
type SummaryResponse struct {
	Summary  string `json:"summary"`
	UserType string `json:"user_type"`
	FormID   int64  `json:"form_id"`
}

// NewSummaryResponse converts a cached summary to its API shape
func NewSummaryResponse(s *entities.CachedSummary) *SummaryResponse {
	if s == nil {
		return nil
	}
	return &SummaryResponse{
		Summary:  s.Summary,
		UserType: s.UserType.String(),
		FormID:   s.FormID,
	}
}

// InvalidateSummaryResponse reports whether a cached summary was removed
type InvalidateSummaryResponse struct {
	FormID  int64 `json:"form_id"`
	Deleted bool  `json:"deleted"`
}
