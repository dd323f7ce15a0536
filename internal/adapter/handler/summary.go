package handler

import (
	"context"
	stdErrors "errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/visitnote/visit-summary/errors"
	"github.com/visitnote/visit-summary/internal/adapter/dto"
	"github.com/visitnote/visit-summary/internal/domain/entities"
	"github.com/visitnote/visit-summary/internal/infrastructure/http/middleware"
	"github.com/visitnote/visit-summary/internal/usecase/summary"
	"github.com/visitnote/visit-summary/pkg/ai"
)

// Summary handles visit summary endpoints
type Summary struct {
	service summary.Service
	logger  *zap.Logger
}

// NewSummary creates a new summary handler
func NewSummary(service summary.Service, logger *zap.Logger) *Summary {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summary{
		service: service,
		logger:  logger.Named("http"),
	}
}

// GetSummary returns the cached summary for a form
// GET /v1/forms/:id/summary
func (h *Summary) GetSummary(c echo.Context) error {
	req, key, err := h.resolve(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	cached, err := h.service.GetCachedSummary(c.Request().Context(), key)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, req.FormID, key.PatientID))
	}

	return HandleSuccess(h.logger, c, dto.NewSummaryResponse(cached))
}

// Summarize generates (or serves from cache) the summary for a form.
// ?refresh=true forces a new generation.
// POST /v1/forms/:id/summarize
func (h *Summary) Summarize(c echo.Context) error {
	req, key, err := h.resolve(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	role := middleware.GetRole(c)
	generate := h.service.GenerateSummary
	if req.Refresh {
		generate = h.service.RefreshSummary
	}

	result, err := generate(c.Request().Context(), key, role)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, req.FormID, key.PatientID))
	}

	return HandleSuccess(h.logger, c, dto.NewSummaryResponse(result))
}

// DeleteSummary drops the cached summary for a form
// DELETE /v1/forms/:id/summary
func (h *Summary) DeleteSummary(c echo.Context) error {
	req, key, err := h.resolve(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	deleted := h.service.InvalidateSummary(c.Request().Context(), key)
	return HandleSuccess(h.logger, c, dto.InvalidateSummaryResponse{
		FormID:  req.FormID,
		Deleted: deleted,
	})
}

// resolve binds the form id, reads the actor and looks the form up. Returned
// errors are AppErrors.
func (h *Summary) resolve(c echo.Context) (*dto.FormSummaryRequest, entities.SummaryKey, error) {
	var req dto.FormSummaryRequest
	if err := (&echo.DefaultBinder{}).BindPathParams(c, &req); err != nil {
		return nil, entities.SummaryKey{}, errors.ErrInvalidArgument("form id must be an integer").
			WithDetail("id", c.Param("id"))
	}
	if err := echo.QueryParamsBinder(c).Bool("refresh", &req.Refresh).BindError(); err != nil {
		return nil, entities.SummaryKey{}, errors.ErrInvalidArgument("refresh must be a boolean")
	}
	if err := c.Validate(&req); err != nil {
		return nil, entities.SummaryKey{}, errors.ErrInvalidArgument("form id must be a positive integer").
			WithDetail("id", c.Param("id"))
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		return nil, entities.SummaryKey{}, errors.ErrUnauthenticated()
	}

	key, err := h.service.ResolveKey(c.Request().Context(), actor, req.FormID)
	if err != nil {
		return nil, entities.SummaryKey{}, toAppError(err, req.FormID, 0)
	}
	return &req, key, nil
}

// toAppError maps usecase errors onto API errors
func toAppError(err error, formID, patientID int64) error {
	switch {
	case stdErrors.Is(err, entities.ErrFormNotFound):
		return errors.ErrFormNotFound(formID)
	case stdErrors.Is(err, entities.ErrPatientNotFound):
		return errors.ErrPatientNotFound(patientID)
	case stdErrors.Is(err, entities.ErrSummaryNotCached):
		return errors.ErrSummaryNotCached(formID)
	case stdErrors.Is(err, entities.ErrSummaryGeneration):
		appErr := errors.ErrAISummaryFailed(err).WithDetail("form_id", strconv.FormatInt(formID, 10))
		var cerr *ai.CompletionError
		if stdErrors.As(err, &cerr) && cerr.StatusCode != 0 {
			appErr = appErr.WithDetail("upstream_status", strconv.Itoa(cerr.StatusCode))
		}
		return appErr
	case stdErrors.Is(err, context.Canceled), stdErrors.Is(err, context.DeadlineExceeded):
		return errors.ErrInternal(err)
	default:
		return errors.ErrDBQueryFailed("document lookup", err)
	}
}
