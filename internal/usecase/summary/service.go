package summary

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/visitnote/visit-summary/internal/domain/entities"
	"github.com/visitnote/visit-summary/internal/domain/repositories"
)

// Completion token budgets per role
const (
	AdministratorTokenBudget = 1500
	DefaultTokenBudget       = 800
)

// Service defines the summary use cases
type Service interface {
	// ResolveKey looks the form up and builds the cache key for actor
	ResolveKey(ctx context.Context, actor string, formID int64) (entities.SummaryKey, error)

	// GetCachedSummary returns the cached summary without generating one
	GetCachedSummary(ctx context.Context, key entities.SummaryKey) (*entities.CachedSummary, error)

	// GenerateSummary returns the cached summary for key, generating and
	// caching one on a miss
	GenerateSummary(ctx context.Context, key entities.SummaryKey, role entities.Role) (*entities.CachedSummary, error)

	// RefreshSummary generates a new summary regardless of the cache and
	// overwrites the cached one
	RefreshSummary(ctx context.Context, key entities.SummaryKey, role entities.Role) (*entities.CachedSummary, error)

	// InvalidateSummary drops the cached summary; false when nothing was cached
	InvalidateSummary(ctx context.Context, key entities.SummaryKey) bool
}

// SummaryCache is the best-effort cache the service writes through
type SummaryCache interface {
	Get(ctx context.Context, key entities.SummaryKey) (*entities.CachedSummary, bool)
	Set(ctx context.Context, key entities.SummaryKey, value *entities.CachedSummary, ttl time.Duration) bool
	Delete(ctx context.Context, key entities.SummaryKey) bool
}

// Completer produces text for a prompt. When Configured is false Complete
// returns placeholder text instead of calling out.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	Configured() bool
}

// Ensure SummaryService implements Service interface
var _ Service = (*SummaryService)(nil)

// SummaryService orchestrates cache lookups and summary generation
type SummaryService struct {
	forms     repositories.FormRepository
	patients  repositories.PatientRepository
	cache     SummaryCache
	completer Completer
	prompts   *PromptBuilder
	ttl       time.Duration
	logger    *zap.Logger
}

// NewSummaryService creates a summary service. ttl is the lifetime of cached
// summaries.
func NewSummaryService(
	forms repositories.FormRepository,
	patients repositories.PatientRepository,
	cache SummaryCache,
	completer Completer,
	prompts *PromptBuilder,
	ttl time.Duration,
	logger *zap.Logger,
) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prompts == nil {
		prompts = NewPromptBuilder(logger)
	}
	return &SummaryService{
		forms:     forms,
		patients:  patients,
		cache:     cache,
		completer: completer,
		prompts:   prompts,
		ttl:       ttl,
		logger:    logger.Named("summary"),
	}
}

// TokenBudget returns the completion token budget for role
func TokenBudget(role entities.Role) int {
	if role == entities.RoleQualityAdministrator {
		return AdministratorTokenBudget
	}
	return DefaultTokenBudget
}

// ResolveKey looks the form up and builds the cache key for actor
func (s *SummaryService) ResolveKey(ctx context.Context, actor string, formID int64) (entities.SummaryKey, error) {
	form, err := s.forms.FindByFormID(ctx, formID)
	if err != nil {
		s.logger.Warn("Failed to resolve form", zap.Int64("form_id", formID), zap.Error(err))
		return entities.SummaryKey{}, err
	}
	return entities.NewSummaryKey(actor, form.PatientID, form.FormID), nil
}

// GetCachedSummary returns the cached summary or ErrSummaryNotCached
func (s *SummaryService) GetCachedSummary(ctx context.Context, key entities.SummaryKey) (*entities.CachedSummary, error) {
	s.logger.Info("Getting cached summary",
		zap.Int64("form_id", key.FormID),
		zap.String("actor", key.Actor),
	)

	cached, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, entities.ErrSummaryNotCached
	}
	return cached, nil
}

// GenerateSummary serves key from the cache and generates on a miss.
// An unavailable cache behaves as a miss.
func (s *SummaryService) GenerateSummary(ctx context.Context, key entities.SummaryKey, role entities.Role) (*entities.CachedSummary, error) {
	if cached, ok := s.cache.Get(ctx, key); ok {
		s.logger.Info("Returning cached summary", zap.Int64("form_id", key.FormID), zap.String("actor", key.Actor))
		return cached, nil
	}
	return s.generate(ctx, key, role)
}

// RefreshSummary always calls the completion service and overwrites any
// cached summary for key
func (s *SummaryService) RefreshSummary(ctx context.Context, key entities.SummaryKey, role entities.Role) (*entities.CachedSummary, error) {
	return s.generate(ctx, key, role)
}

// generate resolves the documents, calls the completion service and writes
// the result through the cache. Cache faults never fail the call.
func (s *SummaryService) generate(ctx context.Context, key entities.SummaryKey, role entities.Role) (*entities.CachedSummary, error) {
	s.logger.Info("Starting summary generation",
		zap.Int64("form_id", key.FormID),
		zap.String("actor", key.Actor),
		zap.String("role", role.String()),
	)

	form, err := s.forms.FindByFormID(ctx, key.FormID)
	if err != nil {
		return nil, err
	}
	if form.PatientID != key.PatientID {
		s.logger.Warn("Form does not belong to patient",
			zap.Int64("form_id", form.FormID),
			zap.Int64("form_patient_id", form.PatientID),
			zap.Int64("patient_id", key.PatientID),
		)
		return nil, entities.ErrFormNotFound
	}

	patient, err := s.patients.FindByPatientID(ctx, form.PatientID)
	if err != nil {
		return nil, err
	}

	prompt := s.prompts.Build(form, patient, role)
	maxTokens := TokenBudget(role)
	s.logger.Debug("Generated prompt",
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("max_tokens", maxTokens),
	)

	text, err := s.completer.Complete(ctx, prompt, maxTokens)
	if err != nil {
		s.logger.Error("Summary generation failed", zap.Int64("form_id", form.FormID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", entities.ErrSummaryGeneration, err)
	}

	result := &entities.CachedSummary{
		Summary:  text,
		UserType: role,
		FormID:   form.FormID,
	}

	if !s.completer.Configured() {
		s.logger.Info("Returning placeholder summary without caching", zap.Int64("form_id", form.FormID))
		return result, nil
	}

	if !s.cache.Set(ctx, key, result, s.ttl) {
		s.logger.Warn("Summary generated but not cached", zap.String("key", key.String()))
	}

	s.logger.Info("Summary generated successfully",
		zap.Int64("form_id", form.FormID),
		zap.Int("summary_chars", len(text)),
	)
	return result, nil
}

// InvalidateSummary drops the cached summary for key
func (s *SummaryService) InvalidateSummary(ctx context.Context, key entities.SummaryKey) bool {
	return s.cache.Delete(ctx, key)
}
