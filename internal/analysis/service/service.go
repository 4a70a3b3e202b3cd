// Package service implements the brand-analysis request lifecycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"brandscope_backend/internal/analysis/domain"
	"brandscope_backend/internal/analysis/generation"
	"brandscope_backend/internal/analysis/ports"
	"brandscope_backend/internal/analysis/prompt"
	"brandscope_backend/internal/analysis/repository"
	"brandscope_backend/internal/events"
	"brandscope_backend/platform/apperr"
	"brandscope_backend/platform/config"
	"brandscope_backend/platform/logger"
)

// QuotaQueuedError signals that the provider was out of quota and the request
// was parked on the pending queue. The HTTP layer renders it as a 429.
type QuotaQueuedError struct {
	PendingID uuid.UUID
	Language  domain.Language
}

func (e *QuotaQueuedError) Error() string {
	return fmt.Sprintf("analysis queued for retry (pending %s)", e.PendingID)
}

// Result is a completed analysis plus whether it already existed before this
// request.
type Result struct {
	Analysis domain.CompletedAnalysis
	Reused   bool
}

type Service struct {
	store        ports.Store
	builder      ports.PromptBuilder
	generator    ports.Generator
	leadRecorder ports.LeadRecorder
	eventBus     events.Bus
	cfg          config.AnalysisConfig
	log          *logger.Logger
}

func New(store ports.Store, builder ports.PromptBuilder, generator ports.Generator, eventBus events.Bus, cfg config.AnalysisConfig, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		builder:   builder,
		generator: generator,
		eventBus:  eventBus,
		cfg:       cfg,
		log:       log,
	}
}

// SetLeadRecorder injects the lead projection sink. Optional; when unset,
// lifecycle outcomes are simply not projected.
func (s *Service) SetLeadRecorder(r ports.LeadRecorder) {
	s.leadRecorder = r
}

// Analyze runs the full request lifecycle: dedup check, prompt build,
// generation with a single bounded language retry, persistence, and the
// best-effort side effects around each outcome.
func (s *Service) Analyze(ctx context.Context, req domain.AnalysisRequest, meta domain.ClientMeta) (Result, error) {
	brandKey := domain.NormalizeBrandKey(req.BrandName)
	if brandKey == "" {
		return Result{}, apperr.Validation("brand name is required")
	}
	projection := leadProjection(req, meta)

	existing, err := s.getCompleted(ctx, brandKey)
	if err == nil {
		return Result{}, apperr.Conflict(fmt.Sprintf("an analysis for %q already exists", existing.BrandName))
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return Result{}, apperr.Wrap(apperr.KindInternal, "check existing analysis", err)
	}

	s.recordLead(ctx, projection, ports.LeadStatusNew)

	text, err := s.generateWithLanguageRetry(ctx, req)
	if err != nil {
		if generation.IsQuotaExhausted(err) {
			return Result{}, s.queueForRetry(ctx, brandKey, req, meta, projection, err)
		}
		s.recordLead(ctx, projection, ports.LeadStatusError)
		s.log.WithContext(ctx).ProviderError(brandKey, string(generation.Classify(err)), err)
		return Result{}, apperr.Wrap(apperr.KindInternal, "analysis generation failed", err)
	}

	analysis, reused, err := s.persist(ctx, brandKey, req, text)
	if err != nil {
		s.recordLead(ctx, projection, ports.LeadStatusError)
		return Result{}, apperr.Wrap(apperr.KindInternal, "store analysis", err)
	}
	if reused {
		// Lost the insert race; someone else finished the same brand first.
		return Result{}, apperr.Conflict(fmt.Sprintf("an analysis for %q already exists", analysis.BrandName))
	}

	s.recordLead(ctx, projection, ports.LeadStatusGenerated)
	return Result{Analysis: analysis}, nil
}

// generateWithLanguageRetry calls the model once, and exactly once more with
// the hardened prompt if the model returned the language failure token. A
// second failure token is persisted as-is; the retry budget is one.
func (s *Service) generateWithLanguageRetry(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	p, err := s.builder.Build(req)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}
	text, err := s.generator.Generate(ctx, p)
	if err != nil {
		return "", err
	}
	if !strings.Contains(text, prompt.LanguageFailureSentinel) {
		return text, nil
	}

	s.log.WithContext(ctx).Warn("analysis: language compliance failure, retrying with strict prompt",
		"brandName", req.BrandName, "language", req.Language)

	strict, err := s.builder.BuildStrict(req)
	if err != nil {
		return "", fmt.Errorf("build strict prompt: %w", err)
	}
	text, err = s.generator.Generate(ctx, strict)
	if err != nil {
		return "", err
	}
	if strings.Contains(text, prompt.LanguageFailureSentinel) {
		s.log.WithContext(ctx).Warn("analysis: language compliance failed twice, persisting model output",
			"brandName", req.BrandName, "language", req.Language)
	}
	return text, nil
}

func (s *Service) getCompleted(ctx context.Context, brandKey string) (domain.CompletedAnalysis, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.GetStoreTimeout())
	defer cancel()
	return s.store.GetCompletedByKey(storeCtx, brandKey)
}

func (s *Service) persist(ctx context.Context, brandKey string, req domain.AnalysisRequest, text string) (domain.CompletedAnalysis, bool, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.GetStoreTimeout())
	defer cancel()

	inserted, err := s.store.InsertCompleted(storeCtx, domain.CompletedAnalysis{
		BrandKey:  brandKey,
		BrandName: req.BrandName,
		Sector:    req.Sector,
		Language:  req.Language,
		Result:    text,
		Email:     req.Email,
		Model:     s.generator.Model(),
	})
	if err == nil {
		return inserted, false, nil
	}
	if !errors.Is(err, repository.ErrDuplicateBrand) {
		return domain.CompletedAnalysis{}, false, err
	}

	existing, lookupErr := s.store.GetCompletedByKey(storeCtx, brandKey)
	if lookupErr != nil {
		return domain.CompletedAnalysis{}, false, fmt.Errorf("load winning analysis after duplicate: %w", lookupErr)
	}
	return existing, true, nil
}

func (s *Service) queueForRetry(ctx context.Context, brandKey string, req domain.AnalysisRequest, meta domain.ClientMeta, projection ports.LeadProjection, cause error) error {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.GetStoreTimeout())
	defer cancel()

	pending, err := s.store.InsertPending(storeCtx, domain.PendingAnalysis{
		BrandKey:  brandKey,
		Request:   req,
		Meta:      meta,
		LastError: cause.Error(),
	})
	if err != nil {
		s.recordLead(ctx, projection, ports.LeadStatusError)
		return apperr.Wrap(apperr.KindInternal, "queue analysis for retry", err)
	}

	s.recordLead(ctx, projection, ports.LeadStatusQuotaBlocked)
	s.eventBus.Publish(ctx, events.AnalysisQueued{
		BaseEvent: events.NewBaseEvent(),
		PendingID: pending.ID,
		BrandName: req.BrandName,
		Email:     req.Email,
		Language:  req.Language,
	})

	return &QuotaQueuedError{PendingID: pending.ID, Language: req.Language}
}

// ListRecentPending exposes the pending queue for the admin surface.
func (s *Service) ListRecentPending(ctx context.Context, limit int) ([]domain.PendingAnalysis, error) {
	if limit <= 0 {
		limit = 50
	}
	pending, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list pending analyses", err)
	}
	return pending, nil
}

func (s *Service) recordLead(ctx context.Context, projection ports.LeadProjection, status ports.LeadStatus) {
	if s.leadRecorder == nil {
		return
	}
	s.leadRecorder.RecordStatus(ctx, projection, status)
}

func leadProjection(req domain.AnalysisRequest, meta domain.ClientMeta) ports.LeadProjection {
	return ports.LeadProjection{
		Email:     req.Email,
		Phone:     req.Phone,
		BrandName: req.BrandName,
		Sector:    req.Sector,
		Language:  req.Language,
		Meta:      meta,
	}
}
