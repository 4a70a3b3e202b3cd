package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"brandscope_backend/internal/analysis/domain"
	"brandscope_backend/internal/analysis/generation"
	"brandscope_backend/internal/analysis/ports"
	"brandscope_backend/internal/analysis/repository"
	"brandscope_backend/internal/events"
)

// sweepConcurrency bounds how many pending items are replayed at once so a
// sweep cannot burn the whole quota window by itself.
const sweepConcurrency = 4

// SweepOutcome is the terminal state one pending item reached during a sweep.
type SweepOutcome string

const (
	SweepOutcomeProcessed SweepOutcome = "processed"
	SweepOutcomeRequeued  SweepOutcome = "requeued"
	SweepOutcomeFailed    SweepOutcome = "failed"
)

// SweepDetail describes what happened to one pending analysis.
type SweepDetail struct {
	PendingID string       `json:"pendingId"`
	BrandName string       `json:"brandName"`
	Outcome   SweepOutcome `json:"outcome"`
	Reason    string       `json:"reason,omitempty"`
}

// SweepSummary aggregates one sweep run.
type SweepSummary struct {
	Picked    int           `json:"picked"`
	Processed int           `json:"processed"`
	Requeued  int           `json:"requeued"`
	Failed    int           `json:"failed"`
	Details   []SweepDetail `json:"details"`

	mu sync.Mutex
}

func (s *SweepSummary) add(d SweepDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch d.Outcome {
	case SweepOutcomeProcessed:
		s.Processed++
	case SweepOutcomeRequeued:
		s.Requeued++
	case SweepOutcomeFailed:
		s.Failed++
	}
	s.Details = append(s.Details, d)
}

// Sweep replays up to limit queued analyses. Each item resolves independently;
// one item's failure never aborts the sweep, and a re-run over the same rows
// is harmless because every outcome is recorded before the next sweep can see
// the row again.
func (s *Service) Sweep(ctx context.Context, limit int) (*SweepSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.GetStoreTimeout())
	pending, err := s.store.ListQueued(storeCtx, limit, domain.MaxRetries)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("sweep: list queued: %w", err)
	}

	summary := &SweepSummary{Picked: len(pending)}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for _, item := range pending {
		g.Go(func() error {
			summary.add(s.sweepOne(gctx, item))
			return nil
		})
	}
	_ = g.Wait()

	s.log.WithContext(ctx).Info("analysis: sweep finished",
		"picked", summary.Picked,
		"processed", summary.Processed,
		"requeued", summary.Requeued,
		"failed", summary.Failed)
	return summary, nil
}

func (s *Service) sweepOne(ctx context.Context, item domain.PendingAnalysis) SweepDetail {
	detail := SweepDetail{PendingID: item.ID.String(), BrandName: item.Request.BrandName}
	projection := leadProjection(item.Request, item.Meta)

	// The brand may have been completed since this item was queued, either by
	// a fresh submission or by a previous sweep that died between insert and
	// mark. Treat that as done.
	if _, err := s.getCompleted(ctx, item.BrandKey); err == nil {
		if err := s.markProcessed(ctx, item.ID); err != nil {
			s.log.WithContext(ctx).DatabaseError("mark pending processed", err)
		}
		detail.Outcome = SweepOutcomeProcessed
		detail.Reason = "already completed"
		return detail
	} else if !errors.Is(err, repository.ErrNotFound) {
		detail.Outcome = SweepOutcomeRequeued
		detail.Reason = err.Error()
		return detail
	}

	text, err := s.generateWithLanguageRetry(ctx, item.Request)
	if err != nil {
		if generation.IsQuotaExhausted(err) {
			if rErr := s.registerQuotaRetry(ctx, item.ID, err.Error()); rErr != nil {
				s.log.WithContext(ctx).DatabaseError("register quota retry", rErr)
			}
			detail.Outcome = SweepOutcomeRequeued
			detail.Reason = "provider quota exhausted"
			return detail
		}
		s.log.WithContext(ctx).ProviderError(item.CorrelationID.String(), string(generation.Classify(err)), err)
		s.recordLead(ctx, projection, ports.LeadStatusError)
		if mErr := s.markFailed(ctx, item.ID, err.Error()); mErr != nil {
			s.log.WithContext(ctx).DatabaseError("mark pending failed", mErr)
		}
		detail.Outcome = SweepOutcomeFailed
		detail.Reason = err.Error()
		return detail
	}

	analysis, reused, err := s.persist(ctx, item.BrandKey, item.Request, text)
	if err != nil {
		s.recordLead(ctx, projection, ports.LeadStatusError)
		if mErr := s.markFailed(ctx, item.ID, err.Error()); mErr != nil {
			s.log.WithContext(ctx).DatabaseError("mark pending failed", mErr)
		}
		detail.Outcome = SweepOutcomeFailed
		detail.Reason = err.Error()
		return detail
	}

	if err := s.markProcessed(ctx, item.ID); err != nil {
		s.log.WithContext(ctx).DatabaseError("mark pending processed", err)
	}

	if !reused {
		s.recordLead(ctx, projection, ports.LeadStatusGenerated)
		s.eventBus.Publish(ctx, events.PendingAnalysisResolved{
			BaseEvent: events.NewBaseEvent(),
			PendingID: item.ID,
			BrandName: item.Request.BrandName,
			Email:     item.Request.Email,
			Language:  item.Request.Language,
			Result:    analysis.Result,
		})
	}
	detail.Outcome = SweepOutcomeProcessed
	return detail
}

func (s *Service) markProcessed(ctx context.Context, id uuid.UUID) error {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.GetStoreTimeout())
	defer cancel()
	return s.store.MarkProcessed(storeCtx, id)
}

func (s *Service) markFailed(ctx context.Context, id uuid.UUID, reason string) error {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.GetStoreTimeout())
	defer cancel()
	return s.store.MarkFailed(storeCtx, id, reason)
}

func (s *Service) registerQuotaRetry(ctx context.Context, id uuid.UUID, reason string) error {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.GetStoreTimeout())
	defer cancel()
	return s.store.RegisterQuotaRetry(storeCtx, id, reason, domain.MaxRetries)
}
