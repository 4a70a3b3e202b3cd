package ports

import (
	"context"

	"github.com/google/uuid"

	"brandscope_backend/internal/analysis/domain"
)

// Store is the persistence surface the analysis service needs. Implemented by
// the Postgres repository; faked in tests.
type Store interface {
	GetCompletedByKey(ctx context.Context, brandKey string) (domain.CompletedAnalysis, error)
	InsertCompleted(ctx context.Context, ca domain.CompletedAnalysis) (domain.CompletedAnalysis, error)

	InsertPending(ctx context.Context, pa domain.PendingAnalysis) (domain.PendingAnalysis, error)
	ListQueued(ctx context.Context, limit, maxRetries int) ([]domain.PendingAnalysis, error)
	ListRecent(ctx context.Context, limit int) ([]domain.PendingAnalysis, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	RegisterQuotaRetry(ctx context.Context, id uuid.UUID, reason string, maxRetries int) error
}

// Generator produces an analysis from a prepared prompt. Model identifies the
// underlying model for provenance on stored results.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// PromptBuilder renders an analysis request into a model prompt. BuildStrict
// is the hardened variant used for the single language retry.
type PromptBuilder interface {
	Build(req domain.AnalysisRequest) (string, error)
	BuildStrict(req domain.AnalysisRequest) (string, error)
}
