package domain

import (
	"time"

	"github.com/google/uuid"
)

// PendingStatus is the lifecycle state of a queued analysis.
type PendingStatus string

const (
	PendingStatusQueued    PendingStatus = "queued"
	PendingStatusProcessed PendingStatus = "processed"
	PendingStatusFailed    PendingStatus = "failed"
)

// MaxRetries is the number of quota retries a pending analysis gets before it
// is marked failed for good.
const MaxRetries = 5

// CompletedAnalysis is a finished brand analysis. BrandKey carries a unique
// index; it is the only thing that serializes concurrent submissions of the
// same brand.
type CompletedAnalysis struct {
	ID        uuid.UUID
	BrandKey  string
	BrandName string
	Sector    string
	Language  Language
	Result    string
	Email     string
	Model     string
	CreatedAt time.Time
}

// PendingAnalysis is a request parked because the generation provider was out
// of quota. The original request is kept verbatim so the sweeper can replay it.
type PendingAnalysis struct {
	ID            uuid.UUID
	CorrelationID uuid.UUID
	BrandKey      string
	Request       AnalysisRequest
	Meta          ClientMeta
	Status        PendingStatus
	RetryCount    int
	LastError     string
	CreatedAt     time.Time
	LastRetryAt   *time.Time
	ResolvedAt    *time.Time
}
