// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/google/uuid"

	"brandscope_backend/internal/analysis/domain"
	"brandscope_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// AnalysisQueued is published when a request could not run because the
// generation provider was out of quota and was parked on the pending queue.
type AnalysisQueued struct {
	BaseEvent
	PendingID uuid.UUID       `json:"pendingId"`
	BrandName string          `json:"brandName"`
	Email     string          `json:"email"`
	Language  domain.Language `json:"language"`
}

func (e AnalysisQueued) EventName() string { return "analysis.request.queued" }

// PendingAnalysisResolved is published when the retry sweeper completes a
// previously queued analysis.
type PendingAnalysisResolved struct {
	BaseEvent
	PendingID uuid.UUID       `json:"pendingId"`
	BrandName string          `json:"brandName"`
	Email     string          `json:"email"`
	Language  domain.Language `json:"language"`
	Result    string          `json:"result"`
}

func (e PendingAnalysisResolved) EventName() string { return "analysis.pending.resolved" }
