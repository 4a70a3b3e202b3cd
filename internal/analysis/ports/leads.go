// Package ports declares the outbound interfaces the analysis service depends
// on, implemented elsewhere and injected at wiring time.
package ports

import (
	"context"

	"brandscope_backend/internal/analysis/domain"
)

// LeadStatus is the coarse analysis outcome projected onto the lead record.
type LeadStatus string

const (
	LeadStatusNew          LeadStatus = "NEW"
	LeadStatusGenerated    LeadStatus = "GENERATED"
	LeadStatusQuotaBlocked LeadStatus = "QUOTA_BLOCKED"
	LeadStatusError        LeadStatus = "ERROR"
)

// LeadProjection is the slice of an analysis request that the lead tracker
// cares about.
type LeadProjection struct {
	Email     string
	Phone     string
	BrandName string
	Sector    string
	Language  domain.Language
	Meta      domain.ClientMeta
}

// LeadRecorder projects analysis lifecycle outcomes onto lead records. All
// implementations must be best-effort: a recorder error never reaches the
// analysis flow.
type LeadRecorder interface {
	RecordStatus(ctx context.Context, projection LeadProjection, status LeadStatus)
}
