// Package adapters wires bounded contexts together without direct imports
// between them.
package adapters

import (
	"context"

	"brandscope_backend/internal/analysis/ports"
	"brandscope_backend/internal/leads"
	"brandscope_backend/platform/logger"
)

// LeadStatusRecorder projects analysis outcomes onto lead records. Lead
// tracking is a side effect of the analysis flow: failures here are logged
// and swallowed so they can never change the caller's outcome.
type LeadStatusRecorder struct {
	leads *leads.Service
	log   *logger.Logger
}

func NewLeadStatusRecorder(leadsSvc *leads.Service, log *logger.Logger) *LeadStatusRecorder {
	return &LeadStatusRecorder{leads: leadsSvc, log: log}
}

// RecordStatus implements ports.LeadRecorder.
func (r *LeadStatusRecorder) RecordStatus(ctx context.Context, p ports.LeadProjection, status ports.LeadStatus) {
	_, err := r.leads.Track(ctx, leads.UpsertParams{
		Email:       p.Email,
		Phone:       p.Phone,
		BrandName:   p.BrandName,
		Sector:      p.Sector,
		Language:    string(p.Language),
		Status:      string(status),
		IPAddress:   p.Meta.IPAddress,
		Referrer:    p.Meta.Referrer,
		UTMSource:   p.Meta.UTMSource,
		UTMMedium:   p.Meta.UTMMedium,
		UTMCampaign: p.Meta.UTMCampaign,
	})
	if err != nil {
		r.log.SideEffectError("lead_tracking", err)
	}
}
