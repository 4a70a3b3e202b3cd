package leads

import (
	"context"

	"brandscope_backend/platform/logger"
)

// Service owns lead persistence on behalf of the analysis lifecycle.
type Service struct {
	repo *Repository
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Track creates or refreshes the lead for a requester/brand pair.
func (s *Service) Track(ctx context.Context, params UpsertParams) (Lead, error) {
	return s.repo.Upsert(ctx, params)
}

// ListRecent returns the newest leads.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, limit)
}
