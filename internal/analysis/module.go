// Package analysis provides the brand-analysis bounded context module.
// This file defines the module that encapsulates all analysis setup and route
// registration.
package analysis

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"brandscope_backend/internal/analysis/generation"
	"brandscope_backend/internal/analysis/handler"
	"brandscope_backend/internal/analysis/ports"
	"brandscope_backend/internal/analysis/prompt"
	"brandscope_backend/internal/analysis/repository"
	"brandscope_backend/internal/analysis/service"
	"brandscope_backend/internal/events"
	apphttp "brandscope_backend/internal/http"
	"brandscope_backend/platform/config"
	"brandscope_backend/platform/logger"
	"brandscope_backend/platform/validator"
)

// Module is the analysis bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the analysis module with all its
// dependencies.
func NewModule(ctx context.Context, pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg *config.Config, log *logger.Logger) (*Module, error) {
	repo := repository.New(pool)

	builder, err := prompt.NewBuilder()
	if err != nil {
		return nil, err
	}

	client, err := generation.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc := service.New(repo, builder, client, eventBus, cfg, log)

	return &Module{
		handler: handler.New(svc, val, cfg),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string { return "analysis" }

// RegisterRoutes mounts the analysis routes.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(rc.Public)
	m.handler.RegisterAdminRoutes(rc.Admin)
}

// Service exposes the analysis service for background workers.
func (m *Module) Service() *service.Service { return m.service }

// SetLeadRecorder injects the lead projection sink after both modules exist.
func (m *Module) SetLeadRecorder(r ports.LeadRecorder) {
	m.service.SetLeadRecorder(r)
}
