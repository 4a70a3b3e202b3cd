// Package notification provides event handlers for sending notifications in
// response to domain events. This module subscribes to events and inverts the
// dependency: the analysis module never needs to know about email providers
// or templates.
package notification

import (
	"context"
	"fmt"

	"brandscope_backend/internal/email"
	"brandscope_backend/internal/events"
	"brandscope_backend/platform/logger"
)

// Module subscribes to analysis lifecycle events and delivers the matching
// emails. Every delivery is best-effort: errors are logged and swallowed so a
// broken mail setup can never fail a publisher.
type Module struct {
	sender email.Sender
	log    *logger.Logger
}

func New(sender email.Sender, log *logger.Logger) *Module {
	return &Module{sender: sender, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// Subscribe registers event handlers on the bus.
func (m *Module) Subscribe(bus events.Bus) {
	bus.Subscribe(events.AnalysisQueued{}.EventName(), events.HandlerFunc(m.handleAnalysisQueued))
	bus.Subscribe(events.PendingAnalysisResolved{}.EventName(), events.HandlerFunc(m.handlePendingResolved))
}

func (m *Module) handleAnalysisQueued(ctx context.Context, event events.Event) error {
	evt, ok := event.(events.AnalysisQueued)
	if !ok {
		return fmt.Errorf("notification: unexpected event type %T", event)
	}
	if err := m.sender.SendQueuedConfirmationEmail(ctx, evt.Email, evt.BrandName, string(evt.Language)); err != nil {
		m.log.SideEffectError("email_queued_confirmation", err)
		return nil
	}
	m.log.Info("notification: queued confirmation sent", "brandName", evt.BrandName)
	return nil
}

func (m *Module) handlePendingResolved(ctx context.Context, event events.Event) error {
	evt, ok := event.(events.PendingAnalysisResolved)
	if !ok {
		return fmt.Errorf("notification: unexpected event type %T", event)
	}
	if err := m.sender.SendAnalysisResultEmail(ctx, evt.Email, evt.BrandName, string(evt.Language), evt.Result); err != nil {
		m.log.SideEffectError("email_analysis_result", err)
		return nil
	}
	m.log.Info("notification: analysis result sent", "brandName", evt.BrandName)
	return nil
}
