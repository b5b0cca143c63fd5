// Package notification turns domain events into agent-facing emails. It
// subscribes to the event bus and owns no HTTP surface.
package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"terraflow_backend/internal/email"
	"terraflow_backend/internal/events"
	"terraflow_backend/platform/config"
	"terraflow_backend/platform/logger"
)

// AgentResolver looks up the notification recipient for an account.
// Implemented by an adapter over the auth repository.
type AgentResolver interface {
	ResolveAgent(ctx context.Context, userID uuid.UUID) (emailAddr, name string, err error)
}

type Module struct {
	sender   email.Sender
	resolver AgentResolver
	cfg      config.NotificationConfig
	log      *logger.Logger
}

// New assembles the notification module. sender may be nil when email
// delivery is disabled; events are then logged and dropped.
func New(sender email.Sender, resolver AgentResolver, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{sender: sender, resolver: resolver, cfg: cfg, log: log}
}

// Subscribe registers the module's always-on event handlers on the bus.
// Hot-lead alerts are wired separately: in-process via SubscribeHotLead, or
// through the task queue via the worker calling NotifyHotLead.
func (m *Module) Subscribe(bus events.Bus) {
	bus.Subscribe(events.PropertyEnquiryReceived{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		event, ok := e.(events.PropertyEnquiryReceived)
		if !ok {
			return fmt.Errorf("unexpected event type %T", e)
		}
		m.log.Info("listing enquiry captured",
			"property_id", event.PropertyID,
			"lead_id", event.LeadID,
			"owner_id", event.OwnerID,
		)
		return nil
	}))
}

// SubscribeHotLead delivers hot-lead alerts directly from the bus. Used when
// no task queue is configured; otherwise the worker drains a queued task and
// calls NotifyHotLead instead.
func (m *Module) SubscribeHotLead(bus events.Bus) {
	bus.Subscribe(events.HotLeadDetected{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		event, ok := e.(events.HotLeadDetected)
		if !ok {
			return fmt.Errorf("unexpected event type %T", e)
		}
		return m.NotifyHotLead(ctx, event.LeadID, event.UserID, event.LeadName, event.AIScore)
	}))
}

// NotifyHotLead emails the account owner about a freshly scored hot lead.
func (m *Module) NotifyHotLead(ctx context.Context, leadID, userID uuid.UUID, leadName string, aiScore int) error {
	if m.sender == nil {
		m.log.Info("hot lead detected, email delivery disabled",
			"lead_id", leadID, "ai_score", aiScore)
		return nil
	}

	toEmail, agentName, err := m.resolver.ResolveAgent(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve agent for hot lead alert: %w", err)
	}

	leadURL := fmt.Sprintf("%s/leads/%s", m.cfg.GetAppBaseURL(), leadID)
	if err := m.sender.SendHotLeadAlert(ctx, toEmail, agentName, leadName, aiScore, leadURL); err != nil {
		return fmt.Errorf("send hot lead alert: %w", err)
	}
	return nil
}

// SendAttentionDigest delivers the needs-attention digest to an account.
// Called by the background scan worker, not by an event handler.
func (m *Module) SendAttentionDigest(ctx context.Context, userID uuid.UUID, leads []email.DigestLead) error {
	if m.sender == nil || len(leads) == 0 {
		return nil
	}

	toEmail, agentName, err := m.resolver.ResolveAgent(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve agent for attention digest: %w", err)
	}

	dashboardURL := fmt.Sprintf("%s/leads?view=needs-attention", m.cfg.GetAppBaseURL())
	if err := m.sender.SendAttentionDigest(ctx, toEmail, agentName, leads, dashboardURL); err != nil {
		return fmt.Errorf("send attention digest: %w", err)
	}
	return nil
}
