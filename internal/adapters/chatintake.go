package adapters

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"terraflow_backend/internal/leads/domain"
	leadsvc "terraflow_backend/internal/leads/service"
	leadtransport "terraflow_backend/internal/leads/transport"
)

// ChatIntakeAdapter implements the AI flows module's LeadCapturer on top of
// the leads service.
type ChatIntakeAdapter struct {
	leads *leadsvc.Service
}

func NewChatIntakeAdapter(leads *leadsvc.Service) *ChatIntakeAdapter {
	return &ChatIntakeAdapter{leads: leads}
}

// CaptureChatLead creates a lead from a chatbot conversation where the
// visitor volunteered their contact details.
func (a *ChatIntakeAdapter) CaptureChatLead(ctx context.Context, ownerID uuid.UUID, name, email string, phone *string, interest string) (uuid.UUID, error) {
	var propertyOfInterest *string
	if trimmed := strings.TrimSpace(interest); trimmed != "" {
		propertyOfInterest = &trimmed
	}

	lead, err := a.leads.Create(ctx, ownerID, leadtransport.CreateLeadRequest{
		Name:               name,
		Email:              email,
		Phone:              phone,
		Source:             string(domain.SourceWebsiteChatbot),
		PropertyOfInterest: propertyOfInterest,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return lead.ID, nil
}
