// Package adapters bridges modules that must cooperate without importing
// each other's internals: enquiries become leads, and leads get listing
// suggestions.
package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"terraflow_backend/internal/leads/domain"
	leadsvc "terraflow_backend/internal/leads/service"
	leadtransport "terraflow_backend/internal/leads/transport"
)

// LeadIntakeAdapter implements the properties module's LeadRecorder on top
// of the leads service.
type LeadIntakeAdapter struct {
	leads *leadsvc.Service
}

func NewLeadIntakeAdapter(leads *leadsvc.Service) *LeadIntakeAdapter {
	return &LeadIntakeAdapter{leads: leads}
}

// CaptureEnquiry creates a lead for the listing owner sourced from the
// public listing page. The listing title becomes the property of interest,
// so scoring credits the specific interest.
func (a *LeadIntakeAdapter) CaptureEnquiry(ctx context.Context, ownerID uuid.UUID, name, email string, phone *string, propertyTitle, message string) (uuid.UUID, error) {
	lead, err := a.leads.Create(ctx, ownerID, leadtransport.CreateLeadRequest{
		Name:               name,
		Email:              email,
		Phone:              phone,
		Source:             string(domain.SourcePropertyListing),
		PropertyOfInterest: &propertyTitle,
	})
	if err != nil {
		return uuid.Nil, err
	}

	if msg := strings.TrimSpace(message); msg != "" {
		if _, err := a.leads.AddActivity(ctx, lead.ID, ownerID, leadtransport.AddActivityRequest{
			Type:    domain.ActivityTypeNote,
			Content: fmt.Sprintf("Enquiry message: %s", msg),
		}); err != nil {
			// The lead exists; losing the free-text note is acceptable.
			return lead.ID, nil
		}
	}

	return lead.ID, nil
}
