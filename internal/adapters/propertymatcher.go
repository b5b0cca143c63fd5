package adapters

import (
	"context"

	"github.com/google/uuid"

	leadsvc "terraflow_backend/internal/leads/service"
	proprepo "terraflow_backend/internal/properties/repository"
)

// PropertyMatcherAdapter implements the leads module's PropertyMatcher on
// top of the properties repository.
type PropertyMatcherAdapter struct {
	properties *proprepo.Repository
}

func NewPropertyMatcherAdapter(properties *proprepo.Repository) *PropertyMatcherAdapter {
	return &PropertyMatcherAdapter{properties: properties}
}

// MatchForLead suggests the owner's active listings whose title, address, or
// city matches the lead's stated interest.
func (a *PropertyMatcherAdapter) MatchForLead(ctx context.Context, userID uuid.UUID, interest string, limit int) ([]leadsvc.PropertyMatch, error) {
	properties, err := a.properties.Match(ctx, userID, interest, limit)
	if err != nil {
		return nil, err
	}

	matches := make([]leadsvc.PropertyMatch, 0, len(properties))
	for _, p := range properties {
		matches = append(matches, leadsvc.PropertyMatch{
			ID:      p.ID,
			Title:   p.Title,
			Address: p.Address,
			Price:   p.Price,
			Status:  p.Status,
		})
	}
	return matches, nil
}
