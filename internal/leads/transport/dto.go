// Package transport defines the request and response shapes for the leads
// API, decoupled from the storage model.
package transport

import (
	"time"

	"github.com/google/uuid"

	"terraflow_backend/internal/leads/repository"
)

// CreateLeadRequest is the payload for creating a lead.
type CreateLeadRequest struct {
	Name               string  `json:"name" binding:"required,max=200"`
	Email              string  `json:"email" binding:"required,email"`
	Phone              *string `json:"phone" binding:"omitempty,max=32"`
	Source             string  `json:"source" binding:"required"`
	PropertyOfInterest *string `json:"propertyOfInterest" binding:"omitempty,max=300"`
}

// UpdateLeadRequest is a partial update; omitted fields are left unchanged.
// Status changes go through UpdateStatusRequest so the audit trail is never
// skipped.
type UpdateLeadRequest struct {
	Name               *string `json:"name" binding:"omitempty,max=200"`
	Email              *string `json:"email" binding:"omitempty,email"`
	Phone              *string `json:"phone" binding:"omitempty,max=32"`
	Source             *string `json:"source"`
	PropertyOfInterest *string `json:"propertyOfInterest" binding:"omitempty,max=300"`
}

// UpdateStatusRequest moves a lead through the pipeline.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BulkDeleteRequest removes several leads at once.
type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=500"`
}

// AddActivityRequest appends a manual entry to a lead's timeline.
type AddActivityRequest struct {
	Type    string `json:"type" binding:"required,oneof=Call Email Note"`
	Content string `json:"content" binding:"required,max=2000"`
}

// LeadResponse is the API representation of a lead.
type LeadResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              *string   `json:"phone,omitempty"`
	Source             string    `json:"source"`
	Status             string    `json:"status"`
	PropertyOfInterest *string   `json:"propertyOfInterest,omitempty"`
	AIScore            int       `json:"aiScore"`
	AIScoreFactors     string    `json:"aiScoreFactors"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ActivityResponse is one timeline entry.
type ActivityResponse struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"leadId"`
	Type      string    `json:"type"`
	Actor     string    `json:"actor"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// MatchedPropertyResponse is a listing suggested for a lead.
type MatchedPropertyResponse struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Address string    `json:"address"`
	Price   int64     `json:"price"`
	Status  string    `json:"status"`
}

// LeadDetailResponse is the lead workspace view: the lead, its timeline
// newest first, and up to a few matched listings.
type LeadDetailResponse struct {
	Lead              LeadResponse              `json:"lead"`
	Activities        []ActivityResponse        `json:"activities"`
	MatchedProperties []MatchedPropertyResponse `json:"matchedProperties"`
}

// BulkDeleteResponse reports how many leads were actually removed.
type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// NewLeadResponse maps a stored lead to its API shape.
func NewLeadResponse(l repository.Lead) LeadResponse {
	return LeadResponse{
		ID:                 l.ID,
		Name:               l.Name,
		Email:              l.Email,
		Phone:              l.Phone,
		Source:             l.Source,
		Status:             l.Status,
		PropertyOfInterest: l.PropertyOfInterest,
		AIScore:            l.AIScore,
		AIScoreFactors:     l.AIScoreFactors,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

// NewLeadResponses maps a slice of stored leads, preserving order.
func NewLeadResponses(leads []repository.Lead) []LeadResponse {
	out := make([]LeadResponse, len(leads))
	for i, l := range leads {
		out[i] = NewLeadResponse(l)
	}
	return out
}

// NewActivityResponse maps a stored activity to its API shape.
func NewActivityResponse(a repository.Activity) ActivityResponse {
	return ActivityResponse{
		ID:        a.ID,
		LeadID:    a.LeadID,
		Type:      a.Type,
		Actor:     a.Actor,
		Content:   a.Content,
		CreatedAt: a.CreatedAt,
	}
}

// NewActivityResponses maps a slice of activities, preserving order.
func NewActivityResponses(activities []repository.Activity) []ActivityResponse {
	out := make([]ActivityResponse, len(activities))
	for i, a := range activities {
		out[i] = NewActivityResponse(a)
	}
	return out
}
