// Package service implements the lead lifecycle: scored intake, pipeline
// moves with their audit trail, derived views, and timeline management.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"terraflow_backend/internal/events"
	"terraflow_backend/internal/leads/domain"
	"terraflow_backend/internal/leads/repository"
	"terraflow_backend/internal/leads/scoring"
	"terraflow_backend/internal/leads/transport"
	"terraflow_backend/platform/apperr"
	"terraflow_backend/platform/logger"
	"terraflow_backend/platform/phone"
)

const (
	// HotLeadThreshold is exclusive: a lead is hot when its score is
	// strictly above this value.
	HotLeadThreshold = 75

	// AttentionAfter is how long a Contacted lead may sit untouched before
	// it shows up in the needs-attention view.
	AttentionAfter = 72 * time.Hour

	// MatchedPropertiesLimit caps the listing suggestions on the detail view.
	MatchedPropertiesLimit = 3
)

// PropertyMatch is a listing suggestion produced by the properties module.
type PropertyMatch struct {
	ID      uuid.UUID
	Title   string
	Address string
	Price   int64
	Status  string
}

// PropertyMatcher suggests listings for a lead's stated interest. A nil
// matcher disables suggestions.
type PropertyMatcher interface {
	MatchForLead(ctx context.Context, userID uuid.UUID, interest string, limit int) ([]PropertyMatch, error)
}

type Service struct {
	store   repository.Store
	matcher PropertyMatcher
	bus     events.Bus
	weights scoring.Weights
	log     *logger.Logger
}

func New(store repository.Store, matcher PropertyMatcher, bus events.Bus, weights scoring.Weights, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		matcher: matcher,
		bus:     bus,
		weights: weights,
		log:     log,
	}
}

// Create scores and stores a new lead, seeds its timeline with the scoring
// explanation, and announces it on the event bus.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	source := domain.Source(req.Source)
	if !source.Valid() {
		return transport.LeadResponse{}, apperr.Validation(fmt.Sprintf("unknown lead source %q", req.Source))
	}

	normalizedPhone := normalizePhone(req.Phone)

	result := scoring.Score(scoring.Input{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              deref(normalizedPhone),
		Source:             source,
		PropertyOfInterest: deref(req.PropertyOfInterest),
	}, s.weights)

	lead, err := s.store.Create(ctx, repository.CreateLeadParams{
		UserID:             userID,
		Name:               strings.TrimSpace(req.Name),
		Email:              strings.TrimSpace(req.Email),
		Phone:              normalizedPhone,
		Source:             string(source),
		Status:             string(domain.StatusNew),
		PropertyOfInterest: req.PropertyOfInterest,
		AIScore:            result.Score,
		AIScoreFactors:     result.Factors,
	})
	if err != nil {
		return transport.LeadResponse{}, s.persistence("create lead", err)
	}

	if _, err := s.store.AddActivity(ctx, repository.CreateActivityParams{
		LeadID:   lead.ID,
		UserID:   userID,
		Type:     domain.ActivityTypeAIUpdate,
		Actor:    domain.ActorAI,
		Content:  fmt.Sprintf("Scored %d at intake: %s", result.Score, result.Factors),
		LeadName: lead.Name,
	}); err != nil {
		// The lead itself is stored; a missing intake note is not worth
		// failing the request over.
		s.log.Warn("failed to record intake activity", "lead_id", lead.ID, "error", err)
	}

	s.bus.Publish(ctx, events.NewLeadCreated(lead.ID, userID, lead.Name, lead.Source, lead.AIScore))
	if lead.AIScore > HotLeadThreshold {
		s.bus.Publish(ctx, events.NewHotLeadDetected(lead.ID, userID, lead.Name, lead.AIScore))
	}

	return transport.NewLeadResponse(lead), nil
}

// Get returns a single lead. A lead owned by another account is reported as
// not found.
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.store.GetByID(ctx, id, userID)
	if err != nil {
		return transport.LeadResponse{}, s.mapStoreErr("get lead", err)
	}
	return transport.NewLeadResponse(lead), nil
}

// Detail assembles the lead workspace view: lead, timeline newest first, and
// up to MatchedPropertiesLimit suggested listings.
func (s *Service) Detail(ctx context.Context, id, userID uuid.UUID) (transport.LeadDetailResponse, error) {
	lead, err := s.store.GetByID(ctx, id, userID)
	if err != nil {
		return transport.LeadDetailResponse{}, s.mapStoreErr("get lead", err)
	}

	activities, err := s.store.ListActivities(ctx, id, userID)
	if err != nil {
		return transport.LeadDetailResponse{}, s.persistence("list activities", err)
	}

	detail := transport.LeadDetailResponse{
		Lead:              transport.NewLeadResponse(lead),
		Activities:        transport.NewActivityResponses(activities),
		MatchedProperties: []transport.MatchedPropertyResponse{},
	}

	if s.matcher != nil && lead.PropertyOfInterest != nil && strings.TrimSpace(*lead.PropertyOfInterest) != "" {
		matches, err := s.matcher.MatchForLead(ctx, userID, *lead.PropertyOfInterest, MatchedPropertiesLimit)
		if err != nil {
			// Suggestions are decoration on this view; log and move on.
			s.log.Warn("property matching failed", "lead_id", id, "error", err)
		}
		for _, m := range matches {
			detail.MatchedProperties = append(detail.MatchedProperties, transport.MatchedPropertyResponse{
				ID:      m.ID,
				Title:   m.Title,
				Address: m.Address,
				Price:   m.Price,
				Status:  m.Status,
			})
		}
	}

	return detail, nil
}

// List returns all of the account's leads, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]transport.LeadResponse, error) {
	leads, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, s.persistence("list leads", err)
	}
	return transport.NewLeadResponses(leads), nil
}

// Search filters the account's leads by a case-insensitive substring over
// name, email, and property of interest. An empty term returns everything.
func (s *Service) Search(ctx context.Context, userID uuid.UUID, term string) ([]transport.LeadResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx, userID)
	}

	leads, err := s.store.Search(ctx, userID, term)
	if err != nil {
		return nil, s.persistence("search leads", err)
	}
	return transport.NewLeadResponses(leads), nil
}

// Hot returns leads scoring strictly above HotLeadThreshold, best first.
func (s *Service) Hot(ctx context.Context, userID uuid.UUID) ([]transport.LeadResponse, error) {
	leads, err := s.store.ListHot(ctx, userID, HotLeadThreshold)
	if err != nil {
		return nil, s.persistence("list hot leads", err)
	}
	return transport.NewLeadResponses(leads), nil
}

// NeedingAttention returns Contacted leads untouched for longer than
// AttentionAfter, most neglected first.
func (s *Service) NeedingAttention(ctx context.Context, userID uuid.UUID) ([]transport.LeadResponse, error) {
	cutoff := time.Now().Add(-AttentionAfter)
	leads, err := s.store.ListNeedingAttention(ctx, userID, string(domain.StatusContacted), cutoff)
	if err != nil {
		return nil, s.persistence("list leads needing attention", err)
	}
	return transport.NewLeadResponses(leads), nil
}

// Update applies a partial edit to a lead's contact fields.
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	if req.Source != nil && !domain.Source(*req.Source).Valid() {
		return transport.LeadResponse{}, apperr.Validation(fmt.Sprintf("unknown lead source %q", *req.Source))
	}

	lead, err := s.store.Update(ctx, id, userID, repository.UpdateLeadParams{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              normalizePhone(req.Phone),
		Source:             req.Source,
		PropertyOfInterest: req.PropertyOfInterest,
	})
	if err != nil {
		return transport.LeadResponse{}, s.mapStoreErr("update lead", err)
	}
	return transport.NewLeadResponse(lead), nil
}

// UpdateStatus moves a lead through the pipeline. The status write and its
// audit activity land in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, id, userID uuid.UUID, newStatus string) (transport.LeadResponse, error) {
	current, err := s.store.GetByID(ctx, id, userID)
	if err != nil {
		return transport.LeadResponse{}, s.mapStoreErr("get lead", err)
	}

	entry, err := domain.ApplyStatusChange(current.Name, domain.Status(current.Status), domain.Status(newStatus))
	if err != nil {
		return transport.LeadResponse{}, apperr.Validation(err.Error())
	}

	lead, _, err := s.store.UpdateStatusWithActivity(ctx, id, userID, newStatus, repository.CreateActivityParams{
		LeadID:   id,
		UserID:   userID,
		Type:     entry.Type,
		Actor:    entry.Actor,
		Content:  entry.Content,
		LeadName: entry.LeadName,
	})
	if err != nil {
		return transport.LeadResponse{}, s.mapStoreErr("update lead status", err)
	}

	s.bus.Publish(ctx, events.NewLeadStatusChanged(lead.ID, userID, lead.Name, current.Status, lead.Status))

	return transport.NewLeadResponse(lead), nil
}

// AddActivity appends a manual timeline entry to an owned lead.
func (s *Service) AddActivity(ctx context.Context, id, userID uuid.UUID, req transport.AddActivityRequest) (transport.ActivityResponse, error) {
	lead, err := s.store.GetByID(ctx, id, userID)
	if err != nil {
		return transport.ActivityResponse{}, s.mapStoreErr("get lead", err)
	}

	activity, err := s.store.AddActivity(ctx, repository.CreateActivityParams{
		LeadID:   id,
		UserID:   userID,
		Type:     req.Type,
		Actor:    "Agent",
		Content:  req.Content,
		LeadName: lead.Name,
	})
	if err != nil {
		return transport.ActivityResponse{}, s.persistence("add activity", err)
	}
	return transport.NewActivityResponse(activity), nil
}

// Activities returns a lead's timeline, newest first.
func (s *Service) Activities(ctx context.Context, id, userID uuid.UUID) ([]transport.ActivityResponse, error) {
	if _, err := s.store.GetByID(ctx, id, userID); err != nil {
		return nil, s.mapStoreErr("get lead", err)
	}

	activities, err := s.store.ListActivities(ctx, id, userID)
	if err != nil {
		return nil, s.persistence("list activities", err)
	}
	return transport.NewActivityResponses(activities), nil
}

// Delete removes a single owned lead.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.store.Delete(ctx, id, userID); err != nil {
		return s.mapStoreErr("delete lead", err)
	}
	return nil
}

// BulkDelete removes the owned subset of the given ids and reports the
// count. IDs owned by other accounts are skipped, not errors.
func (s *Service) BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (transport.BulkDeleteResponse, error) {
	if len(ids) == 0 {
		return transport.BulkDeleteResponse{}, apperr.Validation("no lead ids provided")
	}

	deleted, err := s.store.BulkDelete(ctx, ids, userID)
	if err != nil {
		return transport.BulkDeleteResponse{}, s.persistence("bulk delete leads", err)
	}
	return transport.BulkDeleteResponse{Deleted: deleted}, nil
}

func (s *Service) mapStoreErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return s.persistence(op, err)
}

func (s *Service) persistence(op string, err error) error {
	s.log.DatabaseError(op, err)
	return apperr.Persistence(op+" failed", err)
}

// normalizePhone canonicalizes to E.164 when the number parses; otherwise
// the trimmed input is kept as-is so a sloppy number never blocks intake.
func normalizePhone(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	normalized := phone.NormalizeE164(trimmed)
	return &normalized
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
