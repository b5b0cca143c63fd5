package aiflows

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"terraflow_backend/platform/apperr"
	"terraflow_backend/platform/logger"
	"terraflow_backend/platform/validator"
)

// LeadCapturer records a chat visitor who volunteered contact details as a
// lead for the agency. Implemented by an adapter over the leads module.
type LeadCapturer interface {
	CaptureChatLead(ctx context.Context, ownerID uuid.UUID, name, email string, phone *string, interest string) (uuid.UUID, error)
}

// ChatReply is the assistant's answer, with the created lead's id when the
// visitor's contact details were captured.
type ChatReply struct {
	Reply      string     `json:"reply"`
	LeadID     *uuid.UUID `json:"leadId,omitempty"`
	IsCaptured bool       `json:"isCaptured"`
}

type Service struct {
	generator Generator
	capturer  LeadCapturer
	val       *validator.Validator
	log       *logger.Logger
}

func NewService(generator Generator, capturer LeadCapturer, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{generator: generator, capturer: capturer, val: val, log: log}
}

func (s *Service) available() error {
	if s.generator == nil {
		return apperr.Validation("text generation is not configured")
	}
	return nil
}

// GenerateListingDescription writes marketing copy for a listing.
func (s *Service) GenerateListingDescription(ctx context.Context, in ListingDescriptionInput) (ListingDescription, error) {
	if err := s.available(); err != nil {
		return ListingDescription{}, err
	}

	var out ListingDescription
	if err := s.generator.Generate(ctx, listingDescriptionPrompt(in), listingDescriptionSchema(), &out); err != nil {
		s.log.GenerationError("listing_description", err)
		return ListingDescription{}, err
	}
	return out, nil
}

// GenerateCMAReport produces a comparative market analysis.
func (s *Service) GenerateCMAReport(ctx context.Context, in CMAInput) (CMAReport, error) {
	if err := s.available(); err != nil {
		return CMAReport{}, err
	}

	var out CMAReport
	if err := s.generator.Generate(ctx, cmaPrompt(in), cmaSchema(), &out); err != nil {
		s.log.GenerationError("cma_report", err)
		return CMAReport{}, err
	}
	return out, nil
}

// Chat answers a public-site visitor. When the visitor has volunteered name
// and email, a lead is created for the agency and its id is returned with
// the reply.
func (s *Service) Chat(ctx context.Context, agencyID uuid.UUID, in ChatInput) (ChatReply, error) {
	if err := s.available(); err != nil {
		return ChatReply{}, err
	}

	var result chatResult
	if err := s.generator.Generate(ctx, chatPrompt(in), chatSchema(), &result); err != nil {
		s.log.GenerationError("chat_reply", err)
		return ChatReply{}, err
	}

	reply := ChatReply{Reply: result.Reply}

	// Visitor details come back from the model, not from a bound request
	// body, so the email needs validating before it becomes a lead.
	name := strings.TrimSpace(result.VisitorName)
	email := strings.TrimSpace(result.VisitorEmail)
	if email != "" && s.val.Var(email, "email") != nil {
		s.log.Warn("chat capture skipped, invalid visitor email", "agency_id", agencyID)
		email = ""
	}
	if result.CaptureReady && name != "" && email != "" && s.capturer != nil {
		var phone *string
		if p := strings.TrimSpace(result.VisitorPhone); p != "" {
			phone = &p
		}

		leadID, err := s.capturer.CaptureChatLead(ctx, agencyID, name, email, phone, strings.TrimSpace(result.Interest))
		if err != nil {
			// The visitor still gets their answer; the capture failure is ours.
			s.log.Warn("failed to capture chat lead", "agency_id", agencyID, "error", err)
			return reply, nil
		}
		reply.LeadID = &leadID
		reply.IsCaptured = true
	}

	return reply, nil
}
