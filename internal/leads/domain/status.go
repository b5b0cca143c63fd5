// Package domain holds the lead pipeline's pure business rules: status and
// source enumerations, activity vocabulary, and the status-transition
// function. It has no dependencies on storage or transport.
package domain

import "fmt"

// Status is a lead's position in the sales pipeline.
type Status string

const (
	StatusNew              Status = "New"
	StatusContacted        Status = "Contacted"
	StatusViewingScheduled Status = "Viewing Scheduled"
	StatusOfferMade        Status = "Offer Made"
	StatusQualified        Status = "Qualified"
	StatusUnqualified      Status = "Unqualified"
)

// AllStatuses lists every pipeline status in display order.
var AllStatuses = []Status{
	StatusNew,
	StatusContacted,
	StatusViewingScheduled,
	StatusOfferMade,
	StatusQualified,
	StatusUnqualified,
}

// Valid reports whether s is a known pipeline status.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Source identifies where a lead came from.
type Source string

const (
	SourceWebsiteChatbot  Source = "website-chatbot"
	SourcePropertyListing Source = "property-listing"
	SourcePaidAds         Source = "paid-ads"
	SourceSocialMedia     Source = "social-media"
	SourceReferral        Source = "referral"
	SourceManualEntry     Source = "manual-entry"
	SourceOther           Source = "other"
)

// AllSources lists every known lead source.
var AllSources = []Source{
	SourceWebsiteChatbot,
	SourcePropertyListing,
	SourcePaidAds,
	SourceSocialMedia,
	SourceReferral,
	SourceManualEntry,
	SourceOther,
}

// Valid reports whether s is a known lead source.
func (s Source) Valid() bool {
	for _, known := range AllSources {
		if s == known {
			return true
		}
	}
	return false
}

// Activity event types. The set is open to extension; these are the values
// the backend itself writes.
const (
	ActivityTypeCall         = "Call"
	ActivityTypeEmail        = "Email"
	ActivityTypeNote         = "Note"
	ActivityTypeAIUpdate     = "AI Update"
	ActivityTypeSystemUpdate = "System Update"
)

// Actor names for activities not attributable to a human user.
const (
	ActorSystem = "System"
	ActorAI     = "TerraFlow AI"
)

// AuditEntry describes the activity record a status change must produce.
type AuditEntry struct {
	Type     string
	Actor    string
	Content  string
	LeadName string
}

// ApplyStatusChange validates a transition and returns the audit entry that
// must be persisted together with the status write. The pipeline is
// permissive: every transition between known statuses is legal, including
// reopening a Qualified or Unqualified lead. Returning the entry alongside
// the validation result keeps call sites from recording the status without
// its audit trail.
func ApplyStatusChange(leadName string, from, to Status) (AuditEntry, error) {
	if !to.Valid() {
		return AuditEntry{}, fmt.Errorf("unknown lead status %q", to)
	}

	return AuditEntry{
		Type:     ActivityTypeSystemUpdate,
		Actor:    ActorSystem,
		Content:  fmt.Sprintf("Status changed from %s to %s", from, to),
		LeadName: leadName,
	}, nil
}
