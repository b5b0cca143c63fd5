package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lead does not exist or belongs to another
// account. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("lead not found")

// Lead is the persisted lead row.
type Lead struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	Name               string
	Email              string
	Phone              *string
	Source             string
	Status             string
	PropertyOfInterest *string
	AIScore            int
	AIScoreFactors     string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Activity is one entry in a lead's append-only timeline.
type Activity struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	UserID    uuid.UUID
	Type      string
	Actor     string
	Content   string
	LeadName  string
	CreatedAt time.Time
}

// CreateLeadParams carries the fields for inserting a lead.
type CreateLeadParams struct {
	UserID             uuid.UUID
	Name               string
	Email              string
	Phone              *string
	Source             string
	Status             string
	PropertyOfInterest *string
	AIScore            int
	AIScoreFactors     string
}

// UpdateLeadParams carries a partial update. Nil pointers leave the column
// untouched; status is not updatable here (see UpdateStatusWithActivity).
type UpdateLeadParams struct {
	Name               *string
	Email              *string
	Phone              *string
	Source             *string
	PropertyOfInterest *string
}

// CreateActivityParams carries the fields for appending a timeline entry.
type CreateActivityParams struct {
	LeadID   uuid.UUID
	UserID   uuid.UUID
	Type     string
	Actor    string
	Content  string
	LeadName string
}

// Reader provides tenant-scoped lead lookups.
type Reader interface {
	GetByID(ctx context.Context, id, userID uuid.UUID) (Lead, error)
	List(ctx context.Context, userID uuid.UUID) ([]Lead, error)
	Search(ctx context.Context, userID uuid.UUID, term string) ([]Lead, error)
	ListHot(ctx context.Context, userID uuid.UUID, threshold int) ([]Lead, error)
	ListNeedingAttention(ctx context.Context, userID uuid.UUID, status string, olderThan time.Time) ([]Lead, error)
}

// Writer provides tenant-scoped lead mutations.
type Writer interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	Update(ctx context.Context, id, userID uuid.UUID, params UpdateLeadParams) (Lead, error)
	UpdateStatusWithActivity(ctx context.Context, id, userID uuid.UUID, status string, activity CreateActivityParams) (Lead, Activity, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	BulkDelete(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) (int64, error)
}

// TimelineStore manages lead activity entries.
type TimelineStore interface {
	AddActivity(ctx context.Context, params CreateActivityParams) (Activity, error)
	ListActivities(ctx context.Context, leadID, userID uuid.UUID) ([]Activity, error)
}

// Scanner provides cross-tenant reads for background jobs only. Handlers
// must never touch this interface.
type Scanner interface {
	ListStaleAcrossAccounts(ctx context.Context, status string, olderThan time.Time) ([]Lead, error)
}

// Store is the full persistence surface for the leads service.
type Store interface {
	Reader
	Writer
	TimelineStore
}
