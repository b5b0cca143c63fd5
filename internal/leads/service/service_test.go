package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"terraflow_backend/internal/events"
	"terraflow_backend/internal/leads/domain"
	"terraflow_backend/internal/leads/repository"
	"terraflow_backend/internal/leads/scoring"
	"terraflow_backend/internal/leads/transport"
	"terraflow_backend/platform/apperr"
	"terraflow_backend/platform/logger"
)

// fakeStore is an in-memory repository.Store for service tests.
type fakeStore struct {
	leads      map[uuid.UUID]repository.Lead
	activities []repository.Activity
}

func newFakeStore() *fakeStore {
	return &fakeStore{leads: map[uuid.UUID]repository.Lead{}}
}

func (f *fakeStore) Create(_ context.Context, p repository.CreateLeadParams) (repository.Lead, error) {
	now := time.Now()
	lead := repository.Lead{
		ID:                 uuid.New(),
		UserID:             p.UserID,
		Name:               p.Name,
		Email:              p.Email,
		Phone:              p.Phone,
		Source:             p.Source,
		Status:             p.Status,
		PropertyOfInterest: p.PropertyOfInterest,
		AIScore:            p.AIScore,
		AIScoreFactors:     p.AIScoreFactors,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeStore) GetByID(_ context.Context, id, userID uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.UserID != userID {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeStore) List(_ context.Context, userID uuid.UUID) ([]repository.Lead, error) {
	var out []repository.Lead
	for _, l := range f.leads {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) Search(ctx context.Context, userID uuid.UUID, term string) ([]repository.Lead, error) {
	all, _ := f.List(ctx, userID)
	lower := strings.ToLower(term)
	var out []repository.Lead
	for _, l := range all {
		interest := ""
		if l.PropertyOfInterest != nil {
			interest = *l.PropertyOfInterest
		}
		if strings.Contains(strings.ToLower(l.Name), lower) ||
			strings.Contains(strings.ToLower(l.Email), lower) ||
			strings.Contains(strings.ToLower(interest), lower) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) ListHot(ctx context.Context, userID uuid.UUID, threshold int) ([]repository.Lead, error) {
	all, _ := f.List(ctx, userID)
	var out []repository.Lead
	for _, l := range all {
		if l.AIScore > threshold {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AIScore > out[j].AIScore })
	return out, nil
}

func (f *fakeStore) ListNeedingAttention(ctx context.Context, userID uuid.UUID, status string, olderThan time.Time) ([]repository.Lead, error) {
	all, _ := f.List(ctx, userID)
	var out []repository.Lead
	for _, l := range all {
		if l.Status == status && l.UpdatedAt.Before(olderThan) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, id, userID uuid.UUID, p repository.UpdateLeadParams) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.UserID != userID {
		return repository.Lead{}, repository.ErrNotFound
	}
	if p.Name != nil {
		lead.Name = *p.Name
	}
	if p.Email != nil {
		lead.Email = *p.Email
	}
	if p.Phone != nil {
		lead.Phone = p.Phone
	}
	if p.Source != nil {
		lead.Source = *p.Source
	}
	if p.PropertyOfInterest != nil {
		lead.PropertyOfInterest = p.PropertyOfInterest
	}
	lead.UpdatedAt = time.Now()
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) UpdateStatusWithActivity(ctx context.Context, id, userID uuid.UUID, status string, activity repository.CreateActivityParams) (repository.Lead, repository.Activity, error) {
	lead, ok := f.leads[id]
	if !ok || lead.UserID != userID {
		return repository.Lead{}, repository.Activity{}, repository.ErrNotFound
	}
	lead.Status = status
	lead.UpdatedAt = time.Now()
	f.leads[id] = lead
	act, err := f.AddActivity(ctx, activity)
	return lead, act, err
}

func (f *fakeStore) Delete(_ context.Context, id, userID uuid.UUID) error {
	lead, ok := f.leads[id]
	if !ok || lead.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.leads, id)
	return nil
}

func (f *fakeStore) BulkDelete(_ context.Context, ids []uuid.UUID, userID uuid.UUID) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if lead, ok := f.leads[id]; ok && lead.UserID == userID {
			delete(f.leads, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeStore) AddActivity(_ context.Context, p repository.CreateActivityParams) (repository.Activity, error) {
	act := repository.Activity{
		ID:        uuid.New(),
		LeadID:    p.LeadID,
		UserID:    p.UserID,
		Type:      p.Type,
		Actor:     p.Actor,
		Content:   p.Content,
		LeadName:  p.LeadName,
		CreatedAt: time.Now(),
	}
	f.activities = append(f.activities, act)
	return act, nil
}

func (f *fakeStore) ListActivities(_ context.Context, leadID, userID uuid.UUID) ([]repository.Activity, error) {
	var out []repository.Activity
	for _, a := range f.activities {
		if a.LeadID == leadID && a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// fakeBus records published events.
type fakeBus struct {
	published []events.Event
}

func (b *fakeBus) Publish(_ context.Context, e events.Event) {
	b.published = append(b.published, e)
}

func (b *fakeBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *fakeBus) Subscribe(string, events.Handler) {}

func (b *fakeBus) names() []string {
	out := make([]string, len(b.published))
	for i, e := range b.published {
		out[i] = e.EventName()
	}
	return out
}

type fakeMatcher struct {
	matches []PropertyMatch
	gotTerm string
}

func (m *fakeMatcher) MatchForLead(_ context.Context, _ uuid.UUID, interest string, limit int) ([]PropertyMatch, error) {
	m.gotTerm = interest
	if len(m.matches) > limit {
		return m.matches[:limit], nil
	}
	return m.matches, nil
}

func newTestService(store repository.Store, matcher PropertyMatcher, bus events.Bus) *Service {
	return New(store, matcher, bus, scoring.DefaultWeights(), logger.New("development"))
}

func ptr(s string) *string { return &s }

func seedLead(store *fakeStore, userID uuid.UUID, name string, status domain.Status, score int, updatedAt time.Time) repository.Lead {
	lead := repository.Lead{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Email:     strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Source:    string(domain.SourceManualEntry),
		Status:    string(status),
		AIScore:   score,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	store.leads[lead.ID] = lead
	return lead
}

func TestCreateScoresAndAnnouncesLead(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	svc := newTestService(store, nil, bus)
	userID := uuid.New()

	resp, err := svc.Create(context.Background(), userID, transport.CreateLeadRequest{
		Name:               "Hot Prospect",
		Email:              "hot@example.com",
		Phone:              ptr("+1 555 123 4567"),
		Source:             string(domain.SourceReferral),
		PropertyOfInterest: ptr("12 Ocean Drive"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if resp.Status != string(domain.StatusNew) {
		t.Errorf("new lead status = %q, want %q", resp.Status, domain.StatusNew)
	}
	if resp.AIScore < 0 || resp.AIScore > 100 {
		t.Errorf("aiScore = %d, want within [0, 100]", resp.AIScore)
	}
	if !strings.HasPrefix(resp.AIScoreFactors, "High trust source") {
		t.Errorf("factors = %q, want referral factor first", resp.AIScoreFactors)
	}

	// Referral with property and phone lands well above the hot threshold,
	// so both creation and hot-lead events fire.
	names := bus.names()
	if len(names) != 2 || names[0] != "leads.lead.created" || names[1] != "leads.lead.hot" {
		t.Errorf("published events = %v, want [leads.lead.created leads.lead.hot]", names)
	}

	// Intake seeds the timeline with the scoring explanation.
	acts, err := svc.Activities(context.Background(), resp.ID, userID)
	if err != nil {
		t.Fatalf("Activities: %v", err)
	}
	if len(acts) != 1 || acts[0].Type != domain.ActivityTypeAIUpdate || acts[0].Actor != domain.ActorAI {
		t.Errorf("intake activity = %+v, want one AI Update by %s", acts, domain.ActorAI)
	}
}

func TestCreateRejectsUnknownSource(t *testing.T) {
	svc := newTestService(newFakeStore(), nil, &fakeBus{})

	_, err := svc.Create(context.Background(), uuid.New(), transport.CreateLeadRequest{
		Name:   "X",
		Email:  "x@example.com",
		Source: "billboard",
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestManualEntryLeadIsNotHot(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	svc := newTestService(store, nil, bus)

	resp, err := svc.Create(context.Background(), uuid.New(), transport.CreateLeadRequest{
		Name:   "Quiet Walk-in",
		Email:  "quiet@example.com",
		Source: string(domain.SourceManualEntry),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp.AIScore > HotLeadThreshold {
		t.Fatalf("bare manual entry scored %d, above hot threshold %d", resp.AIScore, HotLeadThreshold)
	}
	if names := bus.names(); len(names) != 1 || names[0] != "leads.lead.created" {
		t.Errorf("published events = %v, want only leads.lead.created", names)
	}
}

func TestHotExcludesThresholdScore(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, &fakeBus{})
	userID := uuid.New()
	now := time.Now()

	seedLead(store, userID, "Exactly At Threshold", domain.StatusNew, 75, now)
	justAbove := seedLead(store, userID, "Just Above", domain.StatusNew, 76, now)
	top := seedLead(store, userID, "Top Scorer", domain.StatusNew, 98, now)
	seedLead(store, userID, "Cold", domain.StatusNew, 40, now)

	hot, err := svc.Hot(context.Background(), userID)
	if err != nil {
		t.Fatalf("Hot: %v", err)
	}
	if len(hot) != 2 {
		t.Fatalf("got %d hot leads, want 2 (score 75 is excluded)", len(hot))
	}
	if hot[0].ID != top.ID || hot[1].ID != justAbove.ID {
		t.Errorf("hot order = [%s %s], want highest score first", hot[0].Name, hot[1].Name)
	}
}

func TestNeedingAttentionBoundaryAndOrder(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, &fakeBus{})
	userID := uuid.New()
	now := time.Now()

	oldest := seedLead(store, userID, "Oldest Neglected", domain.StatusContacted, 60, now.Add(-10*24*time.Hour))
	older := seedLead(store, userID, "Older Neglected", domain.StatusContacted, 60, now.Add(-4*24*time.Hour))
	seedLead(store, userID, "Fresh Contact", domain.StatusContacted, 60, now.Add(-time.Hour))
	seedLead(store, userID, "Just Inside Window", domain.StatusContacted, 60, now.Add(-71*time.Hour))
	seedLead(store, userID, "Stale But New Status", domain.StatusNew, 60, now.Add(-10*24*time.Hour))
	seedLead(store, userID, "Stale But Qualified", domain.StatusQualified, 60, now.Add(-10*24*time.Hour))

	got, err := svc.NeedingAttention(context.Background(), userID)
	if err != nil {
		t.Fatalf("NeedingAttention: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d leads needing attention, want 2", len(got))
	}
	if got[0].ID != oldest.ID || got[1].ID != older.ID {
		t.Errorf("order = [%s %s], want most neglected first", got[0].Name, got[1].Name)
	}
}

func TestGetHidesForeignLeads(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, &fakeBus{})
	owner := uuid.New()
	intruder := uuid.New()

	lead := seedLead(store, owner, "Private Lead", domain.StatusNew, 50, time.Now())

	if _, err := svc.Get(context.Background(), lead.ID, owner); err != nil {
		t.Fatalf("owner Get: %v", err)
	}

	_, err := svc.Get(context.Background(), lead.ID, intruder)
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("foreign Get err = %v, want not-found (no existence leak)", err)
	}
}

func TestUpdateStatusWritesAuditTrail(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	svc := newTestService(store, nil, bus)
	userID := uuid.New()

	lead := seedLead(store, userID, "Moving Along", domain.StatusNew, 50, time.Now())

	resp, err := svc.UpdateStatus(context.Background(), lead.ID, userID, string(domain.StatusContacted))
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if resp.Status != string(domain.StatusContacted) {
		t.Errorf("status = %q, want Contacted", resp.Status)
	}

	acts, _ := store.ListActivities(context.Background(), lead.ID, userID)
	if len(acts) != 1 {
		t.Fatalf("got %d activities, want exactly 1 audit entry", len(acts))
	}
	if acts[0].Type != domain.ActivityTypeSystemUpdate || acts[0].Actor != domain.ActorSystem {
		t.Errorf("audit entry = %+v, want System Update by System", acts[0])
	}
	if !strings.Contains(acts[0].Content, "New") || !strings.Contains(acts[0].Content, "Contacted") {
		t.Errorf("audit content %q does not mention both statuses", acts[0].Content)
	}

	if names := bus.names(); len(names) != 1 || names[0] != "leads.lead.status_changed" {
		t.Errorf("published events = %v, want leads.lead.status_changed", names)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, &fakeBus{})
	userID := uuid.New()
	lead := seedLead(store, userID, "Stuck", domain.StatusNew, 50, time.Now())

	_, err := svc.UpdateStatus(context.Background(), lead.ID, userID, "Archived")
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}

	acts, _ := store.ListActivities(context.Background(), lead.ID, userID)
	if len(acts) != 0 {
		t.Errorf("rejected transition still wrote %d activities", len(acts))
	}
}

func TestUpdateStatusAllowsReopeningClosedLead(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, &fakeBus{})
	userID := uuid.New()
	lead := seedLead(store, userID, "Second Chance", domain.StatusUnqualified, 50, time.Now())

	resp, err := svc.UpdateStatus(context.Background(), lead.ID, userID, string(domain.StatusNew))
	if err != nil {
		t.Fatalf("reopening closed lead: %v", err)
	}
	if resp.Status != string(domain.StatusNew) {
		t.Errorf("status = %q, want New", resp.Status)
	}
}

func TestUpdateStatusOnForeignLead(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, &fakeBus{})
	lead := seedLead(store, uuid.New(), "Someone Else's", domain.StatusNew, 50, time.Now())

	_, err := svc.UpdateStatus(context.Background(), lead.ID, uuid.New(), string(domain.StatusContacted))
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestBulkDeleteSkipsForeignLeads(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, &fakeBus{})
	owner := uuid.New()
	other := uuid.New()

	mine1 := seedLead(store, owner, "Mine One", domain.StatusNew, 50, time.Now())
	mine2 := seedLead(store, owner, "Mine Two", domain.StatusNew, 50, time.Now())
	theirs := seedLead(store, other, "Theirs", domain.StatusNew, 50, time.Now())

	resp, err := svc.BulkDelete(context.Background(), owner, []uuid.UUID{mine1.ID, mine2.ID, theirs.ID, uuid.New()})
	if err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	if resp.Deleted != 2 {
		t.Errorf("deleted = %d, want 2 (owned subset only)", resp.Deleted)
	}
	if _, ok := store.leads[theirs.ID]; !ok {
		t.Error("bulk delete removed a lead belonging to another account")
	}
}

func TestBulkDeleteRequiresIDs(t *testing.T) {
	svc := newTestService(newFakeStore(), nil, &fakeBus{})
	_, err := svc.BulkDelete(context.Background(), uuid.New(), nil)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, &fakeBus{})
	userID := uuid.New()

	match := seedLead(store, userID, "Alice Oceanfront", domain.StatusNew, 50, time.Now())
	seedLead(store, userID, "Bob Inland", domain.StatusNew, 50, time.Now())

	got, err := svc.Search(context.Background(), userID, "OCEAN")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != match.ID {
		t.Fatalf("search results = %+v, want only %q", got, match.Name)
	}
}

func TestSearchEmptyTermListsAll(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, &fakeBus{})
	userID := uuid.New()
	seedLead(store, userID, "One", domain.StatusNew, 50, time.Now())
	seedLead(store, userID, "Two", domain.StatusNew, 50, time.Now())

	got, err := svc.Search(context.Background(), userID, "   ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d leads, want 2", len(got))
	}
}

func TestDetailIncludesMatchedProperties(t *testing.T) {
	store := newFakeStore()
	matcher := &fakeMatcher{matches: []PropertyMatch{
		{ID: uuid.New(), Title: "Ocean View Condo", Address: "12 Ocean Drive", Price: 450000, Status: "Active"},
		{ID: uuid.New(), Title: "Ocean Breeze Villa", Address: "14 Ocean Drive", Price: 780000, Status: "Active"},
		{ID: uuid.New(), Title: "Oceanside Cottage", Address: "16 Ocean Drive", Price: 320000, Status: "Active"},
		{ID: uuid.New(), Title: "One Too Many", Address: "18 Ocean Drive", Price: 999999, Status: "Active"},
	}}
	svc := newTestService(store, matcher, &fakeBus{})
	userID := uuid.New()

	lead := seedLead(store, userID, "Buyer", domain.StatusNew, 50, time.Now())
	lead.PropertyOfInterest = ptr("Ocean Drive")
	store.leads[lead.ID] = lead

	detail, err := svc.Detail(context.Background(), lead.ID, userID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if matcher.gotTerm != "Ocean Drive" {
		t.Errorf("matcher received term %q, want the lead's stated interest", matcher.gotTerm)
	}
	if len(detail.MatchedProperties) != MatchedPropertiesLimit {
		t.Errorf("got %d matched properties, want capped at %d", len(detail.MatchedProperties), MatchedPropertiesLimit)
	}
}

func TestDetailWithoutInterestSkipsMatching(t *testing.T) {
	store := newFakeStore()
	matcher := &fakeMatcher{matches: []PropertyMatch{{Title: "Should Not Appear"}}}
	svc := newTestService(store, matcher, &fakeBus{})
	userID := uuid.New()

	lead := seedLead(store, userID, "Undecided", domain.StatusNew, 50, time.Now())

	detail, err := svc.Detail(context.Background(), lead.ID, userID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if len(detail.MatchedProperties) != 0 {
		t.Errorf("got %d matched properties for a lead with no stated interest, want 0", len(detail.MatchedProperties))
	}
	if matcher.gotTerm != "" {
		t.Error("matcher was consulted for a lead with no stated interest")
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, &fakeBus{})
	userID := uuid.New()
	lead := seedLead(store, userID, "Before", domain.StatusNew, 50, time.Now().Add(-time.Hour))

	resp, err := svc.Update(context.Background(), lead.ID, userID, transport.UpdateLeadRequest{
		Name:               ptr("After"),
		PropertyOfInterest: ptr("7 Elm St"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if resp.Name != "After" || resp.PropertyOfInterest == nil || *resp.PropertyOfInterest != "7 Elm St" {
		t.Errorf("updated lead = %+v", resp)
	}
	if resp.Email != lead.Email {
		t.Errorf("untouched email changed: %q -> %q", lead.Email, resp.Email)
	}
	if !resp.UpdatedAt.After(lead.UpdatedAt) {
		t.Error("updatedAt was not advanced by the edit")
	}
}

func TestAddActivityRequiresOwnership(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, &fakeBus{})
	lead := seedLead(store, uuid.New(), "Guarded", domain.StatusNew, 50, time.Now())

	_, err := svc.AddActivity(context.Background(), lead.ID, uuid.New(), transport.AddActivityRequest{
		Type:    domain.ActivityTypeNote,
		Content: "should not land",
	})
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("err = %v, want not-found", err)
	}
	if len(store.activities) != 0 {
		t.Error("activity was stored despite failed ownership check")
	}
}

var errBoom = errors.New("boom")

type failingStore struct{ *fakeStore }

func (f failingStore) List(context.Context, uuid.UUID) ([]repository.Lead, error) {
	return nil, errBoom
}

func TestStorageFailureMapsToPersistenceError(t *testing.T) {
	svc := newTestService(failingStore{newFakeStore()}, nil, &fakeBus{})
	_, err := svc.List(context.Background(), uuid.New())
	if apperr.GetKind(err) != apperr.KindPersistence {
		t.Fatalf("err = %v, want persistence error", err)
	}
}
