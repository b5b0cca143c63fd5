package domain

import (
	"strings"
	"testing"
)

func TestApplyStatusChangeAllowsEveryTransition(t *testing.T) {
	// The pipeline is permissive: every pair of known statuses is a legal
	// transition, including reopening a closed lead.
	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			entry, err := ApplyStatusChange("Alice Wonderland", from, to)
			if err != nil {
				t.Fatalf("ApplyStatusChange(%q, %q) returned error: %v", from, to, err)
			}
			if entry.Type != ActivityTypeSystemUpdate {
				t.Errorf("transition %q -> %q: audit type = %q, want %q", from, to, entry.Type, ActivityTypeSystemUpdate)
			}
			if entry.Actor != ActorSystem {
				t.Errorf("transition %q -> %q: actor = %q, want %q", from, to, entry.Actor, ActorSystem)
			}
			if !strings.Contains(entry.Content, string(from)) || !strings.Contains(entry.Content, string(to)) {
				t.Errorf("transition %q -> %q: audit content %q does not mention both statuses", from, to, entry.Content)
			}
		}
	}
}

func TestApplyStatusChangeRejectsUnknownStatus(t *testing.T) {
	if _, err := ApplyStatusChange("Alice", StatusNew, Status("Archived")); err == nil {
		t.Fatal("expected error for unknown target status")
	}
}

func TestStatusValid(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusNew, true},
		{StatusContacted, true},
		{StatusViewingScheduled, true},
		{StatusOfferMade, true},
		{StatusQualified, true},
		{StatusUnqualified, true},
		{Status(""), false},
		{Status("new"), false}, // case sensitive
		{Status("Closed"), false},
	}

	for _, tc := range tests {
		if got := tc.status.Valid(); got != tc.want {
			t.Errorf("Status(%q).Valid() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestSourceValid(t *testing.T) {
	for _, source := range AllSources {
		if !source.Valid() {
			t.Errorf("Source(%q).Valid() = false, want true", source)
		}
	}
	if Source("billboard").Valid() {
		t.Error(`Source("billboard").Valid() = true, want false`)
	}
}
