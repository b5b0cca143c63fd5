package repository

import (
	"strings"
	"testing"
)

func TestOwnerScopedQueriesFilterByUserID(t *testing.T) {
	queries := map[string]string{
		"getPropertyQuery":     getPropertyQuery,
		"listPropertiesQuery":  listPropertiesQuery,
		"matchPropertiesQuery": matchPropertiesQuery,
	}

	for name, query := range queries {
		if !strings.Contains(strings.ToLower(query), "user_id = $") {
			t.Errorf("%s is missing the user_id scope:\n%s", name, query)
		}
	}
}

func TestPublicQueryServesActiveListingsOnly(t *testing.T) {
	q := getPublicPropertyQuery
	if strings.Contains(strings.ToLower(q), "user_id") {
		t.Fatal("public lookup must not be owner-scoped")
	}
	if !strings.Contains(q, "status = 'Active'") {
		t.Fatal("public lookup must only serve active listings")
	}
}

func TestMatchQueryIsBoundedAndActiveOnly(t *testing.T) {
	q := matchPropertiesQuery
	if !strings.Contains(q, "status = 'Active'") {
		t.Fatal("matching must only suggest active listings")
	}
	if !strings.Contains(q, "ILIKE") {
		t.Fatal("matching must be case-insensitive")
	}
	if !strings.Contains(q, "LIMIT $3") {
		t.Fatal("matching must be bounded by the caller's limit")
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusActive, StatusUnderOffer, StatusSold, StatusArchived} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false", s)
		}
	}
	if ValidStatus("Deleted") {
		t.Error("listings are never deleted; Deleted must not be a valid status")
	}
}
