package repository

import (
	"strings"
	"testing"
)

func TestAccountScopedQueriesFilterByUserID(t *testing.T) {
	queries := map[string]string{
		"getLeadQuery":          getLeadQuery,
		"listLeadsQuery":        listLeadsQuery,
		"searchLeadsQuery":      searchLeadsQuery,
		"hotLeadsQuery":         hotLeadsQuery,
		"needingAttentionQuery": needingAttentionQuery,
		"bulkDeleteQuery":       bulkDeleteQuery,
	}

	for name, query := range queries {
		if !strings.Contains(strings.ToLower(query), "user_id = $") {
			t.Errorf("%s is missing the user_id scope:\n%s", name, query)
		}
	}
}

func TestHotLeadsQueryUsesStrictThreshold(t *testing.T) {
	q := strings.ToLower(hotLeadsQuery)
	if !strings.Contains(q, "ai_score > $") {
		t.Fatal("hot leads query must use a strict greater-than comparison")
	}
	if !strings.Contains(q, "order by ai_score desc") {
		t.Fatal("hot leads query must order by score descending")
	}
}

func TestNeedingAttentionQueryOrdersOldestFirst(t *testing.T) {
	q := strings.ToLower(needingAttentionQuery)
	if !strings.Contains(q, "updated_at < $") {
		t.Fatal("needing-attention query must use a strict staleness cutoff")
	}
	if !strings.Contains(q, "order by updated_at asc") {
		t.Fatal("needing-attention query must surface the most neglected leads first")
	}
}

func TestStaleScanQueryIsTheOnlyCrossAccountRead(t *testing.T) {
	// The background scan deliberately spans accounts; it must not be
	// confused with the request-path queries above.
	if strings.Contains(strings.ToLower(staleAcrossAccountsQuery), "user_id = $") {
		t.Fatal("stale scan query should not be account-scoped")
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"50%", `50\%`},
		{"under_score", `under\_score`},
		{`back\slash`, `back\\slash`},
	}
	for _, tc := range tests {
		if got := escapeLike(tc.in); got != tc.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
