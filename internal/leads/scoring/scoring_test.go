package scoring

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"terraflow_backend/internal/leads/domain"
)

func TestScoreStaysInRange(t *testing.T) {
	w := DefaultWeights()
	inputs := []Input{
		{Name: "Bare Minimum", Email: "bare@example.com", Source: domain.SourceManualEntry},
		{Name: "Everything", Email: "max@example.com", Phone: "+15551234567", Source: domain.SourceReferral, PropertyOfInterest: "12 Ocean Drive"},
		{Name: "Chat", Email: "chat@example.com", Source: domain.SourceWebsiteChatbot},
		{Name: "Listing", Email: "listing@example.com", Phone: "+15559876543", Source: domain.SourcePropertyListing, PropertyOfInterest: "Unit 4B"},
	}

	for _, in := range inputs {
		got := Score(in, w)
		if got.Score < 0 || got.Score > 100 {
			t.Errorf("Score(%+v) = %d, want within [0, 100]", in, got.Score)
		}
		if got.Score < w.Floor || got.Score > w.Ceiling {
			t.Errorf("Score(%+v) = %d, want within [%d, %d]", in, got.Score, w.Floor, w.Ceiling)
		}
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	in := Input{Name: "Repeat Customer", Email: "repeat@example.com", Phone: "+15550001111", Source: domain.SourceReferral, PropertyOfInterest: "7 Elm St"}
	first := Score(in, DefaultWeights())
	for i := 0; i < 10; i++ {
		if got := Score(in, DefaultWeights()); got != first {
			t.Fatalf("run %d: Score = %+v, first run = %+v", i, got, first)
		}
	}
}

func TestScoreFactorOrdering(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name string
		in   Input
		want string
	}{
		{
			name: "all boosts in priority order",
			in:   Input{Name: "A", Email: "a@example.com", Phone: "+15550000001", Source: domain.SourceReferral, PropertyOfInterest: "3 Oak Lane"},
			want: "High trust source, Specific property interest, Phone number provided",
		},
		{
			name: "referral only",
			in:   Input{Name: "B", Email: "b@example.com", Source: domain.SourceReferral},
			want: "High trust source",
		},
		{
			name: "property and phone without referral",
			in:   Input{Name: "C", Email: "c@example.com", Phone: "+15550000002", Source: domain.SourcePaidAds, PropertyOfInterest: "9 Birch Rd"},
			want: "Specific property interest, Phone number provided",
		},
		{
			name: "nothing notable falls back to manual entry",
			in:   Input{Name: "D", Email: "d@example.com", Source: domain.SourceManualEntry},
			want: "Generated from manual entry",
		},
		{
			name: "whitespace-only property does not count",
			in:   Input{Name: "E", Email: "e@example.com", Source: domain.SourceOther, PropertyOfInterest: "   "},
			want: "Generated from manual entry",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.in, w)
			if got.Factors != tc.want {
				t.Errorf("Factors = %q, want %q", got.Factors, tc.want)
			}
		})
	}
}

func TestReferralOutscoresManualEntry(t *testing.T) {
	w := DefaultWeights()
	referral := Score(Input{Name: "Same Person", Email: "same@example.com", Source: domain.SourceReferral}, w)
	manual := Score(Input{Name: "Same Person", Email: "same@example.com", Source: domain.SourceManualEntry}, w)
	if referral.Score <= manual.Score {
		t.Errorf("referral score %d not greater than manual score %d", referral.Score, manual.Score)
	}
}

func TestLoadWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scoring.yaml")
	contents := strings.Join([]string{
		"base: 55",
		"referral: 30",
		"propertyInterest: 10",
		"phone: 4",
		"floor: 45",
		"ceiling: 98",
		"sourceBoosts:",
		"  paid-ads: 1",
	}, "\n")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}

	w, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	if w.Base != 55 || w.Referral != 30 || w.Floor != 45 || w.Ceiling != 98 {
		t.Errorf("unexpected weights: %+v", w)
	}
	if w.SourceBoosts["paid-ads"] != 1 {
		t.Errorf("sourceBoosts not parsed: %+v", w.SourceBoosts)
	}
}

func TestLoadWeightsRejectsBadClamp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scoring.yaml")
	if err := os.WriteFile(path, []byte("floor: 80\nceiling: 60\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWeights(path); err == nil {
		t.Fatal("expected error when ceiling <= floor")
	}
}
