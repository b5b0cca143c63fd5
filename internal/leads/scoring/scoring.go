// Package scoring computes a lead's AI score and its human-readable factor
// summary at intake. The model is deterministic: the same intake always
// yields the same score, so re-imports and retries never drift.
package scoring

import (
	"hash/fnv"
	"strings"

	"terraflow_backend/internal/leads/domain"
)

// Input is the subset of intake fields the model reads.
type Input struct {
	Name               string
	Email              string
	Phone              string
	Source             domain.Source
	PropertyOfInterest string
}

// Result carries the score and the ordered factor summary.
type Result struct {
	// Score is in [0, 100].
	Score int
	// Factors is a comma-joined explanation of the score, e.g.
	// "High trust source, Phone number provided".
	Factors string
}

// Score evaluates an intake against the weights.
//
// Factor strings are appended in a fixed priority order so the summary reads
// most-significant first. A lead matching no boost is explained as a plain
// manual entry.
func Score(in Input, w Weights) Result {
	score := w.Base
	var factors []string

	if in.Source == domain.SourceReferral {
		score += w.Referral
		factors = append(factors, "High trust source")
	}
	if strings.TrimSpace(in.PropertyOfInterest) != "" {
		score += w.PropertyInterest
		factors = append(factors, "Specific property interest")
	}
	if strings.TrimSpace(in.Phone) != "" {
		score += w.Phone
		factors = append(factors, "Phone number provided")
	}
	if boost, ok := w.SourceBoosts[string(in.Source)]; ok {
		score += boost
	}

	// Spread identical profiles across a small band so dashboards don't
	// show walls of equal scores. Seeded from stable identity fields.
	score += jitter(in) - jitterSpread/2

	if score < w.Floor {
		score = w.Floor
	}
	if score > w.Ceiling {
		score = w.Ceiling
	}

	if len(factors) == 0 {
		factors = append(factors, "Generated from manual entry")
	}

	return Result{Score: score, Factors: strings.Join(factors, ", ")}
}

const jitterSpread = 7

func jitter(in Input) int {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(in.Email))))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(in.Name))))
	h.Write([]byte{0})
	h.Write([]byte(in.Source))
	return int(h.Sum32() % jitterSpread)
}
