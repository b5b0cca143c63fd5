package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights tunes the scoring model. Agencies adjust these in a config file
// without a redeploy; DefaultWeights is used when no file is configured.
type Weights struct {
	// Base is the floor every lead starts from before boosts.
	Base int `yaml:"base"`
	// Referral is added for referral-sourced leads.
	Referral int `yaml:"referral"`
	// PropertyInterest is added when a specific property is named.
	PropertyInterest int `yaml:"propertyInterest"`
	// Phone is added when a phone number is provided.
	Phone int `yaml:"phone"`
	// SourceBoosts maps additional per-source adjustments.
	SourceBoosts map[string]int `yaml:"sourceBoosts"`
	// Floor and Ceiling clamp the final score.
	Floor   int `yaml:"floor"`
	Ceiling int `yaml:"ceiling"`
}

// DefaultWeights returns the built-in scoring model.
func DefaultWeights() Weights {
	return Weights{
		Base:             48,
		Referral:         22,
		PropertyInterest: 12,
		Phone:            6,
		SourceBoosts: map[string]int{
			"website-chatbot":  4,
			"property-listing": 8,
			"paid-ads":         2,
		},
		Floor:   40,
		Ceiling: 99,
	}
}

// LoadWeights reads a weights file, filling unset clamps from the defaults.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("read scoring weights: %w", err)
	}

	w := DefaultWeights()
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("parse scoring weights: %w", err)
	}
	if w.Floor < 0 {
		w.Floor = 0
	}
	if w.Ceiling > 100 || w.Ceiling <= w.Floor {
		return Weights{}, fmt.Errorf("scoring weights: ceiling %d out of range (floor %d)", w.Ceiling, w.Floor)
	}
	return w, nil
}
