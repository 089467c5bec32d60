package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules is the reconciliation rules configuration. Missing or invalid
// thresholds are a fatal configuration error surfaced by Validate before
// any scoring starts.
type Rules struct {
	// Thresholds holds the auto-merge and review score cutoffs.
	Thresholds *Thresholds `yaml:"thresholds"`
	// Weights maps feature names to score weights.
	Weights map[string]float64 `yaml:"weights"`
	// Sources maps source names to trust bonuses.
	Sources map[string]float64 `yaml:"sources"`
	// Whitelist maps ordered pair keys ("left|right", ids sorted) to the
	// reason the pair is always merged.
	Whitelist map[string]string `yaml:"whitelist"`
	// Blacklist maps ordered pair keys to the reason the pair is never
	// merged.
	Blacklist map[string]string `yaml:"blacklist"`
}

// Thresholds holds the decision score cutoffs.
type Thresholds struct {
	// High is the auto-merge cutoff.
	High float64 `yaml:"high" json:"high"`
	// Low is the review cutoff.
	Low float64 `yaml:"low" json:"low"`
}

// PairKey builds the white/blacklist lookup key for two record ids.
// The lower id sorts first so the key is orientation-independent.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// Validate checks the rules for fatal configuration errors.
func (r *Rules) Validate() error {
	if r.Thresholds == nil {
		return fmt.Errorf("thresholds are required")
	}
	if r.Thresholds.High <= 0 {
		return fmt.Errorf("thresholds.high must be positive, got %v", r.Thresholds.High)
	}
	if r.Thresholds.Low <= 0 {
		return fmt.Errorf("thresholds.low must be positive, got %v", r.Thresholds.Low)
	}
	if r.Thresholds.Low > r.Thresholds.High {
		return fmt.Errorf("thresholds.low (%v) must not exceed thresholds.high (%v)", r.Thresholds.Low, r.Thresholds.High)
	}
	for name, w := range r.Weights {
		if w < 0 {
			return fmt.Errorf("weights.%s must not be negative, got %v", name, w)
		}
	}
	for key := range r.Whitelist {
		if !strings.Contains(key, "|") {
			return fmt.Errorf("whitelist key %q is not a pair key", key)
		}
	}
	for key := range r.Blacklist {
		if !strings.Contains(key, "|") {
			return fmt.Errorf("blacklist key %q is not a pair key", key)
		}
	}
	return nil
}

// Weight returns the configured weight for a feature, or 0 when the
// feature is not configured.
func (r *Rules) Weight(feature string) float64 {
	return r.Weights[feature]
}

// Trust returns the configured trust bonus for a source.
func (r *Rules) Trust(source string) float64 {
	return r.Sources[source]
}

// LoadRules loads and validates a Rules file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules %s: %w", path, err)
	}
	return &rules, nil
}
