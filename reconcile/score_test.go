package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c360studio/regkg/config"
)

func nameRules() *config.Rules {
	return &config.Rules{
		Thresholds: &config.Thresholds{High: 0.8, Low: 0.5},
		Weights: map[string]float64{
			FeatureExactName:        0.5,
			FeatureTokenJaccard:     0.2,
			FeatureJaroWinkler:      0.3,
			FeaturePrefixSuffix:     0.1,
			FeatureCountryMatch:     0.2,
			FeatureSharedIdentifier: 0.6,
			FeatureURLHost:          0.3,
			FeatureSourceTrust:      1.0,
		},
		Sources: map[string]float64{"gleif": 0.05},
	}
}

func TestScorePairExactName(t *testing.T) {
	left := EntityRecord{ID: "s1", Name: "ACME Corp.", Country: "US"}
	right := EntityRecord{ID: "s2", Name: "Acme Corporation", Country: "US"}

	score := ScorePair(left, right, nameRules())

	assert.Equal(t, 1.0, score.ExactName.Value)
	assert.Equal(t, 0.5, score.ExactName.Weight)
	assert.Equal(t, 0.5, score.ExactName.Contribution)
	assert.Equal(t, 1.0, score.CountryMatch.Value)
	assert.Equal(t, 1.0, score.JaroWinkler.Value)
	assert.Greater(t, score.Total, 0.8)
}

func TestScorePairTotalIsSumOfContributions(t *testing.T) {
	left := EntityRecord{ID: "s1", Name: "Acme Widgets", Country: "US", Source: "gleif", URL: "https://acme.example.com/a"}
	right := EntityRecord{ID: "s2", Name: "Acme Widget Group", Country: "US", URL: "https://www.acme.example.com/b"}

	score := ScorePair(left, right, nameRules())

	sum := 0.0
	for _, f := range score.Features() {
		assert.InDelta(t, f.Value*f.Weight, f.Contribution, 1e-9)
		sum += f.Contribution
	}
	assert.InDelta(t, sum, score.Total, 1e-9)
}

func TestTokenJaccard(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"acme widgets", "acme widgets", 1},
		{"acme widgets", "acme tools", 1.0 / 3.0},
		{"acme", "zenith", 0},
		{"", "acme", 0},
		{"acme acme widgets", "acme widgets", 1}, // duplicate tokens collapse
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, tokenJaccard(tt.a, tt.b), 1e-9, "%q vs %q", tt.a, tt.b)
	}
}

func TestPrefixSuffixRatio(t *testing.T) {
	// Common prefix "acme widget" = 11 chars over max len 12.
	assert.InDelta(t, 11.0/12.0, prefixSuffixRatio("acme widgets", "acme widgetx"), 1e-9)
	// Common suffix " widgets" = 8 chars over max len 13.
	assert.InDelta(t, 8.0/13.0, prefixSuffixRatio("acme widgets", "enith widgets"), 1e-9)
	assert.Equal(t, 1.0, prefixSuffixRatio("same", "same"))
	assert.Equal(t, 0.0, prefixSuffixRatio("", "x"))
}

func TestCountryMatch(t *testing.T) {
	assert.True(t, countryMatch("US", "us"))
	assert.True(t, countryMatch(" US ", "US"))
	assert.False(t, countryMatch("US", "FR"))
	// Missing country never matches.
	assert.False(t, countryMatch("", "FR"))
	assert.False(t, countryMatch("US", ""))
	assert.False(t, countryMatch("", ""))
}

func TestSharedIdentifier(t *testing.T) {
	a := EntityRecord{ID: "a", Name: "A", DUNS: "123456789"}
	b := EntityRecord{ID: "b", Name: "B", DUNS: "123456789", CAGE: "1AB23"}
	c := EntityRecord{ID: "c", Name: "C", CAGE: "9ZZ99"}

	assert.True(t, sharedIdentifier(a, b))
	assert.False(t, sharedIdentifier(a, c))
	assert.False(t, sharedIdentifier(b, c))
	// Empty identifiers never match each other.
	assert.False(t, sharedIdentifier(EntityRecord{ID: "x", Name: "X"}, EntityRecord{ID: "y", Name: "Y"}))
}

func TestSameURLHost(t *testing.T) {
	assert.True(t, sameURLHost("https://acme.com/about", "http://www.acme.com/"))
	assert.False(t, sameURLHost("https://acme.com", "https://other.com"))
	assert.False(t, sameURLHost("", "https://acme.com"))
	assert.False(t, sameURLHost("://bad", "https://acme.com"))
}

func TestSourceTrustAveragesBothSides(t *testing.T) {
	rules := nameRules()
	left := EntityRecord{ID: "a", Name: "Acme", Source: "gleif"}
	right := EntityRecord{ID: "b", Name: "Zenith", Source: "unknown"}

	score := ScorePair(left, right, rules)
	assert.InDelta(t, 0.025, score.SourceTrust.Value, 1e-9)
}
