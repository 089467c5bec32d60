package reconcile

import (
	"net/url"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/c360studio/regkg/config"
)

// Feature names as they appear in rules weights and audit artifacts.
const (
	FeatureExactName        = "exact_name"
	FeatureTokenJaccard     = "token_jaccard"
	FeatureJaroWinkler      = "jaro_winkler"
	FeaturePrefixSuffix     = "prefix_suffix"
	FeatureCountryMatch     = "country_match"
	FeatureSharedIdentifier = "shared_identifier"
	FeatureURLHost          = "url_host"
	FeatureSourceTrust      = "source_trust"
)

// Feature is one scored comparison feature. Contribution is always
// Value * Weight; all three are retained for explainability.
type Feature struct {
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// PairScore is the closed feature vector for one record pair. The
// feature set is fixed; adding a feature means adding a field here and a
// weight name above.
type PairScore struct {
	ExactName        Feature `json:"exact_name"`
	TokenJaccard     Feature `json:"token_jaccard"`
	JaroWinkler      Feature `json:"jaro_winkler"`
	PrefixSuffix     Feature `json:"prefix_suffix"`
	CountryMatch     Feature `json:"country_match"`
	SharedIdentifier Feature `json:"shared_identifier"`
	URLHost          Feature `json:"url_host"`
	SourceTrust      Feature `json:"source_trust"`

	Total float64 `json:"total"`
}

// Features returns the score's features keyed by feature name.
func (s PairScore) Features() map[string]Feature {
	return map[string]Feature{
		FeatureExactName:        s.ExactName,
		FeatureTokenJaccard:     s.TokenJaccard,
		FeatureJaroWinkler:      s.JaroWinkler,
		FeaturePrefixSuffix:     s.PrefixSuffix,
		FeatureCountryMatch:     s.CountryMatch,
		FeatureSharedIdentifier: s.SharedIdentifier,
		FeatureURLHost:          s.URLHost,
		FeatureSourceTrust:      s.SourceTrust,
	}
}

// ScorePair computes the weighted feature vector for one record pair.
func ScorePair(left, right EntityRecord, rules *config.Rules) PairScore {
	leftName := Normalize(left.Name)
	rightName := Normalize(right.Name)

	feature := func(name string, value float64) Feature {
		w := rules.Weight(name)
		return Feature{Value: value, Weight: w, Contribution: value * w}
	}

	var score PairScore
	score.ExactName = feature(FeatureExactName, boolValue(leftName != "" && leftName == rightName))
	score.TokenJaccard = feature(FeatureTokenJaccard, tokenJaccard(leftName, rightName))
	score.JaroWinkler = feature(FeatureJaroWinkler, smetrics.JaroWinkler(leftName, rightName, 0.7, 4))
	score.PrefixSuffix = feature(FeaturePrefixSuffix, prefixSuffixRatio(leftName, rightName))
	score.CountryMatch = feature(FeatureCountryMatch, boolValue(countryMatch(left.Country, right.Country)))
	score.SharedIdentifier = feature(FeatureSharedIdentifier, boolValue(sharedIdentifier(left, right)))
	score.URLHost = feature(FeatureURLHost, boolValue(sameURLHost(left.URL, right.URL)))
	score.SourceTrust = feature(FeatureSourceTrust, (rules.Trust(left.Source)+rules.Trust(right.Source))/2)

	for _, f := range score.Features() {
		score.Total += f.Contribution
	}
	return score
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// tokenJaccard computes Jaccard similarity over normalized name tokens.
func tokenJaccard(a, b string) float64 {
	aTokens := strings.Fields(a)
	bTokens := strings.Fields(b)
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}

	set := make(map[string]bool, len(aTokens))
	for _, tok := range aTokens {
		set[tok] = true
	}
	intersection := 0
	bSet := make(map[string]bool, len(bTokens))
	for _, tok := range bTokens {
		if bSet[tok] {
			continue
		}
		bSet[tok] = true
		if set[tok] {
			intersection++
		}
	}
	union := len(set) + len(bSet) - intersection
	return float64(intersection) / float64(union)
}

// prefixSuffixRatio is the larger of the common-prefix and common-suffix
// lengths over the longer name length.
func prefixSuffixRatio(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}

	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a) && suffix < len(b) && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	best := prefix
	if suffix > best {
		best = suffix
	}
	return float64(best) / float64(longer)
}

// countryMatch is true only when both countries are present and equal. A
// failed match is a hard reject in Decide, so a missing country rejects
// the pair rather than leaving the constraint unknown.
func countryMatch(a, b string) bool {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	return a != "" && a == b
}

// sharedIdentifier is true when any external identifier scheme is present
// on both records with the same value.
func sharedIdentifier(left, right EntityRecord) bool {
	leftIDs := left.ExternalIdentifiers()
	for scheme, value := range right.ExternalIdentifiers() {
		if leftIDs[scheme] != "" && leftIDs[scheme] == value {
			return true
		}
	}
	return false
}

// sameURLHost is true when both records carry URLs with the same host.
func sameURLHost(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	hostA := strings.ToLower(strings.TrimPrefix(ua.Hostname(), "www."))
	hostB := strings.ToLower(strings.TrimPrefix(ub.Hostname(), "www."))
	return hostA != "" && hostA == hostB
}
