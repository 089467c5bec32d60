package reconcile

import (
	"fmt"
	"strings"

	"github.com/c360studio/regkg/config"
)

// Outcome is the reconciliation decision for one pair.
type Outcome string

const (
	// OutcomeAutoMerge merges the pair into one canonical cluster.
	OutcomeAutoMerge Outcome = "auto_merge"
	// OutcomeReview defers the pair to a human.
	OutcomeReview Outcome = "review"
	// OutcomeReject keeps the pair separate. Reject is a normal outcome,
	// not an error.
	OutcomeReject Outcome = "reject"
)

// Decision records the outcome for one ordered pair, with the full
// feature detail retained for audit.
type Decision struct {
	Left    string    `json:"left"`
	Right   string    `json:"right"`
	Outcome Outcome   `json:"outcome"`
	Reason  string    `json:"reason"`
	Score   PairScore `json:"score"`
}

// Decide applies the ordered decision policy to a scored pair. Overrides
// are checked before the hard country constraint, which is checked before
// the score thresholds. The country constraint fails whenever the
// country_match feature scored zero, so a missing country rejects too.
func Decide(left, right EntityRecord, score PairScore, rules *config.Rules) Decision {
	d := Decision{Left: left.ID, Right: right.ID, Score: score}
	key := config.PairKey(left.ID, right.ID)

	if reason, ok := rules.Blacklist[key]; ok {
		d.Outcome = OutcomeReject
		d.Reason = fmt.Sprintf("blacklisted: %s", reason)
		return d
	}
	if reason, ok := rules.Whitelist[key]; ok {
		d.Outcome = OutcomeAutoMerge
		d.Reason = fmt.Sprintf("whitelisted: %s", reason)
		return d
	}
	if score.CountryMatch.Value == 0 {
		d.Outcome = OutcomeReject
		d.Reason = countryRejectReason(left.Country, right.Country)
		return d
	}
	switch {
	case score.Total >= rules.Thresholds.High:
		d.Outcome = OutcomeAutoMerge
		d.Reason = fmt.Sprintf("score %.4f >= high threshold %.4f", score.Total, rules.Thresholds.High)
	case score.Total >= rules.Thresholds.Low:
		d.Outcome = OutcomeReview
		d.Reason = fmt.Sprintf("score %.4f >= low threshold %.4f", score.Total, rules.Thresholds.Low)
	default:
		d.Outcome = OutcomeReject
		d.Reason = fmt.Sprintf("score %.4f below low threshold %.4f", score.Total, rules.Thresholds.Low)
	}
	return d
}

// countryRejectReason names which side of the country constraint failed.
func countryRejectReason(a, b string) string {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	if a == "" || b == "" {
		return "country missing"
	}
	return fmt.Sprintf("country mismatch: %s vs %s", a, b)
}
