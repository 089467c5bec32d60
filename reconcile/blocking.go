package reconcile

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"
)

// BlockingKey holds the cheap approximate keys for one record. Records
// sharing a key are likely duplicates; keys exist to shard the pairwise
// work across independent buckets.
type BlockingKey struct {
	// Phonetic is the Soundex code of the first normalized name token.
	Phonetic string
	// Alnum is the normalized name reduced to alphanumerics only.
	Alnum string
	// CountryName is the country joined with the first name token.
	CountryName string
}

// BlockingKeys computes the blocking keys for a record.
func BlockingKeys(r EntityRecord) BlockingKey {
	tokens := Tokens(r.Name)
	first := ""
	if len(tokens) > 0 {
		first = tokens[0]
	}

	var key BlockingKey
	if first != "" {
		key.Phonetic = smetrics.Soundex(first)
	}
	key.Alnum = alnumOnly(strings.Join(tokens, ""))
	if first != "" {
		key.CountryName = strings.ToUpper(strings.TrimSpace(r.Country)) + ":" + first
	}
	return key
}

// Buckets groups records by phonetic blocking key. Each bucket is an
// independent unit of pairwise work; records without a phonetic key land
// in the empty-string bucket. Bucket contents keep input order.
func Buckets(records []EntityRecord) map[string][]EntityRecord {
	buckets := make(map[string][]EntityRecord)
	for _, r := range records {
		key := BlockingKeys(r).Phonetic
		buckets[key] = append(buckets[key], r)
	}
	return buckets
}

// BucketKeys returns bucket keys in sorted order for deterministic
// iteration.
func BucketKeys(buckets map[string][]EntityRecord) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func alnumOnly(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
