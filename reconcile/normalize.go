package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// corporateSuffixes are legal-form tokens stripped during normalization.
// Stored already normalized (folded, punctuation-free).
var corporateSuffixes = map[string]bool{
	"inc":          true,
	"incorporated": true,
	"corp":         true,
	"corporation":  true,
	"co":           true,
	"company":      true,
	"llc":          true,
	"llp":          true,
	"lp":           true,
	"ltd":          true,
	"limited":      true,
	"plc":          true,
	"gmbh":         true,
	"ag":           true,
	"sa":           true,
	"sarl":         true,
	"srl":          true,
	"bv":           true,
	"nv":           true,
	"ab":           true,
	"as":           true,
	"oy":           true,
	"kk":           true,
	"pty":          true,
	"pte":          true,
}

var foldCaser = cases.Fold()

// Normalize reduces an entity name to its canonical comparison form:
// Unicode NFC, case-fold, punctuation and symbols replaced by spaces,
// whitespace collapsed, and trailing corporate-suffix stopwords removed.
// Normalize is idempotent.
func Normalize(name string) string {
	s := norm.NFC.String(name)
	s = foldCaser.String(s)

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		// Dots and apostrophes join ("S.A." -> "sa", "O'Brien" ->
		// "obrien"); other punctuation splits.
		case r == '.' || r == '\'' || r == '’':
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			sb.WriteRune(' ')
		default:
			sb.WriteRune(r)
		}
	}

	tokens := strings.Fields(sb.String())

	// Strip suffix stopwords from the tail only; "Corporation City Services"
	// keeps its leading token.
	for len(tokens) > 1 && corporateSuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}

	return strings.Join(tokens, " ")
}

// Tokens returns the normalized name split into tokens.
func Tokens(name string) []string {
	normalized := Normalize(name)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}
