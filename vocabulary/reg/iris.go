package reg

import (
	"errors"
	"fmt"
	"strings"
)

// Namespace is the base IRI prefix for regulatory ontology terms.
const Namespace = "https://regkg.dev/ontology/reg/"

// ResourceNamespace is the base IRI for regulatory resource instances
// (sections, paragraphs, provenance activities).
const ResourceNamespace = "https://regkg.dev/resource/"

// EntityNamespace is the base IRI for entity-record instances.
const EntityNamespace = "https://regkg.dev/entity/"

// Standard ontology IRI constants used by provenance and merge facts.
const (
	// RdfType is the rdf:type property.
	RdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

	// OwlSameAs asserts two IRIs denote the same individual.
	OwlSameAs = "http://www.w3.org/2002/07/owl#sameAs"

	// ProvActivity is the PROV-O Activity class.
	ProvActivity = "http://www.w3.org/ns/prov#Activity"

	// ProvEntity is the PROV-O Entity class.
	ProvEntity = "http://www.w3.org/ns/prov#Entity"

	// ProvWasDerivedFrom links a subject to its upstream source.
	ProvWasDerivedFrom = "http://www.w3.org/ns/prov#wasDerivedFrom"

	// ProvWasGeneratedBy links a subject to the retrieval activity.
	ProvWasGeneratedBy = "http://www.w3.org/ns/prov#wasGeneratedBy"

	// ProvUsed links an activity to the request it issued.
	ProvUsed = "http://www.w3.org/ns/prov#used"

	// ProvEndedAtTime is the activity end timestamp.
	ProvEndedAtTime = "http://www.w3.org/ns/prov#endedAtTime"

	// ProvAtLocation is the location (URL) of a request entity.
	ProvAtLocation = "http://www.w3.org/ns/prov#atLocation"
)

// Data property IRIs in the regkg namespace.
const (
	// PropContentHash is the digest of the normalized upstream content.
	PropContentHash = Namespace + "contentHash"

	// PropProvider is the upstream provider domain.
	PropProvider = Namespace + "provider"
)

// Resource path segments under ResourceNamespace.
const (
	sectionSegment   = "section/"
	paragraphSegment = "paragraph/"
	activitySegment  = "activity/"
	requestSegment   = "request/"
)

// paragraphHashLen is the truncated content-hash prefix used for
// paragraph node identifiers.
const paragraphHashLen = 16

// ErrInvalidIdentifier is returned by IRI builders on empty or
// malformed input.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// legacyNamespaces maps retired namespace prefixes to their canonical
// replacements. Earlier graph generations minted IRIs under the plain-http
// and w3id forms.
var legacyNamespaces = map[string]string{
	"http://regkg.dev/resource/":       ResourceNamespace,
	"http://regkg.dev/entity/":         EntityNamespace,
	"https://w3id.org/regkg/resource/": ResourceNamespace,
	"https://w3id.org/regkg/entity/":   EntityNamespace,
}

// NormalizeSectionID normalizes a section reference like "15 CFR 734.3"
// to its canonical form "15-CFR-734.3": surrounding whitespace trimmed,
// internal runs of whitespace collapsed to a single hyphen, and purely
// alphabetic tokens upper-cased ("cfr" -> "CFR"). Mixed tokens such as
// "734.3(b)" are preserved as written.
func NormalizeSectionID(id string) (string, error) {
	fields := strings.Fields(id)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: empty section id", ErrInvalidIdentifier)
	}
	for i, f := range fields {
		if isAlphabetic(f) {
			fields[i] = strings.ToUpper(f)
		}
	}
	return strings.Join(fields, "-"), nil
}

// SectionIRI builds the canonical IRI for a regulatory section reference.
// The reference is normalized first, so "15 CFR 734.3" and "15  CFR 734.3"
// map to the same node.
func SectionIRI(id string) (string, error) {
	normalized, err := NormalizeSectionID(id)
	if err != nil {
		return "", err
	}
	return ResourceNamespace + sectionSegment + percentEncode(normalized), nil
}

// ParagraphIRI builds a content-addressed paragraph IRI from a sha256 hex
// digest. The digest is truncated to a fixed prefix; identical text always
// yields the identical node id.
func ParagraphIRI(sha256Hex string) (string, error) {
	h := strings.ToLower(strings.TrimSpace(sha256Hex))
	if len(h) < paragraphHashLen {
		return "", fmt.Errorf("%w: content hash %q shorter than %d hex chars", ErrInvalidIdentifier, sha256Hex, paragraphHashLen)
	}
	for _, c := range h {
		if !isHexDigit(c) {
			return "", fmt.Errorf("%w: content hash %q is not hex", ErrInvalidIdentifier, sha256Hex)
		}
	}
	return ResourceNamespace + paragraphSegment + h[:paragraphHashLen], nil
}

// EntityIRI builds the IRI for an entity record id. Characters outside the
// RFC 3986 unreserved set are percent-encoded.
func EntityIRI(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%w: empty entity id", ErrInvalidIdentifier)
	}
	return EntityNamespace + percentEncode(id), nil
}

// ActivityIRI builds a resource IRI for a provenance activity from a
// precomputed deterministic key.
func ActivityIRI(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty activity key", ErrInvalidIdentifier)
	}
	return ResourceNamespace + activitySegment + percentEncode(key), nil
}

// RequestIRI builds a resource IRI for a provenance request from a
// precomputed deterministic key.
func RequestIRI(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty request key", ErrInvalidIdentifier)
	}
	return ResourceNamespace + requestSegment + percentEncode(key), nil
}

// CanonicalizeIRI rewrites legacy namespace forms to their canonical
// replacements. It is idempotent: canonical IRIs, and IRIs from namespaces
// this package does not know about, pass through unchanged.
func CanonicalizeIRI(iri string) string {
	for legacy, canonical := range legacyNamespaces {
		if strings.HasPrefix(iri, legacy) {
			return canonical + iri[len(legacy):]
		}
	}
	return iri
}

// IsSectionIRI reports whether iri (after canonicalization) identifies a
// regulatory section node.
func IsSectionIRI(iri string) bool {
	return strings.HasPrefix(CanonicalizeIRI(iri), ResourceNamespace+sectionSegment)
}

// SectionIDFromIRI recovers the normalized section id from a section IRI.
// The second return is false when iri is not section-shaped.
func SectionIDFromIRI(iri string) (string, bool) {
	if !IsSectionIRI(iri) {
		return "", false
	}
	prefix := ResourceNamespace + sectionSegment
	id, err := percentDecode(CanonicalizeIRI(iri)[len(prefix):])
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

func isAlphabetic(s string) bool {
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return len(s) > 0
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

func isUnreserved(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '-' || c == '.' || c == '_' || c == '~'
}

// percentEncode encodes every byte outside the RFC 3986 unreserved set.
// url.PathEscape leaves sub-delims like "(" alone, which would put two
// spellings of the same id in the graph, so the unreserved set is applied
// directly.
func percentEncode(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
		} else {
			sb.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return sb.String()
}

func percentDecode(s string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			sb.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("truncated percent escape in %q", s)
		}
		var b byte
		if _, err := fmt.Sscanf(s[i+1:i+3], "%02X", &b); err != nil {
			return "", fmt.Errorf("bad percent escape in %q: %w", s, err)
		}
		sb.WriteByte(b)
		i += 2
	}
	return sb.String(), nil
}
