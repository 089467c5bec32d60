// Package export serializes knowledge-graph triples and quads to RDF text
// formats. All serializations are deterministic: statements are emitted in
// sorted order of their full textual form so repeated exports of the same
// graph are byte-identical and diff cleanly.
package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/c360studio/regkg/vocabulary/reg"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatNQuads produces N-Quads (.nq) output.
	FormatNQuads Format = "nquads"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatNQuads: {
		Name:        FormatNQuads,
		MIMEType:    "application/n-quads",
		Extension:   ".nq",
		Description: "N-Quads - Line-based RDF format with graph labels",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// Triple represents a semantic triple for export.
type Triple struct {
	Subject   string
	Predicate string
	Object    any
}

// Quad is a triple with an optional named-graph label.
type Quad struct {
	Triple
	Graph string
}

// defaultPrefixes returns the standard namespace prefixes for Turtle output.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":    "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
		"owl":    "http://www.w3.org/2002/07/owl#",
		"xsd":    "http://www.w3.org/2001/XMLSchema#",
		"prov":   "http://www.w3.org/ns/prov#",
		"reg":    reg.Namespace,
		"res":    reg.ResourceNamespace,
		"entity": reg.EntityNamespace,
	}
}

// SerializeTriples serializes triples to the requested format. Statements
// are sorted by full textual form before writing.
func SerializeTriples(triples []Triple, format Format) (string, error) {
	quads := make([]Quad, len(triples))
	for i, t := range triples {
		quads[i] = Quad{Triple: t}
	}
	return SerializeQuads(quads, format)
}

// SerializeQuads serializes quads to the requested format. For FormatTurtle
// and FormatNTriples the graph label is dropped.
func SerializeQuads(quads []Quad, format Format) (string, error) {
	switch format {
	case FormatNTriples:
		return toNLines(quads, false), nil
	case FormatNQuads:
		return toNLines(quads, true), nil
	case FormatTurtle:
		return toTurtle(quads), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// toNLines writes one statement per line, sorted.
func toNLines(quads []Quad, withGraph bool) string {
	lines := make([]string, 0, len(quads))
	for _, q := range quads {
		var line string
		if withGraph && q.Graph != "" {
			line = fmt.Sprintf("<%s> <%s> %s <%s> .", q.Subject, q.Predicate, formatObjectNTriples(q.Object), q.Graph)
		} else {
			line = fmt.Sprintf("<%s> <%s> %s .", q.Subject, q.Predicate, formatObjectNTriples(q.Object))
		}
		lines = append(lines, line)
	}
	sort.Strings(lines)

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// toTurtle writes prefix declarations followed by one statement per line.
// Full IRIs are kept rather than compacted so the statement sort order
// matches the N-Triples serialization of the same graph.
func toTurtle(quads []Quad) string {
	var sb strings.Builder

	prefixes := defaultPrefixes()
	keys := make([]string, 0, len(prefixes))
	for k := range prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, prefix := range keys {
		sb.WriteString(fmt.Sprintf("@prefix %s: <%s> .\n", prefix, prefixes[prefix]))
	}
	sb.WriteString("\n")

	lines := make([]string, 0, len(quads))
	for _, q := range quads {
		lines = append(lines, fmt.Sprintf("<%s> <%s> %s .", q.Subject, q.Predicate, formatObjectTurtle(q.Object)))
	}
	sort.Strings(lines)
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatObjectTurtle formats an object value for Turtle output.
func formatObjectTurtle(obj any) string {
	switch v := obj.(type) {
	case string:
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			return fmt.Sprintf("<%s>", v)
		}
		if _, err := time.Parse(time.RFC3339, v); err == nil {
			return fmt.Sprintf("\"%s\"^^xsd:dateTime", v)
		}
		return fmt.Sprintf("\"%s\"", escapeString(v))
	case int, int32, int64:
		return fmt.Sprintf("\"%d\"^^xsd:integer", v)
	case float32, float64:
		return fmt.Sprintf("\"%f\"^^xsd:decimal", v)
	case bool:
		return fmt.Sprintf("\"%t\"^^xsd:boolean", v)
	default:
		return fmt.Sprintf("\"%v\"", v)
	}
}

// formatObjectNTriples formats an object value for N-Triples/N-Quads output.
func formatObjectNTriples(obj any) string {
	switch v := obj.(type) {
	case string:
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			return fmt.Sprintf("<%s>", v)
		}
		if _, err := time.Parse(time.RFC3339, v); err == nil {
			return fmt.Sprintf("\"%s\"^^<http://www.w3.org/2001/XMLSchema#dateTime>", v)
		}
		return fmt.Sprintf("\"%s\"", escapeString(v))
	case int, int32, int64:
		return fmt.Sprintf("\"%d\"^^<http://www.w3.org/2001/XMLSchema#integer>", v)
	case float32, float64:
		return fmt.Sprintf("\"%f\"^^<http://www.w3.org/2001/XMLSchema#decimal>", v)
	case bool:
		return fmt.Sprintf("\"%t\"^^<http://www.w3.org/2001/XMLSchema#boolean>", v)
	default:
		return fmt.Sprintf("\"%v\"", v)
	}
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
