package expand

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gowebpki/jcs"
)

// pathIDLen is the hex length of a path id.
const pathIDLen = 16

// Edge is one directed, labeled connection in the graph.
type Edge struct {
	Source    string `json:"source"`
	Predicate string `json:"predicate"`
	Target    string `json:"target"`

	// Graph is the named graph the edge was found in, when the store
	// reports one.
	Graph string `json:"graph,omitempty"`

	// Confidence is the store's edge confidence, absent when unscored.
	Confidence *float64 `json:"confidence,omitempty"`

	// Label is a human-readable hint for the edge, when available.
	Label string `json:"label,omitempty"`

	// Related is a section id the store explicitly associates with the
	// edge, when available.
	Related string `json:"related,omitempty"`
}

// sortKey orders edges by (source, predicate, target, graph, confidence,
// related) so traversal output is independent of gateway row order.
// Unscored edges sort after scored ones.
func (e Edge) sortKey() string {
	conf := "~"
	if e.Confidence != nil {
		conf = strconv.FormatFloat(*e.Confidence, 'f', 6, 64)
	}
	return strings.Join([]string{e.Source, e.Predicate, e.Target, e.Graph, conf, e.Related}, "\x00")
}

// tuple is the (source, predicate, target) form used for lexicographic
// path tie-breaking and snippet rendering.
func (e Edge) tuple() string {
	return e.Source + "\x00" + e.Predicate + "\x00" + e.Target
}

// Path is one traversal result: an ordered edge walk from a start
// section.
type Path struct {
	// ID is the deterministic cache key for this path.
	ID string `json:"path_id"`

	// Start is the IRI of the starting section.
	Start string `json:"start"`

	Edges []Edge `json:"edges"`

	// Graph is set when every edge came from the same named graph.
	Graph string `json:"graph,omitempty"`

	// Confidence is the minimum confidence across the path's edges, the
	// weakest link. Absent when any edge is unscored.
	Confidence *float64 `json:"confidence,omitempty"`
}

// pathIDEdge is the portion of an edge that contributes to the path id.
type pathIDEdge struct {
	Source    string `json:"source"`
	Predicate string `json:"predicate"`
	Target    string `json:"target"`
}

// pathIDInput is the canonical content a path id is derived from.
type pathIDInput struct {
	Start string       `json:"start"`
	Edges []pathIDEdge `json:"edges"`
	Graph string       `json:"graph"`
}

// PathID computes the stable id for a path: the truncated SHA-256 of
// the RFC 8785 canonical JSON of {start, edges, graph}. It is a pure
// function of path content; no randomness, no wall clock.
func PathID(start string, edges []Edge, graph string) (string, error) {
	input := pathIDInput{Start: start, Graph: graph, Edges: make([]pathIDEdge, len(edges))}
	for i, e := range edges {
		input.Edges[i] = pathIDEdge{Source: e.Source, Predicate: e.Predicate, Target: e.Target}
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("marshal path id input: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize path id input: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])[:pathIDLen], nil
}

// sharedGraph returns the common named graph of the edges, or "" when
// they disagree.
func sharedGraph(edges []Edge) string {
	if len(edges) == 0 {
		return ""
	}
	graph := edges[0].Graph
	for _, e := range edges[1:] {
		if e.Graph != graph {
			return ""
		}
	}
	return graph
}

// minConfidence applies the weakest-link rule: the path confidence is
// the minimum edge confidence, and a single unscored edge leaves the
// whole path unscored.
func minConfidence(edges []Edge) *float64 {
	var minConf *float64
	for _, e := range edges {
		if e.Confidence == nil {
			return nil
		}
		if minConf == nil || *e.Confidence < *minConf {
			c := *e.Confidence
			minConf = &c
		}
	}
	return minConf
}

// tupleSequence renders a path's edges as the tie-breaking sort key.
func tupleSequence(edges []Edge) string {
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = e.tuple()
	}
	return strings.Join(parts, "\x01")
}

// lessPath orders candidate paths for survivor selection: higher
// confidence first, unscored paths last, ties broken lexicographically
// by the (source, predicate, target) tuple sequence.
func lessPath(a, b Path) bool {
	switch {
	case a.Confidence != nil && b.Confidence == nil:
		return true
	case a.Confidence == nil && b.Confidence != nil:
		return false
	case a.Confidence != nil && b.Confidence != nil && *a.Confidence != *b.Confidence:
		return *a.Confidence > *b.Confidence
	}
	return tupleSequence(a.Edges) < tupleSequence(b.Edges)
}
