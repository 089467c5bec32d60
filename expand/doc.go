// Package expand discovers short, confidence-ranked paths through an
// external knowledge graph for a set of starting regulation sections.
//
// The traversal is a bounded breadth-first search: depth is capped by a
// hop budget, the per-round frontier is capped by a survivor budget, and
// the final result is capped per section. Given identical gateway
// responses the output is byte-identical regardless of row order or
// worker scheduling.
//
// The graph store itself lives behind the narrow Gateway interface; the
// expander only composes query parameters and interprets rows.
package expand
