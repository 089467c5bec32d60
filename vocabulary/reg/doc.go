// Package reg defines the IRI vocabulary for the regulatory knowledge graph.
//
// All node identifiers in the graph are IRIs minted under a small set of
// fixed namespaces. Builders are pure functions: identical input always
// yields the identical IRI, which is what makes downstream caching and
// change detection possible. Legacy namespace forms left over from earlier
// graph generations are rewritten by CanonicalizeIRI.
package reg
