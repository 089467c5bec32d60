// Package provenance records where each graph subject came from and
// detects upstream change between runs.
//
// The ledger keeps one current entry per subject IRI in a durable JSON
// manifest. Recording a subject whose content hash matches the stored
// entry is a no-op, so a rerun over unchanged inputs produces zero
// provenance-graph writes. Activity and request identifiers are minted
// deterministically from the request key, so identical retrievals reuse
// identical IRIs across runs.
package provenance
