// Package reconcile decides which entity records, across sources, denote
// the same real-world entity.
//
// Every unordered pair of records is scored against a fixed, named
// feature set, then pushed through an ordered decision policy
// (blacklist, whitelist, country constraint, thresholds). Auto-merge
// decisions repoint a non-compressing canonical map in deterministic
// pair order, so identical records and rules always produce byte-identical
// audit artifacts.
package reconcile
