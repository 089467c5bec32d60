// Package graph publishes reconciliation merge facts and provenance
// statements to the knowledge-graph ingestion stream.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/regkg/export"
	"github.com/c360studio/regkg/reconcile"
)

// GraphIngestSubject is the stream subject the graph builder consumes.
const GraphIngestSubject = "graph.ingest.entity"

// Source tags attached to published triples.
const (
	sourceReconcile  = "regkg.reconcile"
	sourceProvenance = "regkg.provenance"
)

// PublishSameAs publishes one owl:sameAs fact per merged-away id from a
// completed reconciliation run. A nil client skips publishing.
func PublishSameAs(ctx context.Context, nc *natsclient.Client, canonical reconcile.CanonicalMap) error {
	if nc == nil {
		return nil
	}

	triples, err := reconcile.SameAsTriples(canonical)
	if err != nil {
		return fmt.Errorf("build same-as facts: %w", err)
	}
	if err := publishEntities(ctx, nc, triples, sourceReconcile); err != nil {
		return fmt.Errorf("publish same-as facts: %w", err)
	}
	return nil
}

// PublishProvenance publishes the PROV-O statements recorded by a ledger
// flush. The named-graph label is dropped; the ingestion stream carries
// plain triples. A nil client skips publishing.
func PublishProvenance(ctx context.Context, nc *natsclient.Client, quads []export.Quad) error {
	if nc == nil {
		return nil
	}

	triples := make([]export.Triple, len(quads))
	for i, q := range quads {
		triples[i] = q.Triple
	}
	if err := publishEntities(ctx, nc, triples, sourceProvenance); err != nil {
		return fmt.Errorf("publish provenance: %w", err)
	}
	return nil
}

// publishEntities groups triples by subject and publishes one ingest
// payload per subject, in sorted subject order.
func publishEntities(ctx context.Context, nc *natsclient.Client, triples []export.Triple, source string) error {
	bySubject := make(map[string][]export.Triple)
	for _, t := range triples {
		bySubject[t.Subject] = append(bySubject[t.Subject], t)
	}
	subjects := make([]string, 0, len(bySubject))
	for s := range bySubject {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	now := time.Now()
	for _, subject := range subjects {
		entity := bySubject[subject]
		sort.Slice(entity, func(i, j int) bool {
			if entity[i].Predicate != entity[j].Predicate {
				return entity[i].Predicate < entity[j].Predicate
			}
			return fmt.Sprint(entity[i].Object) < fmt.Sprint(entity[j].Object)
		})

		msgTriples := make([]message.Triple, len(entity))
		for i, t := range entity {
			msgTriples[i] = message.Triple{
				Subject:    t.Subject,
				Predicate:  t.Predicate,
				Object:     t.Object,
				Source:     source,
				Timestamp:  now,
				Confidence: 1.0,
			}
		}

		data, err := json.Marshal(IngestPayload{
			EntityID_:  subject,
			TripleData: msgTriples,
			UpdatedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("marshal entity %s: %w", subject, err)
		}
		if err := nc.PublishToStream(ctx, GraphIngestSubject, data); err != nil {
			return fmt.Errorf("publish entity %s: %w", subject, err)
		}
	}
	return nil
}
