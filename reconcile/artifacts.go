package reconcile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gowebpki/jcs"
	"github.com/klauspost/compress/gzip"

	"github.com/c360studio/regkg/export"
	"github.com/c360studio/regkg/vocabulary/reg"
)

// Artifact file names within the output directory.
const (
	IDMapFile     = "id_map.csv"
	DecisionsFile = "decisions.ndjson.gz"
	SummaryFile   = "summary.json"
	ConflictsFile = "conflicts.json"
	SameAsFile    = "same_as.nt"
)

// WriteArtifacts writes the full artifact set for a completed run into
// dir. Every file is byte-reproducible given identical input and rules.
// Artifacts are always written for a completed run; rejects are normal
// outcomes, not failures.
func WriteArtifacts(dir string, result *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	if err := writeIDMap(filepath.Join(dir, IDMapFile), result.Canonical); err != nil {
		return err
	}
	if err := writeDecisions(filepath.Join(dir, DecisionsFile), result.Decisions); err != nil {
		return err
	}
	if err := writeCanonicalJSON(filepath.Join(dir, SummaryFile), result.Summary); err != nil {
		return err
	}
	if err := writeCanonicalJSON(filepath.Join(dir, ConflictsFile), result.Conflicts()); err != nil {
		return err
	}
	return writeSameAs(filepath.Join(dir, SameAsFile), result.Canonical)
}

// writeIDMap writes the canonical mapping as delimited text, rows sorted
// by (canonical_id, source_id).
func writeIDMap(path string, canonical CanonicalMap) error {
	type row struct{ canonical, source string }
	rows := make([]row, 0, len(canonical))
	for source, canon := range canonical {
		rows = append(rows, row{canonical: canon, source: source})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].canonical != rows[j].canonical {
			return rows[i].canonical < rows[j].canonical
		}
		return rows[i].source < rows[j].source
	})

	var sb strings.Builder
	sb.WriteString("canonical_id,source_id\n")
	for _, r := range rows {
		sb.WriteString(r.canonical)
		sb.WriteString(",")
		sb.WriteString(r.source)
		sb.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write id map: %w", err)
	}
	return nil
}

// writeDecisions writes the gzip-compressed line-delimited JSON decisions
// log, one object per pair, in pair-iteration order.
func writeDecisions(path string, decisions []Decision) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create decisions log: %w", err)
	}
	defer f.Close()

	// The default gzip header has a zero mtime, so the compressed bytes
	// are reproducible.
	zw := gzip.NewWriter(f)
	enc := json.NewEncoder(zw)
	for _, d := range decisions {
		if err := enc.Encode(d); err != nil {
			zw.Close()
			return fmt.Errorf("encode decision %s|%s: %w", d.Left, d.Right, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close decisions log: %w", err)
	}
	return f.Close()
}

// writeCanonicalJSON writes v as RFC 8785 canonical JSON (sorted keys,
// fixed number formatting) so the artifact is byte-stable.
func writeCanonicalJSON(path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return fmt.Errorf("canonicalize %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(canonical, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeSameAs writes one owl:sameAs fact per merged-away id.
func writeSameAs(path string, canonical CanonicalMap) error {
	triples, err := SameAsTriples(canonical)
	if err != nil {
		return err
	}
	out, err := export.SerializeTriples(triples, export.FormatNTriples)
	if err != nil {
		return fmt.Errorf("serialize same-as facts: %w", err)
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write same-as facts: %w", err)
	}
	return nil
}

// SameAsTriples builds the owl:sameAs fact set for every merged-away id.
func SameAsTriples(canonical CanonicalMap) ([]export.Triple, error) {
	triples := make([]export.Triple, 0)
	for source, canon := range canonical {
		if source == canon {
			continue
		}
		sourceIRI, err := reg.EntityIRI(source)
		if err != nil {
			return nil, fmt.Errorf("same-as subject: %w", err)
		}
		canonIRI, err := reg.EntityIRI(canon)
		if err != nil {
			return nil, fmt.Errorf("same-as object: %w", err)
		}
		triples = append(triples, export.Triple{
			Subject:   sourceIRI,
			Predicate: reg.OwlSameAs,
			Object:    canonIRI,
		})
	}
	return triples, nil
}
