package export_test

import (
	"strings"
	"testing"

	"github.com/c360studio/regkg/export"
	"github.com/c360studio/regkg/vocabulary/reg"
)

func sampleQuads() []export.Quad {
	return []export.Quad{
		{
			Triple: export.Triple{
				Subject:   reg.ResourceNamespace + "section/15-CFR-734.3",
				Predicate: reg.ProvWasGeneratedBy,
				Object:    reg.ResourceNamespace + "activity/deadbeefdeadbeef",
			},
			Graph: reg.ResourceNamespace + "graph/provenance",
		},
		{
			Triple: export.Triple{
				Subject:   reg.ResourceNamespace + "activity/deadbeefdeadbeef",
				Predicate: reg.RdfType,
				Object:    reg.ProvActivity,
			},
			Graph: reg.ResourceNamespace + "graph/provenance",
		},
		{
			Triple: export.Triple{
				Subject:   reg.ResourceNamespace + "section/15-CFR-734.3",
				Predicate: reg.PropContentHash,
				Object:    "a3f5b8c2d9e1f0a4",
			},
			Graph: reg.ResourceNamespace + "graph/provenance",
		},
	}
}

func TestSerializeNTriplesSorted(t *testing.T) {
	out, err := export.SerializeQuads(sampleQuads(), export.FormatNTriples)
	if err != nil {
		t.Fatalf("SerializeQuads failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(lines))
	}
	for i := 1; i < len(lines); i++ {
		if lines[i-1] > lines[i] {
			t.Errorf("output not sorted at line %d:\n%s\n%s", i, lines[i-1], lines[i])
		}
	}
	if strings.Contains(out, "graph/provenance>") && strings.Contains(lines[0], " <"+reg.ResourceNamespace+"graph/provenance> .") {
		t.Error("N-Triples output should drop the graph label")
	}
}

func TestSerializeNQuadsKeepsGraph(t *testing.T) {
	out, err := export.SerializeQuads(sampleQuads(), export.FormatNQuads)
	if err != nil {
		t.Fatalf("SerializeQuads failed: %v", err)
	}
	if !strings.Contains(out, "<"+reg.ResourceNamespace+"graph/provenance> .") {
		t.Error("N-Quads output should carry the graph label")
	}
}

func TestSerializeDeterministic(t *testing.T) {
	quads := sampleQuads()
	first, err := export.SerializeQuads(quads, export.FormatNQuads)
	if err != nil {
		t.Fatalf("SerializeQuads failed: %v", err)
	}

	// Reverse input order; output must be byte-identical.
	reversed := make([]export.Quad, 0, len(quads))
	for i := len(quads) - 1; i >= 0; i-- {
		reversed = append(reversed, quads[i])
	}
	second, err := export.SerializeQuads(reversed, export.FormatNQuads)
	if err != nil {
		t.Fatalf("SerializeQuads failed: %v", err)
	}
	if first != second {
		t.Error("serialization depends on input order")
	}
}

func TestSerializeTurtle(t *testing.T) {
	out, err := export.SerializeQuads(sampleQuads(), export.FormatTurtle)
	if err != nil {
		t.Fatalf("SerializeQuads failed: %v", err)
	}
	if !strings.Contains(out, "@prefix") {
		t.Error("Turtle output should contain prefix declarations")
	}
	if !strings.Contains(out, "regkg.dev/resource") {
		t.Error("Turtle output should contain resource IRIs")
	}
}

func TestSerializeEscaping(t *testing.T) {
	triples := []export.Triple{
		{Subject: reg.EntityNamespace + "acme", Predicate: reg.PropProvider, Object: "line\none \"quoted\""},
	}
	out, err := export.SerializeTriples(triples, export.FormatNTriples)
	if err != nil {
		t.Fatalf("SerializeTriples failed: %v", err)
	}
	if !strings.Contains(out, `line\none \"quoted\"`) {
		t.Errorf("special characters not escaped: %s", out)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := export.SerializeTriples(nil, export.Format("rdfxml")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestFormatRegistry(t *testing.T) {
	for _, f := range []export.Format{export.FormatTurtle, export.FormatNTriples, export.FormatNQuads} {
		info, ok := export.GetFormatInfo(f)
		if !ok {
			t.Fatalf("missing format info for %s", f)
		}
		if info.Extension == "" || info.MIMEType == "" {
			t.Errorf("incomplete format info for %s", f)
		}
	}
}
