package reconcile

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDebugDecisionsDiff(t *testing.T) {
	records := []EntityRecord{
		{ID: "s1", Name: "ACME Corp.", Country: "US", Source: "gleif"},
		{ID: "s2", Name: "Acme Corporation", Country: "US"},
		{ID: "s3", Name: "Other Inc", Country: "FR"},
	}
	reversed := []EntityRecord{records[2], records[0], records[1]}
	dirA, dirB := t.TempDir(), t.TempDir()
	engineA, _ := NewEngine(nameRules(), WithWorkers(1))
	resultA, _ := engineA.Run(context.Background(), records)
	WriteArtifacts(dirA, resultA)
	engineB, _ := NewEngine(nameRules(), WithWorkers(4))
	resultB, _ := engineB.Run(context.Background(), reversed)
	WriteArtifacts(dirB, resultB)
	for i, dir := range []string{dirA, dirB} {
		f, _ := os.Open(filepath.Join(dir, DecisionsFile))
		zr, err := gzip.NewReader(f)
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(zr)
		os.WriteFile("/tmp/decisions_"+string(rune('A'+i))+".ndjson", b, 0o644)
	}
}
